package contracts

// Envelope wraps a data payload for transport. The header names the schema
// the data claims to conform to; metadata carries transport concerns such as
// auth tokens and never participates in validation.
type Envelope struct {
	Header   *Header        `json:"header"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEnvelope creates an envelope without metadata.
func NewEnvelope(header *Header, data any) *Envelope {
	return &Envelope{
		Header: header,
		Data:   data,
	}
}

// NewEnvelopeWithMetadata creates an envelope carrying transport metadata.
func NewEnvelopeWithMetadata(header *Header, data any, metadata map[string]any) *Envelope {
	return &Envelope{
		Header:   header,
		Data:     data,
		Metadata: metadata,
	}
}

// SetMetadata sets a single metadata entry, allocating the map on first use.
func (e *Envelope) SetMetadata(key string, value any) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}
