package contracts

import (
	"time"
)

// Header carries the schema coordinates for an envelope's data payload.
// The validator requires version, category, and name; content type is
// optional and advisory.
type Header struct {
	SchemaVersion  string    `json:"schema_version"`
	SchemaCategory string    `json:"schema_category"`
	SchemaName     string    `json:"schema_name"`
	Timestamp      time.Time `json:"timestamp"`
	ContentType    string    `json:"content_type,omitempty"`
}

// NewHeader creates a header stamped with the current UTC time.
func NewHeader(schemaVersion, schemaCategory, schemaName string) *Header {
	return &Header{
		SchemaVersion:  schemaVersion,
		SchemaCategory: schemaCategory,
		SchemaName:     schemaName,
		Timestamp:      time.Now().UTC(),
	}
}

// NewHeaderWithContentType creates a header with an explicit content type.
func NewHeaderWithContentType(schemaVersion, schemaCategory, schemaName, contentType string) *Header {
	h := NewHeader(schemaVersion, schemaCategory, schemaName)
	h.ContentType = contentType
	return h
}
