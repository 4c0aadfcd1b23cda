package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is an immutable parsed schema. All fields are optional in the
// source JSON: an absent type means no root constraint, absent required and
// properties default to empty. Documents are shared by reference from the
// cache and must never be mutated after parse.
type Document struct {
	// Type constrains the root value kind; empty means unconstrained.
	Type string
	// Required lists field names that must be present, in declared order.
	Required []string
	// Properties lists per-field type declarations in the order they
	// appear in the schema JSON. Error reporting depends on this order.
	Properties []Property
}

// Property is a single declared property and its optional type constraint.
type Property struct {
	Name string
	Type string
}

// ParseDocument parses schema JSON into a Document.
func ParseDocument(data []byte) (*Document, error) {
	var raw struct {
		Type       string          `json:"type"`
		Required   []string        `json:"required"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: failed to parse document: %w", err)
	}

	doc := &Document{
		Type:     raw.Type,
		Required: raw.Required,
	}

	if len(raw.Properties) > 0 && !bytes.Equal(raw.Properties, []byte("null")) {
		props, err := parseProperties(raw.Properties)
		if err != nil {
			return nil, err
		}
		doc.Properties = props
	}

	return doc, nil
}

// ReadDocument parses schema JSON from a reader.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to read document: %w", err)
	}
	return ParseDocument(data)
}

// parseProperties walks the properties object with a token decoder so that
// the declaration order of the JSON keys survives the parse. A plain map
// would lose the order the validator's error reporting is defined by.
func parseProperties(raw json.RawMessage) ([]Property, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: failed to parse properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("schema: properties must be an object")
	}

	var props []Property
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: failed to parse properties: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: unexpected token in properties: %v", keyTok)
		}

		var decl struct {
			Type string `json:"type"`
		}
		if err := dec.Decode(&decl); err != nil {
			return nil, fmt.Errorf("schema: invalid declaration for property %q: %w", name, err)
		}

		props = append(props, Property{Name: name, Type: decl.Type})
	}

	return props, nil
}
