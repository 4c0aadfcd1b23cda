package schema

import (
	"encoding/json"
)

// Kind classifies a JSON data value for type matching.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBoolean
	KindOther
)

// String returns the schema type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// KindOf classifies a decoded JSON value. Values are expected in the generic
// tree representation produced by encoding/json, but native integer and float
// types are classified as numbers so callers can pass untripped Go values.
func KindOf(value any) Kind {
	switch value.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBoolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	default:
		return KindOther
	}
}

// matchesType reports whether a value satisfies an expected schema type.
// Types outside the enumerated set always match: unknown or extension types
// never fail validation.
func matchesType(value any, expected string) bool {
	switch expected {
	case "object":
		return KindOf(value) == KindObject
	case "array":
		return KindOf(value) == KindArray
	case "string":
		return KindOf(value) == KindString
	case "number":
		return KindOf(value) == KindNumber
	case "boolean":
		return KindOf(value) == KindBoolean
	case "null":
		return KindOf(value) == KindNull
	default:
		return true
	}
}
