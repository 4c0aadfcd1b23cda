package schema

import (
	"encoding/json"
	"fmt"

	"github.com/Project-Hydrius/Pacts/contracts"
)

// Validator checks envelopes and data values against schema documents.
// It never panics or returns an error for bad input: every outcome,
// including an unresolvable schema or unwalkable data, is reported through
// the ValidationResult error list.
type Validator struct {
	resolver *Resolver
}

// NewValidator creates a validator resolving schemas through the given
// resolver.
func NewValidator(resolver *Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// ValidateEnvelope validates an envelope's header and, when the header names
// a resolvable schema, its data. Error order is fixed: header errors, then
// schema-not-found, then the data errors in schema-declared order.
func (v *Validator) ValidateEnvelope(envelope *contracts.Envelope) (result *contracts.ValidationResult) {
	var errs []string
	defer func() {
		if rec := recover(); rec != nil {
			errs = append(errs, fmt.Sprintf("Validation error: %v", rec))
			result = contracts.NewValidationResult(errs)
		}
	}()

	if envelope == nil || envelope.Header == nil {
		return contracts.NewValidationResult([]string{"Header is required"})
	}

	header := envelope.Header
	if header.SchemaCategory == "" {
		errs = append(errs, "Schema category is required in header")
	}
	if header.SchemaName == "" {
		errs = append(errs, "Schema name is required in header")
	}
	if header.SchemaVersion == "" {
		errs = append(errs, "Schema version is required in header")
	}

	if header.SchemaCategory != "" && header.SchemaName != "" {
		doc, ok := v.resolver.Load(header.SchemaCategory, header.SchemaName)
		if !ok {
			errs = append(errs, "Schema not found: "+header.SchemaCategory+"/"+header.SchemaName)
		} else {
			dataResult := v.ValidateData(envelope.Data, doc)
			errs = append(errs, dataResult.Errors...)
		}
	}

	return contracts.NewValidationResult(errs)
}

// ValidateData validates a data value against a document, one level deep:
// required fields first in declared order, then the root type, then declared
// property types in declaration order. Nested containers are only checked
// for being the declared container kind.
func (v *Validator) ValidateData(data any, doc *Document) (result *contracts.ValidationResult) {
	var errs []string
	defer func() {
		if rec := recover(); rec != nil {
			errs = []string{fmt.Sprintf("Validation error: %v", rec)}
			result = contracts.NewValidationResult(errs)
		}
	}()

	node, err := normalizeValue(data)
	if err != nil {
		return contracts.NewValidationResult([]string{fmt.Sprintf("Validation error: %v", err)})
	}

	obj, isObject := node.(map[string]any)

	for _, field := range doc.Required {
		if _, present := obj[field]; !isObject || !present {
			errs = append(errs, "Required field missing: "+field)
		}
	}

	if doc.Type != "" && !matchesType(node, doc.Type) {
		errs = append(errs, "Invalid type. Expected: "+doc.Type)
	}

	if isObject {
		for _, prop := range doc.Properties {
			value, present := obj[prop.Name]
			if !present || prop.Type == "" {
				continue
			}
			if !matchesType(value, prop.Type) {
				errs = append(errs, "Invalid type for field '"+prop.Name+"'. Expected: "+prop.Type)
			}
		}
	}

	return contracts.NewValidationResult(errs)
}

// normalizeValue coerces arbitrary data into the generic tree representation
// the type matching operates on, via a JSON round trip. Values that cannot
// be represented as JSON are the one data shape validation rejects outright.
func normalizeValue(data any) (any, error) {
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	return node, nil
}
