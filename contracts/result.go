package contracts

import (
	"strings"
)

// ValidationResult is the outcome of validating an envelope or a raw data
// value. Errors preserves detection order; Valid is true exactly when the
// error list is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidationResult creates a result from a collected error list.
func NewValidationResult(errors []string) *ValidationResult {
	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// HasErrors reports whether any validation errors were recorded.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage returns all errors joined with "; " in detection order, or a
// fixed success message when the result is clean.
func (r *ValidationResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return "Validation successful"
	}
	return strings.Join(r.Errors, "; ")
}
