// Package contracts provides the wire-level types exchanged between services:
//   - Header: schema coordinates and content metadata for a payload
//   - Envelope: the unit of transmission, owning a header and arbitrary data
//   - ValidationResult: the outcome of validating an envelope or raw data
//
// The JSON field names are fixed snake_case: they are the cross-language wire
// contract shared with the Java and Rust implementations of Pacts.
package contracts
