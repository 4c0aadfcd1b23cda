// Package schema locates, caches, and evaluates versioned JSON schemas.
//
// A Resolver is bound to a schema root, domain, and version at construction
// and resolves documents by (category, name) through layered tiers: an
// in-memory cache, the local filesystem, a bundled fs.FS, and a cache
// pre-populated from remote archive sources at construction time.
//
// The Validator walks a resolved Document against a data value one level
// deep (root type, required fields, declared property types) and reports
// violations as ordered, human-readable error strings. It never returns an
// error or panics for bad input; every outcome is a ValidationResult.
package schema
