// Package pacts validates structured payloads exchanged between distributed
// services against versioned, domain-scoped JSON schemas.
//
// The Service facade wires the schema resolver and structural validator
// together and exposes the envelope operations a transport layer consumes:
//
//	svc, err := pacts.NewService("schemas", "bees", "v1")
//	if err != nil {
//		// only missing root/domain/version fails construction
//	}
//	env := svc.CreateEnvelope("inventory", "inventory_item", item)
//	result := svc.Validate(env)
//	if !result.Valid {
//		log.Println(result.ErrorMessage())
//	}
//
// Schemas resolve through layered tiers: an in-memory cache, the local
// filesystem under the schema root, the embedded bundle, and remote archive
// mirrors fetched once at construction. See the schema package for details.
package pacts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/Project-Hydrius/Pacts/config"
	"github.com/Project-Hydrius/Pacts/contracts"
	"github.com/Project-Hydrius/Pacts/schema"
)

// MetadataAuthToken is the envelope metadata key carrying an auth token.
const MetadataAuthToken = "auth_token"

// Service is the high-level entry point for creating, validating, and
// serializing envelopes. A single Service is safe for concurrent use and is
// intended to be constructed once per process and shared.
type Service struct {
	resolver  *schema.Resolver
	validator *schema.Validator
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger       *slog.Logger
	resolverOpts []schema.ResolverOption
}

// WithLogger sets the logger used by the service and its resolver.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.logger = logger
	}
}

// WithSources configures remote archive mirrors for schema pre-loading.
func WithSources(sources ...string) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.resolverOpts = append(cfg.resolverOpts, schema.WithSources(sources...))
	}
}

// WithBundled replaces the embedded schema bundle.
func WithBundled(fsys fs.FS) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.resolverOpts = append(cfg.resolverOpts, schema.WithBundled(fsys))
	}
}

// WithHTTPClient replaces the HTTP client used for archive fetching.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.resolverOpts = append(cfg.resolverOpts, schema.WithHTTPClient(client))
	}
}

// NewService creates a service bound to a schema root, domain, and version.
// It fails only when one of those is empty; unreachable archive sources are
// logged and resolution falls back to the filesystem and bundled tiers.
func NewService(schemaRoot, domain, version string, opts ...ServiceOption) (*Service, error) {
	cfg := &serviceConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	resolverOpts := append([]schema.ResolverOption{schema.WithLogger(cfg.logger)}, cfg.resolverOpts...)
	resolver, err := schema.NewResolver(schemaRoot, domain, version, resolverOpts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		resolver:  resolver,
		validator: schema.NewValidator(resolver),
		logger:    cfg.logger,
	}, nil
}

// NewServiceFromConfig creates a service from collaborator configuration,
// wiring the configured archive sources and fetch timeouts.
func NewServiceFromConfig(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.SchemaSources) > 0 {
		opts = append(opts,
			WithSources(cfg.SchemaSources...),
			WithHTTPClient(cfg.HTTPClient()),
		)
	}

	return NewService(cfg.SchemaRoot, cfg.Domain, cfg.Version, opts...)
}

// CreateEnvelope builds an envelope for the bound schema version with a
// JSON content type, stamped with the current time.
func (s *Service) CreateEnvelope(category, name string, data any) *contracts.Envelope {
	header := contracts.NewHeaderWithContentType(s.resolver.Version(), category, name, "application/json")
	return contracts.NewEnvelope(header, data)
}

// CreateAuthenticatedEnvelope builds an envelope carrying an auth token in
// its metadata. The token never participates in validation.
func (s *Service) CreateAuthenticatedEnvelope(category, name string, data any, authToken string) *contracts.Envelope {
	env := s.CreateEnvelope(category, name, data)
	env.SetMetadata(MetadataAuthToken, authToken)
	return env
}

// Validate validates an envelope's header and data against its schema.
func (s *Service) Validate(envelope *contracts.Envelope) *contracts.ValidationResult {
	return s.validator.ValidateEnvelope(envelope)
}

// ValidateData validates a raw value against a named schema without
// constructing an envelope. A schema that resolves at no tier yields an
// invalid result naming the full coordinates.
func (s *Service) ValidateData(data any, category, name string) *contracts.ValidationResult {
	doc, ok := s.resolver.Load(category, name)
	if !ok {
		return contracts.NewValidationResult([]string{fmt.Sprintf(
			"Schema not found: %s/%s/%s/%s",
			s.resolver.Domain(), s.resolver.Version(), category, name,
		)})
	}
	return s.validator.ValidateData(data, doc)
}

// Send builds and validates an envelope, then hands it to the sender only
// when validation passes. A validation failure is returned as a
// *ValidationError and the sender is never invoked.
func (s *Service) Send(category, name string, data any, sender func(*contracts.Envelope) error) error {
	envelope := s.CreateEnvelope(category, name, data)

	result := s.Validate(envelope)
	if !result.Valid {
		return &ValidationError{Result: result}
	}

	return sender(envelope)
}

// ToJSON serializes an envelope to its wire form.
func (s *Service) ToJSON(envelope *contracts.Envelope) (string, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("pacts: failed to marshal envelope: %w", err)
	}
	return string(data), nil
}

// ParseEnvelope parses an envelope from its wire form.
func (s *Service) ParseEnvelope(raw string) (*contracts.Envelope, error) {
	var envelope contracts.Envelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("pacts: failed to unmarshal envelope: %w", err)
	}
	return &envelope, nil
}

// Resolver returns the underlying schema resolver.
func (s *Service) Resolver() *schema.Resolver {
	return s.resolver
}

// Validator returns the underlying structural validator.
func (s *Service) Validator() *schema.Validator {
	return s.validator
}

// ValidationError is returned by Send when the envelope fails validation.
type ValidationError struct {
	Result *contracts.ValidationResult
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + e.Result.ErrorMessage()
}
