package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Project-Hydrius/Pacts"
	"github.com/Project-Hydrius/Pacts/contracts"
)

// PublishChannel is the subset of *amqp.Channel the publisher needs.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher publishes envelopes to an exchange, validating each one before
// it leaves the process.
type Publisher struct {
	channel        PublishChannel
	service        *pacts.Service
	exchange       string
	publishTimeout time.Duration
	logger         *slog.Logger
}

// PublisherOption configures the publisher.
type PublisherOption func(*Publisher)

// WithExchange sets the target exchange. Default is the default exchange.
func WithExchange(exchange string) PublisherOption {
	return func(p *Publisher) {
		p.exchange = exchange
	}
}

// WithPublishTimeout bounds a single publish call. Default is 10s.
func WithPublishTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.publishTimeout = timeout
	}
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over an open channel.
func NewPublisher(channel PublishChannel, service *pacts.Service, options ...PublisherOption) *Publisher {
	p := &Publisher{
		channel:        channel,
		service:        service,
		publishTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Publish builds an envelope for (category, name), validates it, and
// publishes it to the routing key. Validation failure returns a
// *pacts.ValidationError and nothing is published.
func (p *Publisher) Publish(ctx context.Context, routingKey, category, name string, data any) error {
	envelope := p.service.CreateEnvelope(category, name, data)
	return p.PublishEnvelope(ctx, routingKey, envelope)
}

// PublishEnvelope validates and publishes a pre-built envelope.
func (p *Publisher) PublishEnvelope(ctx context.Context, routingKey string, envelope *contracts.Envelope) error {
	result := p.service.Validate(envelope)
	if !result.Valid {
		return &pacts.ValidationError{Result: result}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("rabbitmq: failed to marshal envelope: %w", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}

	msg := amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Body:        body,
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: failed to publish envelope: %w", err)
	}

	p.logger.Debug("published envelope",
		"exchange", p.exchange,
		"routingKey", routingKey,
		"category", envelope.Header.SchemaCategory,
		"name", envelope.Header.SchemaName)
	return nil
}
