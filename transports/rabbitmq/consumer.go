package rabbitmq

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Project-Hydrius/Pacts"
	"github.com/Project-Hydrius/Pacts/contracts"
)

// EnvelopeHandler processes a consumed envelope that already passed
// validation.
type EnvelopeHandler func(ctx context.Context, envelope *contracts.Envelope) error

// ConsumeChannel is the subset of *amqp.Channel the consumer needs.
type ConsumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer receives deliveries from a queue, parses and validates each
// envelope, and dispatches valid ones to a handler. Deliveries that fail to
// parse or validate are rejected without requeue; handler errors requeue.
type Consumer struct {
	channel     ConsumeChannel
	service     *pacts.Service
	consumerTag string
	logger      *slog.Logger
}

// ConsumerOption configures the consumer.
type ConsumerOption func(*Consumer)

// WithConsumerTag sets the consumer tag.
func WithConsumerTag(tag string) ConsumerOption {
	return func(c *Consumer) {
		c.consumerTag = tag
	}
}

// WithConsumerLogger sets the logger.
func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// NewConsumer creates a consumer over an open channel.
func NewConsumer(channel ConsumeChannel, service *pacts.Service, options ...ConsumerOption) *Consumer {
	c := &Consumer{
		channel: channel,
		service: service,
		logger:  slog.Default(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// Consume subscribes to a queue and dispatches until the context is
// cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, queue string, handler EnvelopeHandler) error {
	deliveries, err := c.channel.Consume(queue, c.consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, delivery, handler)
		}
	}
}

// handle runs one delivery through parse, validate, and the handler.
func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery, handler EnvelopeHandler) {
	envelope, err := c.service.ParseEnvelope(string(delivery.Body))
	if err != nil {
		c.logger.Warn("rejecting unparseable delivery",
			"messageId", delivery.MessageId,
			"error", err)
		_ = delivery.Reject(false)
		return
	}

	result := c.service.Validate(envelope)
	if !result.Valid {
		c.logger.Warn("rejecting invalid envelope",
			"messageId", delivery.MessageId,
			"errors", result.ErrorMessage())
		_ = delivery.Reject(false)
		return
	}

	if err := handler(ctx, envelope); err != nil {
		c.logger.Error("envelope handler failed",
			"messageId", delivery.MessageId,
			"error", err)
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
}
