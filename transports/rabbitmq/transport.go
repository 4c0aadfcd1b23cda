package rabbitmq

import (
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Project-Hydrius/Pacts"
)

// Transport owns an AMQP connection and channel and hands out validated
// publishers and consumers bound to one Pacts service.
type Transport struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	service *pacts.Service
	logger  *slog.Logger
}

// TransportOption configures the transport.
type TransportOption func(*transportConfig)

type transportConfig struct {
	logger      *slog.Logger
	dialTimeout time.Duration
	heartbeat   time.Duration
}

// WithTransportLogger sets the logger shared by the transport and the
// publishers and consumers it creates.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(cfg *transportConfig) {
		cfg.logger = logger
	}
}

// WithDialTimeout bounds the initial connection attempt. Default is 30s.
func WithDialTimeout(timeout time.Duration) TransportOption {
	return func(cfg *transportConfig) {
		cfg.dialTimeout = timeout
	}
}

// WithHeartbeat sets the AMQP heartbeat interval. Default is 10s.
func WithHeartbeat(interval time.Duration) TransportOption {
	return func(cfg *transportConfig) {
		cfg.heartbeat = interval
	}
}

// NewTransport connects to the broker and opens a channel.
func NewTransport(connectionString string, service *pacts.Service, options ...TransportOption) (*Transport, error) {
	cfg := &transportConfig{
		logger:      slog.Default(),
		dialTimeout: 30 * time.Second,
		heartbeat:   10 * time.Second,
	}
	for _, opt := range options {
		opt(cfg)
	}

	conn, err := amqp.DialConfig(connectionString, amqp.Config{
		Heartbeat: cfg.heartbeat,
		Dial:      amqp.DefaultDial(cfg.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: failed to connect: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: failed to open channel: %w", err)
	}

	cfg.logger.Info("connected to broker")

	return &Transport{
		conn:    conn,
		channel: channel,
		service: service,
		logger:  cfg.logger,
	}, nil
}

// Publisher creates a publisher over the transport's channel.
func (t *Transport) Publisher(options ...PublisherOption) *Publisher {
	options = append([]PublisherOption{WithPublisherLogger(t.logger)}, options...)
	return NewPublisher(t.channel, t.service, options...)
}

// Consumer creates a consumer over the transport's channel.
func (t *Transport) Consumer(options ...ConsumerOption) *Consumer {
	options = append([]ConsumerOption{WithConsumerLogger(t.logger)}, options...)
	return NewConsumer(t.channel, t.service, options...)
}

// DeclareQueue declares a durable queue for envelope consumption.
func (t *Transport) DeclareQueue(name string) error {
	_, err := t.channel.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Close tears down the channel and connection.
func (t *Transport) Close() error {
	if err := t.channel.Close(); err != nil {
		t.conn.Close()
		return fmt.Errorf("rabbitmq: failed to close channel: %w", err)
	}
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("rabbitmq: failed to close connection: %w", err)
	}
	return nil
}
