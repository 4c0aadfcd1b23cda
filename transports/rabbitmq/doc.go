// Package rabbitmq is the thin AMQP glue between the Pacts core and a
// message bus. It publishes envelopes that passed validation and hands
// consumed deliveries back through the same validation path, so invalid
// payloads never cross the wire in either direction. The core packages do
// not depend on this package.
package rabbitmq
