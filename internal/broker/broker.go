// Package broker wraps the AMQP connection shared by the router, the
// processor, and the heartbeat publisher. Queues are durable, publishing is
// persistent, and consumers fetch one message at a time with manual
// acknowledgement, which is what gives the engine its at-least-once
// semantics.
package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the sending half of the broker, extracted so the router and
// heartbeat can be tested against a fake.
type Publisher interface {
	Publish(queue, contentType string, body []byte) error
}

// Broker holds one AMQP connection and channel.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker and opens a channel configured for one
// in-flight delivery per consumer.
func Connect(url string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// One unacknowledged message at a time; the next delivery arrives only
	// after the current one is acked or nacked.
	if err := ch.Qos(1, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	return &Broker{conn: conn, ch: ch}, nil
}

// DeclareQueue declares a durable queue, creating it if absent.
func (b *Broker) DeclareQueue(name string) error {
	if _, err := b.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Consume starts delivering messages from the queue. Acknowledgement is
// manual; the returned channel closes when the connection does.
func (b *Broker) Consume(queue, consumerTag string) (<-chan amqp.Delivery, error) {
	deliveries, err := b.ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from queue %s: %w", queue, err)
	}
	return deliveries, nil
}

// Publish sends a persistent message to the queue via the default
// exchange. Each message carries a fresh message id.
func (b *Broker) Publish(queue, contentType string, body []byte) error {
	err := b.ch.PublishWithContext(context.Background(), "", queue, false, false, amqp.Publishing{
		ContentType:     contentType,
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		MessageId:       uuid.New().String(),
		Body:            body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}
	return nil
}

// IsClosed reports whether the underlying connection has been closed.
func (b *Broker) IsClosed() bool {
	return b.conn.IsClosed()
}

// Close shuts the connection down, which also ends every consumer started
// from it.
func (b *Broker) Close() error {
	return b.conn.Close()
}
