package testutil

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishedMessage is one message recorded by a FakePublisher.
type PublishedMessage struct {
	Queue       string
	ContentType string
	Body        []byte
}

// FakePublisher records published messages in memory. Set Err to make
// every Publish call fail, simulating an unreachable broker.
type FakePublisher struct {
	Messages []PublishedMessage
	Err      error
}

// Publish records the message, or fails with Err if set.
func (f *FakePublisher) Publish(queue, contentType string, body []byte) error {
	if f.Err != nil {
		return f.Err
	}
	f.Messages = append(f.Messages, PublishedMessage{
		Queue:       queue,
		ContentType: contentType,
		Body:        body,
	})
	return nil
}

// FakeAcknowledger implements amqp.Acknowledger, recording the outcome of
// one delivery.
type FakeAcknowledger struct {
	Acked    bool
	Nacked   bool
	Requeued bool
}

// Ack records an acknowledgement.
func (f *FakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.Acked = true
	return nil
}

// Nack records a negative acknowledgement and whether requeue was requested.
func (f *FakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.Nacked = true
	f.Requeued = requeue
	return nil
}

// Reject records a rejection and whether requeue was requested.
func (f *FakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.Nacked = true
	f.Requeued = requeue
	return nil
}

// NewDelivery builds an AMQP delivery backed by a FakeAcknowledger, so
// handler tests can assert on ack/nack behavior.
//
// Example usage:
//
//	d, ack := testutil.NewDelivery("text/plain", []byte("[wallet-api] ..."))
//	router.Handle(d)
//	if !ack.Acked { ... }
func NewDelivery(contentType string, body []byte) (amqp.Delivery, *FakeAcknowledger) {
	ack := &FakeAcknowledger{}
	return amqp.Delivery{
		Acknowledger: ack,
		ContentType:  contentType,
		Body:         body,
	}, ack
}
