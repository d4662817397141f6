// Package broker wraps a single AMQP 0-9-1 connection/channel pair shared
// across every registered consumer, grounded in
// _examples/original_source/listeners/src/lapin.rs's RabbitClient.
package broker

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Conn holds one AMQP connection and one channel, shared by every consumer
// spawned from internal/consumer. amqp091-go channels are not safe for
// concurrent Consume+Publish from many goroutines issuing different method
// frames at once in general, but independent Consume calls registering
// separate server-side subscriptions are: each returns its own delivery
// channel and the broker multiplexes deliveries over the same connection,
// matching lapin's single-Channel-per-client model.
type Conn struct {
	conn              *amqp.Connection
	ch                *amqp.Channel
	consumerTagSuffix string
}

// Dial connects to the broker at uri and opens one channel.
func Dial(uri, consumerTagSuffix string) (*Conn, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &Conn{conn: conn, ch: ch, consumerTagSuffix: consumerTagSuffix}, nil
}

// Consume opens a consumer on queueName with consumer tag
// "<queueName>-<suffix>" (spec §4.5 step 1). Acks are sent manually by the
// caller once a delivery's handler succeeds; auto-ack is never used, since
// the projector's ack discipline is decode-success- and handler-success-
// gated (spec §4.5 steps 3-5).
func (c *Conn) Consume(queueName string) (<-chan amqp.Delivery, error) {
	tag := fmt.Sprintf("%s-%s", queueName, c.consumerTagSuffix)
	deliveries, err := c.ch.Consume(
		queueName,
		tag,
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume queue %s: %w", queueName, err)
	}
	return deliveries, nil
}

// Close tears down the channel and connection.
func (c *Conn) Close() error {
	chErr := c.ch.Close()
	connErr := c.conn.Close()
	if chErr != nil {
		return fmt.Errorf("close channel: %w", chErr)
	}
	if connErr != nil {
		return fmt.Errorf("close connection: %w", connErr)
	}
	return nil
}
