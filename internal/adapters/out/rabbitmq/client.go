// Package rabbitmq forwards dispatched order events to a RabbitMQ exchange so that
// services outside this process can follow order changes.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Client represents a RabbitMQ client.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient dials url and opens one channel.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	return &Client{
		conn:    conn,
		channel: channel,
	}, nil
}

// Channel returns the underlying AMQP channel.
func (c *Client) Channel() *amqp.Channel {
	return c.channel
}

// DeclareFanoutExchange declares a durable fanout exchange.
func (c *Client) DeclareFanoutExchange(name string) error {
	return c.channel.ExchangeDeclare(name, amqp.ExchangeFanout, true, false, false, false, nil)
}

// Close closes the channel and connection for graceful shutdown.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
