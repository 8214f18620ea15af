package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"foodmarket/internal/dispatch"

	"github.com/streadway/amqp"
)

var _ dispatch.Sink = (*EventSink)(nil)

// publisher is the subset of *amqp.Channel used by the sink.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventSink publishes every event as a JSON message, routed by its topic.
type EventSink struct {
	mu       sync.Mutex
	channel  publisher
	exchange string
}

func NewEventSink(channel publisher, exchange string) *EventSink {
	return &EventSink{channel: channel, exchange: exchange}
}

func (s *EventSink) Name() string {
	return "rabbitmq:" + s.exchange
}

// Send publishes the events one by one and returns the joined failures.
func (s *EventSink) Send(ctx context.Context, events []dispatch.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		body, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode event for %s: %w", e.Topic, err))
			continue
		}

		if err = s.channel.Publish(s.exchange, e.Topic.String(), false, false, amqp.Publishing{
			ContentType:  "application/json",
			Type:         e.Type,
			Timestamp:    e.OccurredAt,
			DeliveryMode: amqp.Transient,
			Body:         body,
		}); err != nil {
			errs = append(errs, fmt.Errorf("publish event for %s: %w", e.Topic, err))
		}
	}
	return errors.Join(errs...)
}
