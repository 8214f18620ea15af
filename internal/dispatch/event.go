package dispatch

import (
	"time"

	"foodmarket/internal/core/domain/model/order"
)

// Event is what a subscriber receives: one change of one order, addressed to one topic.
// Changed holds only the fields that changed.
type Event struct {
	Topic      Topic          `json:"topic"`
	Type       string         `json:"type"`
	OrderID    string         `json:"orderId"`
	Changed    map[string]any `json:"changed"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// eventsFor expands a change into one event per topic.
func eventsFor(change order.Change, topics []Topic) []Event {
	events := make([]Event, 0, len(topics))
	for _, t := range topics {
		events = append(events, Event{
			Topic:      t,
			Type:       string(change.Type),
			OrderID:    change.OrderID.String(),
			Changed:    change.Fields,
			OccurredAt: change.OccurredAt,
		})
	}
	return events
}
