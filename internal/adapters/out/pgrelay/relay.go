// Package pgrelay shares dispatched events between instances of the service through
// PostgreSQL LISTEN/NOTIFY. Each instance sends the events it produced and delivers
// to its local subscribers the events produced by the others.
package pgrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodmarket/internal/dispatch"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// maxPayload is the NOTIFY payload limit of PostgreSQL minus one byte.
const maxPayload = 7999

var (
	_ dispatch.Sink = (*Relay)(nil)

	ErrPayloadTooLarge = errors.New("relay payload exceeds the NOTIFY limit")
)

// LocalDeliverer publishes events to subscribers of this process only.
type LocalDeliverer interface {
	Deliver(events []dispatch.Event)
}

type envelope struct {
	Instance string           `json:"instance"`
	Events   []dispatch.Event `json:"events"`
}

type Relay struct {
	db       *gorm.DB
	dsn      string
	channel  string
	instance string
	local    LocalDeliverer
	logger   *slog.Logger
}

// NewRelay creates a relay with a random instance id. dsn is used by the listener
// connection, db by Send.
func NewRelay(db *gorm.DB, dsn, channel string, local LocalDeliverer, logger *slog.Logger) *Relay {
	instance := uuid.NewString()
	return &Relay{
		db:       db,
		dsn:      dsn,
		channel:  channel,
		instance: instance,
		local:    local,
		logger:   logger.With("component", "pg-relay", "instance", instance),
	}
}

func (r *Relay) Name() string {
	return "pg-relay:" + r.channel
}

// Send notifies the other instances of events produced here.
func (r *Relay) Send(ctx context.Context, events []dispatch.Event) error {
	if len(events) == 0 {
		return nil
	}

	payload, err := r.encode(events)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", r.channel, string(payload)).Error
}

// encode falls back to events without their changed fields when the full payload does
// not fit. Subscribers then get the topic and type only and re-read the order.
func (r *Relay) encode(events []dispatch.Event) ([]byte, error) {
	payload, err := json.Marshal(envelope{Instance: r.instance, Events: events})
	if err != nil {
		return nil, fmt.Errorf("encode relay payload: %w", err)
	}
	if len(payload) <= maxPayload {
		return payload, nil
	}

	full := len(payload)
	trimmed := make([]dispatch.Event, len(events))
	for i, event := range events {
		event.Changed = nil
		trimmed[i] = event
	}
	payload, err = json.Marshal(envelope{Instance: r.instance, Events: trimmed})
	if err != nil {
		return nil, fmt.Errorf("encode relay payload: %w", err)
	}
	if len(payload) > maxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	r.logger.Warn("relay payload trimmed", "events", len(events), "bytes", full)
	return payload, nil
}

// Run listens until ctx is cancelled. The listener reconnects on its own; a nil
// notification after a reconnect is skipped since missed events are not replayed.
func (r *Relay) Run(ctx context.Context) error {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("listener event", "event", ev, "error", err)
		}
	})
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(r.channel); err != nil {
		return fmt.Errorf("listen on %s: %w", r.channel, err)
	}
	r.logger.Info("relay listening", "channel", r.channel)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopped")
			return nil
		case n := <-listener.Notify:
			if n == nil {
				continue
			}
			r.handle(n.Extra)
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				r.logger.Warn("listener ping failed", "error", err)
			}
		}
	}
}

func (r *Relay) handle(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Error("malformed relay payload", "error", err)
		return
	}
	if env.Instance == r.instance {
		return
	}
	r.local.Deliver(env.Events)
}
