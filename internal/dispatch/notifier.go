package dispatch

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/metrics"
)

var _ ports.ChangePublisher = (*Notifier)(nil)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 1024
)

// Sink receives the events of every change after local delivery. Sinks forward events
// beyond this process; a failing sink is logged and never retried.
type Sink interface {
	Name() string
	Send(ctx context.Context, events []Event) error
}

// NotifierConfig sizes the worker pool. Zero values fall back to the defaults.
type NotifierConfig struct {
	Workers   int
	QueueSize int
}

// Notifier accepts committed changes from command handlers and publishes them on
// worker goroutines. Changes are sharded by order id, so the changes of one order are
// published in the order they were accepted.
type Notifier struct {
	broker   *Broker
	resolver *TopicResolver
	sinks    []Sink
	logger   *slog.Logger

	mu      sync.RWMutex
	queues  []chan order.Change
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func NewNotifier(
	broker *Broker,
	resolver *TopicResolver,
	cfg NotifierConfig,
	logger *slog.Logger,
	sinks ...Sink,
) *Notifier {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	queues := make([]chan order.Change, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan order.Change, cfg.QueueSize)
	}

	return &Notifier{
		broker:   broker,
		resolver: resolver,
		sinks:    sinks,
		logger:   logger.With("component", "dispatch-notifier"),
		queues:   queues,
	}
}

// Start launches the workers. ctx is used for vendor lookups and sink sends.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started || n.stopped {
		return
	}
	n.started = true

	for i, q := range n.queues {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			for change := range q {
				n.dispatch(ctx, change)
			}
			n.logger.Debug("worker stopped", "worker", i)
		}()
	}
	n.logger.Info("notifier started", "workers", len(n.queues))
}

// Stop closes the queues and waits until the workers have drained them.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	for _, q := range n.queues {
		close(q)
	}
	started := n.started
	n.mu.Unlock()

	if started {
		n.wg.Wait()
	}
	n.logger.Info("notifier stopped")
}

// Publish enqueues change without blocking. When the shard queue is full, or the
// notifier is stopped, the change is dropped and logged.
func (n *Notifier) Publish(_ context.Context, change order.Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.stopped {
		n.drop(change, "notifier stopped")
		return
	}

	select {
	case n.queues[n.shard(change)] <- change:
	default:
		n.drop(change, "queue full")
	}
}

// Deliver publishes events to local subscribers only. It is used by relays that
// receive events produced by other processes.
func (n *Notifier) Deliver(events []Event) {
	for _, e := range events {
		n.broker.Publish(e)
	}
}

func (n *Notifier) dispatch(ctx context.Context, change order.Change) {
	topics := n.resolver.Topics(ctx, change)
	events := eventsFor(change, topics)

	delivered := 0
	for _, e := range events {
		delivered += n.broker.Publish(e)
	}
	metrics.DispatchEventsPublishedTotal.WithLabelValues(string(change.Type)).Add(float64(len(events)))

	for _, sink := range n.sinks {
		if err := sink.Send(ctx, events); err != nil {
			n.logger.Error("sink failed",
				"sink", sink.Name(),
				"orderId", change.OrderID.String(),
				"type", change.Type,
				"error", err,
			)
		}
	}

	n.logger.Debug("change published",
		"orderId", change.OrderID.String(),
		"type", change.Type,
		"topics", len(topics),
		"delivered", delivered,
	)
}

func (n *Notifier) drop(change order.Change, reason string) {
	metrics.DispatchChangesDroppedTotal.Inc()
	n.logger.Warn("change dropped",
		"reason", reason,
		"orderId", change.OrderID.String(),
		"type", change.Type,
	)
}

func (n *Notifier) shard(change order.Change) int {
	h := fnv.New32a()
	id := change.OrderID.Bytes()
	_, _ = h.Write(id[:])
	return int(h.Sum32() % uint32(len(n.queues)))
}
