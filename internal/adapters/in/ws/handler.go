// Package ws serves the live order feed. A client connects to /api/v1/ws with its
// token, is subscribed to its home topics and may track single orders with
// join:order and leave:order messages. Every event is sent as one JSON text frame.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"foodmarket/internal/adapters/out/jwtauth"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/dispatch"
	"foodmarket/internal/pkg/errs"

	"github.com/gorilla/websocket"
)

const (
	MessageJoinOrder  = "join:order"
	MessageLeaveOrder = "leave:order"
	MessagePing       = "ping"

	ReplyJoined = "joined"
	ReplyLeft   = "left"
	ReplyPong   = "pong"
	ReplyError  = "error"
)

// Config tunes the connection. Zero values fall back to the defaults.
type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	ReadLimit    int64
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = dispatch.DefaultSendBuffer
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 4096
	}
	return c
}

// pingInterval must stay below PongTimeout so a healthy client never times out.
func (c Config) pingInterval() time.Duration {
	return c.PongTimeout * 9 / 10
}

// OrderAccess decides whether a principal may follow an order. The location query
// answers exactly that: it fails for principals who may not see the order.
type OrderAccess interface {
	Handle(ctx context.Context, query queries.GetDeliveryLocationQuery) (*queries.GetDeliveryLocationQueryResponse, error)
}

// Inbound is a client message. The order may be given as "orderId" or "order",
// bare or as a full "order:<id>" topic.
type Inbound struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId,omitempty"`
	Order   string `json:"order,omitempty"`
}

func (m Inbound) orderRef() string {
	if m.OrderID != "" {
		return m.OrderID
	}
	return m.Order
}

// Reply answers a client message.
type Reply struct {
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message,omitempty"`
}

type Handler struct {
	broker   *dispatch.Broker
	topics   *dispatch.TopicResolver
	access   OrderAccess
	auth     ports.IdentityProvider
	upgrader websocket.Upgrader
	cfg      Config
	logger   *slog.Logger
}

func NewHandler(
	broker *dispatch.Broker,
	topics *dispatch.TopicResolver,
	access OrderAccess,
	auth ports.IdentityProvider,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		broker: broker,
		topics: topics,
		access: access,
		auth:   auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP authenticates before upgrading, so a bad token gets a plain 401. It
// returns when the connection is gone and every membership has been removed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := h.auth.Authenticate(ctx, jwtauth.TokenFromRequest(r))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	home, err := h.topics.HomeTopics(ctx, principal.ID)
	if err != nil {
		h.logger.Error("failed to resolve home topics", "principal", principal.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	sub := h.broker.Subscribe(principal.ID, h.cfg.SendBuffer)
	h.broker.Join(sub, home...)
	h.logger.Debug("subscriber connected", "subscription", sub.ID(), "topics", len(home))

	c := &client{
		conn:    conn,
		sub:     sub,
		replies: make(chan Reply, 8),
		cfg:     h.cfg,
		logger:  h.logger.With("subscription", sub.ID()),
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop(func(msg Inbound) Reply {
		return h.handle(ctx, sub, principal.ID, msg)
	})

	h.broker.Disconnect(sub)
	<-done
	h.logger.Debug("subscriber disconnected", "subscription", sub.ID())
}

func (h *Handler) handle(ctx context.Context, sub *dispatch.Subscription, principal kernel.Identity, msg Inbound) Reply {
	switch msg.Type {
	case MessagePing:
		return Reply{Type: ReplyPong}
	case MessageJoinOrder:
		topic, err := h.authorizeOrder(ctx, principal, msg.orderRef())
		if err != nil {
			return Reply{Type: ReplyError, Message: err.Error()}
		}
		h.broker.Join(sub, topic)
		return Reply{Type: ReplyJoined, Topic: topic.String()}
	case MessageLeaveOrder:
		topic := dispatch.ParseOrderTopic(msg.orderRef())
		if topic.IsEmpty() {
			return Reply{Type: ReplyError, Message: "orderId is required"}
		}
		h.broker.Leave(sub, topic)
		return Reply{Type: ReplyLeft, Topic: topic.String()}
	default:
		return Reply{Type: ReplyError, Message: "unknown message type " + msg.Type}
	}
}

// authorizeOrder admits the same principals that may read the delivery location.
func (h *Handler) authorizeOrder(ctx context.Context, principal kernel.Identity, ref string) (dispatch.Topic, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(ref), "order:")
	if raw == "" {
		return "", errors.New("orderId is required")
	}
	orderID, err := kernel.UUIDFromString(raw)
	if err != nil {
		return "", err
	}

	query, err := queries.NewGetDeliveryLocationQuery(orderID, principal)
	if err != nil {
		return "", err
	}
	if _, err = h.access.Handle(ctx, query); err != nil {
		if errs.KindOf(err) == errs.KindInternal {
			h.logger.Error("failed to authorize order topic", "orderId", orderID.String(), "error", err)
			return "", errors.New("order is unavailable")
		}
		return "", err
	}
	return dispatch.OrderTopic(orderID.Identity()), nil
}
