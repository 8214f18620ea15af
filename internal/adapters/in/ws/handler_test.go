package ws_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodmarket/internal/adapters/in/ws"
	"foodmarket/internal/adapters/out/jwtauth"
	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/dispatch"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	customerID = "64b7f0a2c1d2e3f4a5b6c7d8"
	ownerID    = "5f8d0d55b54764421b7156c3"
	strangerID = "507f191e810c19729de860ea"
)

type fixture struct {
	server *httptest.Server
	broker *dispatch.Broker
	auth   *jwtauth.Provider
	store  *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	broker := dispatch.NewBroker(logger)
	auth, err := jwtauth.NewProvider("ws-secret")
	require.NoError(t, err)

	handler := ws.NewHandler(
		broker,
		dispatch.NewTopicResolver(store.Vendors(), logger),
		queries.NewGetDeliveryLocationQueryHandler(store.Orders(), store.Vendors()),
		auth,
		ws.Config{PongTimeout: 5 * time.Second},
		logger,
	)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &fixture{server: server, broker: broker, auth: auth, store: store}
}

func (f *fixture) dial(t *testing.T, caller string) *websocket.Conn {
	t.Helper()

	token, err := f.auth.Issue(ports.Principal{ID: kernel.NewIdentity(caller)}, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (f *fixture) seedOrder(t *testing.T, vendorRef kernel.Identity) *order.Order {
	t.Helper()

	item, err := order.NewItem(vendorRef, "Laksa", 8, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), customerID, []order.Item{item}, 8, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.Orders().Add(t.Context(), o))
	return o
}

func readReply(t *testing.T, conn *websocket.Conn) ws.Reply {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply ws.Reply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_SubscribesHomeTopicsAndStreamsEvents(t *testing.T) {
	f := newFixture(t)
	v, err := vendor.NewVendor(kernel.NewUUID(), ownerID, "Laksa King", "")
	require.NoError(t, err)
	require.NoError(t, f.store.Vendors().Add(t.Context(), v))

	customer := f.dial(t, customerID)
	owner := f.dial(t, ownerID)

	customerTopic := dispatch.CustomerTopic(customerID)
	vendorTopic := dispatch.VendorTopic(v.ID().Identity())
	require.Eventually(t, func() bool {
		return f.broker.Members(customerTopic) == 1 &&
			f.broker.Members(vendorTopic) == 1 &&
			f.broker.Members(dispatch.VendorOwnerTopic(ownerID)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	f.broker.Publish(dispatch.Event{
		Topic:   customerTopic,
		Type:    string(order.ChangeUpdated),
		OrderID: "o-1",
		Changed: map[string]any{"status": "Delivered"},
	})

	require.NoError(t, customer.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got dispatch.Event
	require.NoError(t, customer.ReadJSON(&got))
	assert.Equal(t, customerTopic, got.Topic)
	assert.Equal(t, "order:update", got.Type)
	assert.Equal(t, "Delivered", got.Changed["status"])

	require.NoError(t, owner.WriteJSON(ws.Inbound{Type: ws.MessagePing}))
	assert.Equal(t, ws.ReplyPong, readReply(t, owner).Type)
}

func TestHandler_JoinAndLeaveOrder(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(t, ownerID)
	orderTopic := dispatch.OrderTopic(o.ID().Identity())

	t.Run("should let the customer follow its order", func(t *testing.T) {
		conn := f.dial(t, customerID)

		require.NoError(t, conn.WriteJSON(ws.Inbound{Type: ws.MessageJoinOrder, OrderID: o.ID().String()}))
		reply := readReply(t, conn)
		assert.Equal(t, ws.ReplyJoined, reply.Type)
		assert.Equal(t, orderTopic.String(), reply.Topic)
		assert.Equal(t, 1, f.broker.Members(orderTopic))

		require.NoError(t, conn.WriteJSON(ws.Inbound{Type: ws.MessageLeaveOrder, Order: "order:" + o.ID().String()}))
		assert.Equal(t, ws.ReplyLeft, readReply(t, conn).Type)
		assert.Zero(t, f.broker.Members(orderTopic))
	})

	t.Run("should refuse a stranger", func(t *testing.T) {
		conn := f.dial(t, strangerID)

		require.NoError(t, conn.WriteJSON(ws.Inbound{Type: ws.MessageJoinOrder, OrderID: o.ID().String()}))
		reply := readReply(t, conn)

		assert.Equal(t, ws.ReplyError, reply.Type)
		assert.Contains(t, reply.Message, "not authorized")
		assert.Zero(t, f.broker.Members(orderTopic))
	})

	t.Run("should answer malformed messages", func(t *testing.T) {
		conn := f.dial(t, customerID)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))

		assert.Equal(t, ws.ReplyError, readReply(t, conn).Type)
	})
}

func TestHandler_DisconnectRemovesMemberships(t *testing.T) {
	f := newFixture(t)
	topic := dispatch.CustomerTopic(customerID)

	conn := f.dial(t, customerID)
	require.Eventually(t, func() bool { return f.broker.Members(topic) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return f.broker.Members(topic) == 0 }, 2*time.Second, 10*time.Millisecond)
}
