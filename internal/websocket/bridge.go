package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/plug/internal/pubsub"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// ErrBridgeStopped is returned when the bridge is not running.
var ErrBridgeStopped = errors.New("websocket bridge is not running")

// Client is a single websocket connection subscribed to one audience.
type Client struct {
	// ID is unique per connection.
	ID string
	// Audience groups connections that receive the same direct messages,
	// e.g. every tab showing one conversation.
	Audience string
	conn     *websocket.Conn
	send     chan []byte
	bridge   *Bridge
}

type directMessage struct {
	audience string
	payload  []byte
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithOriginPatterns allows cross-origin upgrades from the given host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(b *Bridge) { b.originPatterns = patterns }
}

// Bridge manages all websocket connections and routes rendered fragments
// from the bus to them.
type Bridge struct {
	publisher      pubsub.Publisher
	subscriber     pubsub.Subscriber
	originPatterns []string
	logger         *slog.Logger

	// clients maps an audience to its live connections.
	clients map[string][]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage

	startOnce sync.Once
	started   chan struct{}
	done      chan struct{}
}

// NewBridge creates a bridge. Call Run before serving connections.
func NewBridge(pub pubsub.Publisher, sub pubsub.Subscriber, opts ...Option) *Bridge {
	b := &Bridge{
		publisher:  pub,
		subscriber: sub,
		logger:     slog.Default().With("component", "websocket_bridge"),
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		direct:     make(chan directMessage),
		started:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Started is closed once Run has subscribed to the bus.
func (b *Bridge) Started() <-chan struct{} { return b.started }

// Run subscribes to the HTML topics and routes messages until ctx is
// cancelled. Every remaining connection is closed on return.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.subscriber.Subscribe(ctx, TopicHTMLBroadcast, b.handleBroadcast); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicHTMLBroadcast, err)
	}
	if err := b.subscriber.Subscribe(ctx, TopicHTMLDirect, b.handleDirect); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicHTMLDirect, err)
	}
	b.startOnce.Do(func() { close(b.started) })
	b.logger.Info("WebSocket bridge started")

	defer func() {
		close(b.done)
		b.mu.Lock()
		for audience, clients := range b.clients {
			for _, c := range clients {
				close(c.send)
			}
			delete(b.clients, audience)
		}
		b.mu.Unlock()
		b.logger.Info("WebSocket bridge stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.Audience] = append(b.clients[client.Audience], client)
			count := len(b.clients[client.Audience])
			b.mu.Unlock()
			b.logger.Debug("Client registered", "audience", client.Audience, "client_id", client.ID)
			go b.publishLifecycle(TopicClientReady, ClientEvent{
				Audience:  client.Audience,
				ClientID:  client.ID,
				Remaining: count,
			})

		case client := <-b.unregister:
			remaining, ok := b.remove(client)
			if !ok {
				continue
			}
			b.logger.Debug("Client unregistered", "audience", client.Audience, "client_id", client.ID)
			go b.publishLifecycle(TopicClientDisconnected, ClientEvent{
				Audience:  client.Audience,
				ClientID:  client.ID,
				Remaining: remaining,
				Reason:    "client_closed",
			})

		case payload := <-b.broadcast:
			b.mu.RLock()
			for _, clients := range b.clients {
				for _, client := range clients {
					b.enqueue(client, payload)
				}
			}
			b.mu.RUnlock()

		case msg := <-b.direct:
			b.mu.RLock()
			for _, client := range b.clients[msg.audience] {
				b.enqueue(client, msg.payload)
			}
			b.mu.RUnlock()
		}
	}
}

// remove drops a client and closes its send channel. It must only be called
// from Run.
func (b *Bridge) remove(client *Client) (remaining int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := b.clients[client.Audience]
	for i, c := range clients {
		if c == client {
			clients = append(clients[:i], clients[i+1:]...)
			ok = true
			break
		}
	}
	if !ok {
		return 0, false
	}
	if len(clients) == 0 {
		delete(b.clients, client.Audience)
	} else {
		b.clients[client.Audience] = clients
	}
	close(client.send)
	return len(clients), true
}

func (b *Bridge) enqueue(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		// Drop message if client's send buffer is full.
		b.logger.Warn("Client send channel full, dropping message", "audience", client.Audience, "client_id", client.ID)
	}
}

func (b *Bridge) publishLifecycle(event pubsub.Event[ClientEvent], payload ClientEvent) {
	if err := pubsub.Publish(context.Background(), b.publisher, event, payload); err != nil {
		b.logger.Error("Failed to publish websocket lifecycle event", "topic", event.Name(), "error", err)
	}
}

func (b *Bridge) handleBroadcast(ctx context.Context, msg pubsub.Message) error {
	return b.Broadcast(ctx, msg.Payload)
}

func (b *Bridge) handleDirect(ctx context.Context, msg pubsub.Message) error {
	audience := msg.Metadata[pubsub.MetaKeyRecipient]
	if audience == "" {
		return fmt.Errorf("direct message without %s", pubsub.MetaKeyRecipient)
	}
	return b.SendDirect(ctx, audience, msg.Payload)
}

// Broadcast queues payload for every connected client.
func (b *Bridge) Broadcast(ctx context.Context, payload []byte) error {
	select {
	case b.broadcast <- payload:
		return nil
	case <-b.done:
		return ErrBridgeStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendDirect queues payload for every client of one audience.
func (b *Bridge) SendDirect(ctx context.Context, audience string, payload []byte) error {
	select {
	case b.direct <- directMessage{audience: audience, payload: payload}:
		return nil
	case <-b.done:
		return ErrBridgeStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of live connections for an audience.
func (b *Bridge) ClientCount(audience string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[audience])
}

// Serve upgrades the request and attaches the connection to audience.
func (b *Bridge) Serve(c echo.Context, audience string) error {
	select {
	case <-b.started:
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrBridgeStopped.Error())
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: b.originPatterns,
	})
	if err != nil {
		b.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		// Accept has already written the response.
		return nil
	}

	client := &Client{
		ID:       uuid.NewString(),
		Audience: audience,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		bridge:   b,
	}

	select {
	case b.register <- client:
	case <-b.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump watches the connection for closure. Clients only receive fragments,
// so anything they send is discarded.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.bridge.unregister <- c:
		case <-c.bridge.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, message, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				c.bridge.logger.Debug("WebSocket closed normally by client", "client_id", c.ID)
			} else if !errors.Is(err, io.EOF) {
				c.bridge.logger.Debug("WebSocket read ended", "client_id", c.ID, "error", err)
			}
			return
		}
		c.bridge.logger.Debug("Ignoring client frame", "client_id", c.ID, "size", len(message))
	}
}

// writePump sends queued fragments and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// The bridge closed the channel.
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.bridge.logger.Debug("WebSocket write failed", "client_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.bridge.logger.Debug("WebSocket ping failed", "client_id", c.ID, "error", err)
				return
			}
		}
	}
}
