package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	chatcore "github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/middleware"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/internal/pubsub"
	"github.com/nfrund/plug/internal/rendering"
	"github.com/nfrund/plug/internal/websocket"
)

// ChatModule implements the module.Module interface for the chat widget.
type ChatModule struct {
	module.BaseModule
	manager *chatcore.Manager
	handler *Handler
}

// New creates a new instance of the ChatModule.
func New() *ChatModule {
	return &ChatModule{}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// Register provides the conversation manager. Every conversation publishes
// its events on the bus and replies through the configured responder.
func (m *ChatModule) Register(i do.Injector) error {
	do.Provide(i, func(i do.Injector) (*chatcore.Manager, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		publisher, err := do.Invoke[pubsub.Publisher](i)
		if err != nil {
			return nil, err
		}
		responder, err := do.Invoke[chatcore.Responder](i)
		if err != nil {
			return nil, err
		}

		return chatcore.NewManager(
			chatcore.WithConversationTTL(cfg.ConversationTTL),
			chatcore.WithTeardownGrace(cfg.TeardownGrace),
			chatcore.WithConversationOptions(
				chatcore.WithResponder(responder),
				chatcore.WithNotifier(NewBusNotifier(publisher)),
			),
		), nil
	})
	return nil
}

// Boot starts the subscriber and the idle sweeper and sets up the routes.
func (m *ChatModule) Boot(ctx context.Context, g *echo.Group, i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	manager := do.MustInvoke[*chatcore.Manager](i)
	sub := do.MustInvoke[pubsub.Subscriber](i)
	pub := do.MustInvoke[pubsub.Publisher](i)
	renderer := do.MustInvoke[rendering.Renderer](i)
	bridge := do.MustInvoke[*websocket.Bridge](i)

	// --- Start Background Services ---
	chatSubscriber := NewSubscriber(sub, pub, renderer, manager)
	if err := chatSubscriber.Start(ctx); err != nil {
		return fmt.Errorf("start chat subscriber: %w", err)
	}
	go manager.Run(ctx)

	// --- Register HTTP Handlers ---
	slog.Info("Booting ChatModule: Setting up routes...")
	m.manager = manager
	m.handler = NewHandler(manager, renderer, bridge, cfg.LiveReload)

	limiter := middleware.RateLimiter()
	g.GET("", m.handler.PageGet)
	g.GET("/:id/messages", m.handler.TranscriptGet)
	g.POST("/:id/messages", m.handler.MessagePost, limiter)
	g.POST("/:id/keys", m.handler.KeysPost, limiter)
	g.GET("/:id/ws", m.handler.SocketGet)

	return nil
}

// Home renders the chat root. It is only usable after Boot.
func (m *ChatModule) Home(c echo.Context) error {
	return m.handler.PageGet(c)
}

// Shutdown closes every open conversation.
func (m *ChatModule) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down ChatModule...")
	if m.manager == nil {
		return nil
	}
	return m.manager.Shutdown(ctx)
}
