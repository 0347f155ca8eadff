package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/firebase"
	"github.com/nfrund/plug/internal/pubsub"
	"github.com/nfrund/plug/internal/rendering"
	"github.com/nfrund/plug/internal/script"
	"github.com/nfrund/plug/internal/websocket"
	"github.com/nfrund/plug/web"
)

// NewInjector creates the root scope holding the services shared by every
// module. Services are built lazily on first use and shut down in reverse
// dependency order by the scope.
func NewInjector(cfg *config.Config) *do.RootScope {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, pubsub.LoadTracingConfig(os.Getenv))
	do.Provide(i, provideTracing)
	do.Provide(i, provideBus)
	do.MustAs[*pubsub.WatermillBridge, pubsub.Publisher](i)
	do.MustAs[*pubsub.WatermillBridge, pubsub.Subscriber](i)
	do.Provide(i, provideRenderer)
	do.Provide(i, provideBridge)
	do.Provide(i, provideFunctions)
	do.Provide(i, provideResponder)
	do.Provide(i, provideStaticFS)

	return i
}

func provideTracing(i do.Injector) (*pubsub.Tracing, error) {
	tc := do.MustInvoke[pubsub.TracingConfig](i)
	tracing, err := pubsub.NewTracing(context.Background(), tc)
	if err != nil {
		return nil, fmt.Errorf("set up tracing: %w", err)
	}
	if tracing.Enabled() {
		slog.Info("Message bus tracing enabled", "service", tc.ServiceName, "zipkin_url", tc.ZipkinURL)
	}
	return tracing, nil
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	tracing, err := do.Invoke[*pubsub.Tracing](i)
	if err != nil {
		return nil, err
	}
	if tracing.Enabled() {
		return pubsub.NewWatermillBridgeWithTracer(tracing.Tracer), nil
	}
	return pubsub.NewWatermillBridge(), nil
}

func provideRenderer(i do.Injector) (rendering.Renderer, error) {
	return rendering.NewUniversalRenderer(), nil
}

func provideBridge(i do.Injector) (*websocket.Bridge, error) {
	pub, err := do.Invoke[pubsub.Publisher](i)
	if err != nil {
		return nil, err
	}
	sub, err := do.Invoke[pubsub.Subscriber](i)
	if err != nil {
		return nil, err
	}
	return websocket.NewBridge(pub, sub), nil
}

// provideFunctions builds the callable functions client. In development it
// is pointed at the local emulator; failing to do so is never fatal.
func provideFunctions(i do.Injector) (*firebase.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := firebase.NewClient(cfg.Firebase)

	if cfg.IsDev() {
		if err := client.ConnectEmulator(cfg.Firebase.EmulatorHost, cfg.Firebase.EmulatorPort); err != nil {
			slog.Warn("Functions emulator already connected or not available", "error", err)
		} else {
			slog.Info("Connected to functions emulator",
				"host", cfg.Firebase.EmulatorHost,
				"port", cfg.Firebase.EmulatorPort,
			)
		}
	}
	return client, nil
}

// provideResponder selects the reply backend named by PLUG_RESPONDER.
func provideResponder(i do.Injector) (chat.Responder, error) {
	cfg := do.MustInvoke[*config.Config](i)

	switch cfg.ResponderMode {
	case config.ResponderFunctions:
		client, err := do.Invoke[*firebase.Client](i)
		if err != nil {
			return nil, err
		}
		slog.Info("Using functions responder", "function", cfg.ReplyFunction, "url", client.FunctionURL(cfg.ReplyFunction))
		return firebase.NewFunctionsResponder(client, cfg.ReplyFunction), nil

	case config.ResponderScript:
		responder, err := script.NewResponder(afero.NewOsFs(), cfg.ReplyScript, nil)
		if err != nil {
			return nil, fmt.Errorf("load reply script: %w", err)
		}
		slog.Info("Using script responder", "script", cfg.ReplyScript)
		return responder, nil

	default:
		return chat.NewCannedResponder(cfg.ReplyText, cfg.ReplyDelay), nil
	}
}

func provideStaticFS(i do.Injector) (afero.Fs, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return web.StaticFS(cfg.StaticSource, cfg.StaticDir)
}

// StartServices runs the background services modules depend on and returns
// once the websocket bridge is accepting connections. They stop with ctx.
func StartServices(ctx context.Context, i do.Injector) error {
	bridge, err := do.Invoke[*websocket.Bridge](i)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- bridge.Run(ctx)
	}()

	select {
	case <-bridge.Started():
	case err := <-errCh:
		return fmt.Errorf("websocket bridge: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	responder, err := do.Invoke[chat.Responder](i)
	if err != nil {
		return err
	}
	if watcher, ok := responder.(*script.Responder); ok {
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("Reply script watcher stopped", "error", err)
			}
		}()
	}
	return nil
}
