// Package devreload reloads open pages when on-disk assets change.
package devreload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/internal/pubsub"
	"github.com/nfrund/plug/internal/rendering"
	"github.com/nfrund/plug/internal/websocket"
)

const (
	// Audience groups the reload sockets in the websocket bridge.
	Audience = "devreload"
	// DefaultDebounce coalesces the bursts of events editors produce on save.
	DefaultDebounce = 150 * time.Millisecond
)

// Fragment replaces the #dev-reload placeholder with a script that reloads
// the page.
func Fragment() g.Node {
	return Div(ID("dev-reload"), g.Attr("hx-swap-oob", "true"),
		Script(g.Raw("window.location.reload()")),
	)
}

// Watcher broadcasts Fragment whenever a file under dir changes.
type Watcher struct {
	dir       string
	publisher pubsub.Publisher
	renderer  rendering.Renderer
	debounce  time.Duration
	logger    *slog.Logger
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, pub pubsub.Publisher, renderer rendering.Renderer) *Watcher {
	return &Watcher{
		dir:       dir,
		publisher: pub,
		renderer:  renderer,
		debounce:  DefaultDebounce,
		logger:    slog.Default().With("component", "devreload"),
	}
}

// Run watches until ctx is cancelled. Directories created later are added
// as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching static assets for changes", "dir", w.dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("Asset changed", "file", event.Name, "op", event.Op.String())
				pending = time.After(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", "error", err)

		case <-pending:
			pending = nil
			if err := w.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("Failed to broadcast reload", "error", err)
			}
		}
	}
}

// Reload tells every connected page to reload.
func (w *Watcher) Reload(ctx context.Context) error {
	html, err := w.renderer.RenderComponent(ctx, Fragment())
	if err != nil {
		return err
	}
	w.logger.Info("Reloading connected pages")
	return w.publisher.Publish(ctx, pubsub.Message{
		Topic:   websocket.TopicHTMLBroadcast,
		Payload: html,
	})
}

// Module serves the reload socket and runs the watcher. It does nothing
// unless live reload is enabled.
type Module struct {
	module.BaseModule
}

// New creates the dev module.
func New() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "dev"
}

// Boot starts the watcher and mounts /dev/reload.
func (m *Module) Boot(ctx context.Context, router *echo.Group, i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.LiveReload {
		return nil
	}
	pub := do.MustInvoke[pubsub.Publisher](i)
	renderer := do.MustInvoke[rendering.Renderer](i)
	bridge := do.MustInvoke[*websocket.Bridge](i)

	watcher := NewWatcher(cfg.StaticDir, pub, renderer)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("Live reload watcher stopped", "error", err)
		}
	}()

	router.GET("/reload", func(c echo.Context) error {
		return bridge.Serve(c, Audience)
	})
	return nil
}
