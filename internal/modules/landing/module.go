package landing

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/internal/rendering"
)

// LandingModule serves the marketing page.
type LandingModule struct {
	module.BaseModule
	handler *Handler
}

// New creates a new instance of the LandingModule.
func New() *LandingModule {
	return &LandingModule{}
}

// Name returns the module name.
func (m *LandingModule) Name() string {
	return "landing"
}

// Boot registers the landing routes.
func (m *LandingModule) Boot(ctx context.Context, g *echo.Group, i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	renderer := do.MustInvoke[rendering.Renderer](i)

	slog.Info("Booting LandingModule: Setting up routes...")
	m.handler = NewHandler(renderer, cfg.LiveReload)

	g.GET("", m.handler.PageGet)
	g.GET("/menu", m.handler.MenuGet)
	return nil
}

// Home renders the landing root. It is only usable after Boot.
func (m *LandingModule) Home(c echo.Context) error {
	return m.handler.PageGet(c)
}
