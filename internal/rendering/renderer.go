package rendering

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// Renderer defines the contract for rendering components to HTML.
// It uses interface{} for the component input so handlers and subscribers can
// pass any gomponents node without importing gomponents themselves.
type Renderer interface {
	// RenderComponent renders a component to a slice of bytes. Useful for HTMX fragments or WebSockets.
	RenderComponent(ctx context.Context, component interface{}) ([]byte, error)

	// RenderPage handles full-page rendering for Echo's context.
	RenderPage(c echo.Context, status int, component interface{}) error
}

// UniversalRenderer renders gomponents nodes and anything else exposing
// Render(io.Writer) error.
type UniversalRenderer struct{}

// NewUniversalRenderer creates a new UniversalRenderer instance.
func NewUniversalRenderer() *UniversalRenderer {
	return &UniversalRenderer{}
}

// gomponentNode defines the structural interface for gomponents.Node,
// which only requires an io.Writer.
type gomponentNode interface {
	Render(w io.Writer) error
}

func (tr *UniversalRenderer) render(_ context.Context, component interface{}, w io.Writer) error {
	switch c := component.(type) {
	case gomponentNode:
		return c.Render(w)
	case nil:
		return fmt.Errorf("nil component")
	default:
		return fmt.Errorf("unsupported component type: %T. Component must implement Render(io.Writer) error (like gomponents.Node)", component)
	}
}

// RenderComponent implements the Renderer interface.
func (tr *UniversalRenderer) RenderComponent(ctx context.Context, component interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tr.render(ctx, component, &buf); err != nil {
		return nil, fmt.Errorf("failed to render component to bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage implements the Renderer interface for full HTTP responses. The
// page is rendered into a buffer first so a failing component still yields a
// clean error response.
func (tr *UniversalRenderer) RenderPage(c echo.Context, status int, component interface{}) error {
	body, err := tr.RenderComponent(c.Request().Context(), component)
	if err != nil {
		slog.Error("Failed to render page", "path", c.Path(), "error", err)
		return err
	}
	return c.HTMLBlob(status, body)
}

// Render implements the echo.Renderer interface for use with c.Render(status, name, component).
func (tr *UniversalRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	// For component-based rendering, the component object is passed in the 'data' parameter.
	if c != nil && c.Response().Header().Get(echo.HeaderContentType) == "" {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	}

	ctx := context.Background()
	if c != nil {
		ctx = c.Request().Context()
	}
	return tr.render(ctx, data, w)
}
