package landing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/plug/internal/modules/landing/templates/components"
	"github.com/nfrund/plug/internal/rendering"
)

// MenuRequest is the DTO for the mobile menu toggle.
type MenuRequest struct {
	Open bool `query:"open"`
}

// Handler serves the landing root.
type Handler struct {
	renderer   rendering.Renderer
	liveReload bool
}

// NewHandler creates a new landing handler.
func NewHandler(renderer rendering.Renderer, liveReload bool) *Handler {
	return &Handler{renderer: renderer, liveReload: liveReload}
}

// PageGet renders the header, hero and features.
func (h *Handler) PageGet(c echo.Context) error {
	return h.renderer.RenderPage(c, http.StatusOK, components.Page(h.liveReload))
}

// MenuGet returns the mobile menu and its toggle in the requested state.
func (h *Handler) MenuGet(c echo.Context) error {
	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "open must be true or false").SetInternal(err)
	}
	return h.renderer.RenderPage(c, http.StatusOK, components.MenuFragment(req.Open))
}
