package landing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/plug/internal/modules/landing/templates/components"
	"github.com/nfrund/plug/internal/rendering"
)

func setupLanding() *echo.Echo {
	h := NewHandler(rendering.NewUniversalRenderer(), false)
	e := echo.New()
	e.GET("/landing", h.PageGet)
	e.GET("/landing/menu", h.MenuGet)
	return e
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPageGet(t *testing.T) {
	rec := serve(setupLanding(), "/landing")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Welcome - Plug</title>")
	assert.Contains(t, body, `id="home"`)
	assert.Contains(t, body, `id="features"`)
	assert.Contains(t, body, "Get Started")
	assert.Contains(t, body, "Learn More")
	assert.Equal(t, len(components.DefaultFeatures), strings.Count(body, `class="feature-card"`))
	for _, link := range []string{"Home", "Features", "About", "Contact"} {
		assert.Contains(t, body, ">"+link+"</a>")
	}
	assert.Contains(t, body, `aria-expanded="false"`)
}

func TestMenuGet(t *testing.T) {
	e := setupLanding()

	open := serve(e, "/landing/menu?open=true")
	require.Equal(t, http.StatusOK, open.Code)
	assert.Contains(t, open.Body.String(), `id="mobile-menu"`)
	assert.Contains(t, open.Body.String(), `href="#contact"`)
	assert.Contains(t, open.Body.String(), `aria-expanded="true"`)
	assert.Contains(t, open.Body.String(), `hx-get="/landing/menu?open=false"`)
	assert.Equal(t, 2, strings.Count(open.Body.String(), `hx-swap-oob="true"`))

	closed := serve(e, "/landing/menu?open=false")
	require.Equal(t, http.StatusOK, closed.Code)
	assert.NotContains(t, closed.Body.String(), `href="#contact"`)
	assert.Contains(t, closed.Body.String(), `hx-get="/landing/menu?open=true"`)

	assert.Equal(t, http.StatusBadRequest, serve(e, "/landing/menu?open=maybe").Code)
}
