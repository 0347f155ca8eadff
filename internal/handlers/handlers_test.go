package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthGet(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, NewHealthHandler().HealthGet(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCustomValidator(t *testing.T) {
	type form struct {
		ID      string `validate:"required,uuid"`
		Message string `validate:"max=5"`
	}
	v := NewValidator()

	assert.NoError(t, v.Validate(form{ID: "7b0e1c50-5d1f-4f62-9d57-8f4a6b9d3e21", Message: "hi"}))
	assert.Error(t, v.Validate(form{ID: "not-a-uuid"}))
	assert.Error(t, v.Validate(form{ID: "7b0e1c50-5d1f-4f62-9d57-8f4a6b9d3e21", Message: "too long"}))
}
