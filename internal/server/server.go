package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/do/v2"

	"github.com/nfrund/plug/internal/app"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/handlers"
	"github.com/nfrund/plug/internal/middleware"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/internal/rendering"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	injector *do.RootScope
	modules  []module.Module
	booted   bool
}

// New creates a new Server instance. Modules are registered and booted by
// Boot or Start.
func New(cfg *config.Config, injector *do.RootScope, modules []module.Module) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				slog.Warn("Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("Request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	// Configure and use session middleware
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))
	e.Use(middleware.Visitor)

	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewUniversalRenderer()
	setupErrorHandling(e)

	return &Server{
		E:        e,
		Cfg:      cfg,
		injector: injector,
		modules:  modules,
	}
}

// setupErrorHandling installs the central error handler. Errors that are not
// echo.HTTPErrors are unexpected and logged with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"path", c.Path(),
				"stack_trace", string(debug.Stack()),
			)
			he = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		} else if he.Internal != nil {
			middleware.FromContext(c.Request().Context()).Debug("Request rejected",
				"status", he.Code,
				"error", he.Internal,
			)
		}

		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(he.Code)
		} else {
			respErr = c.JSON(he.Code, handlers.ErrorResponse{
				Code:    http.StatusText(he.Code),
				Message: message,
			})
		}
		if respErr != nil {
			slog.Error("Failed to write error response", "error", respErr)
		}
	}
}

// Boot registers every module's services, starts the shared background
// services and then boots each module under /<name>.
func (s *Server) Boot(ctx context.Context) error {
	if s.booted {
		return nil
	}
	for _, m := range s.modules {
		if err := m.Register(s.injector); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}

	if err := app.StartServices(ctx, s.injector); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	for _, m := range s.modules {
		slog.Info("Booting module", "module", m.Name())
		if err := m.Boot(ctx, s.E.Group("/"+m.Name()), s.injector); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
	}

	if err := s.RegisterRoutes(); err != nil {
		return err
	}
	s.booted = true
	return nil
}

// Shutdown stops the modules in reverse order and then the shared services.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown module %s: %w", s.modules[i].Name(), err))
		}
	}
	if report := s.injector.ShutdownWithContext(ctx); report != nil && !report.Succeed {
		errs = append(errs, report)
	}
	return errors.Join(errs...)
}
