package server

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/plug/internal/handlers"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/web"
)

// RegisterRoutes sets up the routes that do not belong to a module: static
// assets, the health check and the configured home page.
func (s *Server) RegisterRoutes() error {
	assets, err := do.Invoke[afero.Fs](s.injector)
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	s.E.GET("/static/*", web.StaticHandler("/static", assets))

	healthHandler := handlers.NewHealthHandler()
	s.E.GET("/health", healthHandler.HealthGet)

	home, err := s.home()
	if err != nil {
		return err
	}
	s.E.GET("/", home.Home)
	return nil
}

func (s *Server) home() (module.HomeProvider, error) {
	for _, m := range s.modules {
		if m.Name() != s.Cfg.HomePage {
			continue
		}
		if home, ok := m.(module.HomeProvider); ok {
			return home, nil
		}
		return nil, fmt.Errorf("module %s cannot serve the home page", m.Name())
	}
	return nil, fmt.Errorf("home module %q is not enabled", s.Cfg.HomePage)
}
