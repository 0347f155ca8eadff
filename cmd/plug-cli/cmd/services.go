package cmd

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/nfrund/plug/internal/app"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/logging"
)

var logLevel string

// loadInjector reads the server configuration and builds the same service
// container the server uses. Logs go to stderr so command output stays clean.
func loadInjector() (*config.Config, *do.RootScope, error) {
	slog.SetDefault(logging.NewLogger(os.Stderr, os.Getenv("LOG_FORMAT"), logLevel))
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewInjector(cfg), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}
