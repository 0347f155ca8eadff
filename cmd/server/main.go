package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nfrund/plug/internal/app"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/logging"
	"github.com/nfrund/plug/internal/server"
)

// AppStatic can be set at build time to force an asset source.
// Example: go build -ldflags "-X 'main.AppStatic=embed'"
var AppStatic string

var (
	addr string
	home string
)

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Run the Plug web server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AppStatic != "" {
			os.Setenv("APP_STATIC", AppStatic)
		}
		if addr != "" {
			os.Setenv("SERVER_ADDR", addr)
		}
		if home != "" {
			os.Setenv("PLUG_HOME", home)
		}

		logging.New()
		cfg, err := config.New()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := server.New(cfg, app.NewInjector(cfg), app.NewModules())
		return s.Start(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	rootCmd.Flags().StringVar(&home, "home", "", "home page root: chat or landing (overrides PLUG_HOME)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
