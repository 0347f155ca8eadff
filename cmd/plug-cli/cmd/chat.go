package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/plug/cmd/plug-cli/internal/terminal"
	"github.com/nfrund/plug/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Plug from the terminal",
	Long: `Start a conversation with the configured reply backend (PLUG_RESPONDER).

Each line you type is sent when you press Enter. End a line with a backslash
to continue the message on the next line. Press Ctrl+D to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, injector, err := loadInjector()
		if err != nil {
			return err
		}
		defer injector.Shutdown()

		responder, err := do.Invoke[chat.Responder](injector)
		if err != nil {
			return fmt.Errorf("reply backend: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Plug: Ask about our premium edibles...")
		return terminal.New(out, chat.WithResponder(responder)).Run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
