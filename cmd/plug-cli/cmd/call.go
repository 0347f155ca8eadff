package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/plug/internal/firebase"
)

var callData string

var callCmd = &cobra.Command{
	Use:   "call <function>",
	Short: "Invoke a callable function",
	Long: `Invoke a callable function with a JSON payload and print its result.

In development (APP_ENV=development) the call goes to the local functions
emulator.

Examples:
  plug-cli call chat --data '{"text":"Hello"}'
  APP_ENV=development plug-cli call ping`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data any
		if callData != "" {
			if err := json.Unmarshal([]byte(callData), &data); err != nil {
				return fmt.Errorf("invalid --data: %w", err)
			}
		}

		_, injector, err := loadInjector()
		if err != nil {
			return err
		}
		defer injector.Shutdown()

		client, err := do.Invoke[*firebase.Client](injector)
		if err != nil {
			return err
		}

		var result json.RawMessage
		if err := client.Call(cmd.Context(), args[0], data, &result); err != nil {
			return err
		}
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(result))
		return nil
	},
}

func init() {
	callCmd.Flags().StringVarP(&callData, "data", "d", "", "JSON payload sent as the call data")
	rootCmd.AddCommand(callCmd)
}
