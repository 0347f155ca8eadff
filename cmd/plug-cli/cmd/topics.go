package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nfrund/plug/internal/pubsub"

	// Registers the module topics.
	_ "github.com/nfrund/plug/internal/app"
)

var (
	topicsFormat string
	topicsModule string
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the message bus topics",
	Long: `List every typed topic carried by the in-process message bus.

Examples:
  plug-cli topics                   # table format
  plug-cli topics --module chat     # only topics owned by the chat module
  plug-cli topics --format json     # machine-readable output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topics := filterTopics(pubsub.Topics(), topicsModule)
		if len(topics) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No topics found")
			return nil
		}

		switch topicsFormat {
		case "json":
			return writeTopicsJSON(cmd.OutOrStdout(), topics)
		case "table":
			writeTopicsTable(cmd.OutOrStdout(), topics)
			return nil
		default:
			return fmt.Errorf("unsupported output format %q, use 'table' or 'json'", topicsFormat)
		}
	},
}

func filterTopics(topics []pubsub.TopicInfo, module string) []pubsub.TopicInfo {
	if module == "" {
		return topics
	}
	var out []pubsub.TopicInfo
	for _, t := range topics {
		if t.Module == module {
			out = append(out, t)
		}
	}
	return out
}

func writeTopicsTable(w io.Writer, topics []pubsub.TopicInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tMODULE\tPAYLOAD\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t------\t-------\t-----------")
	for _, t := range topics {
		payload := t.TypeName
		if len(t.PayloadFields) > 0 {
			payload += "{" + strings.Join(t.PayloadFields, ",") + "}"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, t.Module, payload, truncate(t.Description, 50))
	}
}

func writeTopicsJSON(w io.Writer, topics []pubsub.TopicInfo) error {
	output := struct {
		Topics []pubsub.TopicInfo `json:"topics"`
		Count  int                `json:"count"`
	}{
		Topics: topics,
		Count:  len(topics),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	topicsCmd.Flags().StringVarP(&topicsFormat, "format", "f", "table", "Output format (table, json)")
	topicsCmd.Flags().StringVarP(&topicsModule, "module", "m", "", "Filter topics by module name")
	rootCmd.AddCommand(topicsCmd)
}
