// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/researcherbot/research-bot/internal/researchlog"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the research log",
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List all logged research entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := logStore()
		entries := store.Load()
		if len(entries) == 0 {
			fmt.Printf("Research log is empty (%s).\n", store.Path())
			return nil
		}
		for i, e := range entries {
			fmt.Printf("[%d] %s (%.2fs)\n", i+1, e.Timestamp, e.ResponseTimeSeconds)
			fmt.Printf("    Q: %s\n", e.Query)
			fmt.Printf("    A: %s\n\n", firstLine(e.Response))
		}
		return nil
	},
}

var logRelevantCmd = &cobra.Command{
	Use:   "relevant [query...]",
	Short: "Show logged entries relevant to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		entries := logStore().Relevant(query)
		if len(entries) == 0 {
			fmt.Printf("No relevant prior research found for: %s\n", query)
			return nil
		}
		for i, e := range entries {
			fmt.Printf("[%d] relevance %.2f, %s\n", i+1, e.RelevanceScore, e.Timestamp)
			fmt.Printf("    Q: %s\n", e.Query)
			fmt.Printf("    A: %s\n\n", firstLine(e.Response))
		}
		return nil
	},
}

var logExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the research log to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		store := logStore()
		switch format {
		case "yaml":
			return store.ExportYAML(os.Stdout)
		case "json":
			return store.ExportJSON(os.Stdout)
		default:
			return fmt.Errorf("unknown format %q: use yaml or json", format)
		}
	},
}

// logStore builds a store from the current configuration without wiring
// the full pipeline.
func logStore() *researchlog.Store {
	return researchlog.NewStore(loadConfig().Log)
}

// firstLine truncates a response to its first line for listings.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func init() {
	logExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logRelevantCmd)
	logCmd.AddCommand(logExportCmd)
	rootCmd.AddCommand(logCmd)
}
