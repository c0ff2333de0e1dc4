// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/researcherbot/research-bot/internal/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Answer a single research question",
	Long: `Ask runs one research question through the full pipeline: clarify,
research with tools, fact-check, and format. The final cited report is
printed and appended to the research log.

Use --quick to skip fact-checking and formatting (researcher only, faster),
or --stream to watch the research unfold step by step (direct mode).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		quick, _ := cmd.Flags().GetBool("quick")
		stream, _ := cmd.Flags().GetBool("stream")

		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		switch {
		case stream:
			return runStream(ctx, a, query)
		case quick:
			answer, err := a.pipeline.Quick(ctx, query)
			if err != nil {
				return fmt.Errorf("research failed: %w", err)
			}
			fmt.Println(makeLinksClickable(answer))
		default:
			a.pipeline.Observer = func(clarification string) {
				if clarification != "" {
					fmt.Fprintf(os.Stderr, "Plan:\n%s\n\n", clarification)
				}
			}
			fmt.Fprintln(os.Stderr, "Researching, fact-checking, formatting...")
			report, err := a.pipeline.Research(ctx, query)
			if err != nil {
				return fmt.Errorf("research failed: %w", err)
			}
			fmt.Println(makeLinksClickable(report))
		}
		return nil
	},
}

// runStream prints the research run incrementally and logs the final
// answer itself, since direct mode bypasses the pipeline's logging.
func runStream(ctx context.Context, a *app, query string) error {
	start := time.Now()
	var lastAnswer string

	for snap := range a.agent.Stream(ctx, query) {
		if snap.Err != nil {
			return fmt.Errorf("research failed: %w", snap.Err)
		}
		for _, msg := range snap.New {
			switch {
			case len(msg.ToolCalls) > 0:
				names := make([]string, 0, len(msg.ToolCalls))
				for _, tc := range msg.ToolCalls {
					names = append(names, tc.Function.Name)
				}
				fmt.Printf("[Tool calls: %s]\n\n", strings.Join(names, ", "))
			case msg.Role == agent.RoleAssistant && strings.TrimSpace(msg.Content) != "":
				lastAnswer = msg.Content
				fmt.Println(makeLinksClickable(msg.Content))
				fmt.Println()
			}
		}
	}

	if lastAnswer != "" {
		if err := a.store.Append(query, lastAnswer, time.Since(start).Seconds()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write research log: %v\n", err)
		}
	}
	return nil
}

func init() {
	askCmd.Flags().BoolP("quick", "q", false, "skip fact-check and formatter (researcher only, faster)")
	askCmd.Flags().BoolP("stream", "s", false, "stream the research process (direct mode, no fact-check pipeline)")

	rootCmd.AddCommand(askCmd)
}
