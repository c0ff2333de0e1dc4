// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive research session",
	Long: `Chat starts an interactive loop: type a question, get a cited answer,
repeat. Type "quit", "exit", or "q" to stop.

By default each question runs the full pipeline. Use --quick for
researcher-only answers or --stream to watch each run unfold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quick, _ := cmd.Flags().GetBool("quick")
		stream, _ := cmd.Flags().GetBool("stream")

		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		fmt.Println("research-bot - Type your query and press Enter. Type 'quit' or 'exit' to stop.")
		if !quick && !stream {
			fmt.Println("Mode: clarify → research → fact-check → format (full pipeline). Use --quick for quick, --stream to stream.")
			a.pipeline.Observer = func(clarification string) {
				if clarification != "" {
					fmt.Printf("\nPlan:\n%s\n", clarification)
				}
			}
		}
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("Query: ")
			if !scanner.Scan() {
				break
			}
			query := strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}
			if q := strings.ToLower(query); q == "quit" || q == "exit" || q == "q" {
				break
			}

			switch {
			case stream:
				fmt.Println("\nResearching...")
				if err := runStream(ctx, a, query); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				}
			case quick:
				fmt.Println("\nResearching...")
				answer, err := a.pipeline.Quick(ctx, query)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Println("\nAnswer:")
				fmt.Println(makeLinksClickable(answer))
			default:
				fmt.Println("\nResearching, fact-checking, formatting...")
				report, err := a.pipeline.Research(ctx, query)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Println("\nAnswer:")
				fmt.Println(makeLinksClickable(report))
			}
			fmt.Println(strings.Repeat("-", 50))
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().BoolP("quick", "q", false, "skip fact-check and formatter (researcher only, faster)")
	chatCmd.Flags().BoolP("stream", "s", false, "stream each research run (direct mode)")

	rootCmd.AddCommand(chatCmd)
}
