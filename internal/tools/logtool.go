// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/researcherbot/research-bot/internal/researchlog"
)

// LogTool exposes the research log to the model so it can reuse prior
// answers before reaching for live searches.
type LogTool struct {
	store *researchlog.Store
}

// NewLogTool wraps a research log store as a tool.
func NewLogTool(store *researchlog.Store) *LogTool {
	return &LogTool{store: store}
}

// Name returns the tool identifier.
func (t *LogTool) Name() string { return "check_research_log" }

// Description returns the model-facing tool description.
func (t *LogTool) Description() string {
	return "Check the research log for previous answers relevant to a query. " +
		"Call this BEFORE searching the web: if a prior answer covers the question, " +
		"reuse it and mark the claim as coming from prior research. " +
		"Returns past questions, answers, and relevance scores."
}

// Parameters declares the tool's argument schema.
func (t *LogTool) Parameters() Schema {
	return Schema{
		Type: "object",
		Properties: map[string]Property{
			"query": {
				Type:        "string",
				Description: "The research question to look up in the log",
			},
		},
		Required: []string{"query"},
	}
}

// Call looks up relevant prior entries and formats them for the model.
func (t *LogTool) Call(_ context.Context, args map[string]any) string {
	query := stringArg(args, "query", "")
	if strings.TrimSpace(query) == "" {
		return "Research log check failed: no query provided."
	}

	entries := t.store.Relevant(query)
	if len(entries) == 0 {
		return fmt.Sprintf("No relevant prior research found for: %s", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant prior research entr%s:\n", len(entries), plural(len(entries)))
	for i, e := range entries {
		fmt.Fprintf(&b, "\n[%d] (relevance %.2f, researched %s)\n", i+1, e.RelevanceScore, e.Timestamp)
		fmt.Fprintf(&b, "    Q: %s\n", e.Query)
		fmt.Fprintf(&b, "    A: %s\n", e.Response)
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
