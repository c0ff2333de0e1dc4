// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researcherbot/research-bot/internal/agent"
	"github.com/researcherbot/research-bot/internal/researchlog"
	"github.com/researcherbot/research-bot/internal/tools"
	"github.com/researcherbot/research-bot/pkg/types"
)

// stageBackend serves the tool-free stages. It recognizes each stage by
// its prompt and records the call order.
type stageBackend struct {
	mu    sync.Mutex
	calls []string

	clarify    string
	clarifyErr error

	feedback    string
	feedbackErr error

	report    string
	reportErr error
}

func (b *stageBackend) Chat(_ context.Context, messages []agent.Message, _ []agent.ToolSpec) (agent.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prompt := messages[len(messages)-1].Content
	switch {
	case strings.Contains(prompt, "research planning assistant"):
		b.calls = append(b.calls, "clarify")
		return agent.Message{Role: agent.RoleAssistant, Content: b.clarify}, b.clarifyErr
	case strings.Contains(prompt, "fact-checking reviewer"):
		b.calls = append(b.calls, "factcheck")
		return agent.Message{Role: agent.RoleAssistant, Content: b.feedback}, b.feedbackErr
	case strings.Contains(prompt, "final research report"):
		b.calls = append(b.calls, "format")
		return agent.Message{Role: agent.RoleAssistant, Content: b.report}, b.reportErr
	}
	return agent.Message{}, errors.New("unrecognized stage prompt")
}

// researchBackend serves the tool-calling research stage with a canned
// script and records the prompts it was asked to research.
type researchBackend struct {
	replies []agent.Message
	queries []string
}

func (b *researchBackend) Chat(_ context.Context, messages []agent.Message, _ []agent.ToolSpec) (agent.Message, error) {
	for _, m := range messages {
		if m.Role == agent.RoleUser {
			b.queries = append(b.queries, m.Content)
			break
		}
	}
	if len(b.replies) == 0 {
		return agent.Message{Role: agent.RoleAssistant}, nil
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r, nil
}

type cannedTool struct {
	name    string
	payload string
}

func (t *cannedTool) Name() string             { return t.name }
func (t *cannedTool) Description() string      { return "test tool" }
func (t *cannedTool) Parameters() tools.Schema { return tools.Schema{Type: "object"} }
func (t *cannedTool) Call(context.Context, map[string]any) string {
	return t.payload
}

func answer(content string) agent.Message {
	return agent.Message{Role: agent.RoleAssistant, Content: content}
}

func callTool(name string) agent.Message {
	return agent.Message{Role: agent.RoleAssistant, ToolCalls: []agent.ToolCall{
		{Function: agent.FunctionCall{Name: name, Arguments: map[string]any{"query": "q"}}},
	}}
}

func newTestStore(t *testing.T) *researchlog.Store {
	t.Helper()
	return researchlog.NewStore(types.LogConfig{Path: filepath.Join(t.TempDir(), "log.json")})
}

func newResearcher(t *testing.T, backend agent.ChatBackend, toolset ...tools.Tool) *agent.Agent {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolset {
		require.NoError(t, registry.Register(tool))
	}
	return agent.New(backend, registry, types.ModelConfig{})
}

func TestRunStageOrder(t *testing.T) {
	stages := &stageBackend{
		clarify:  "Scope: test.\n1. Look it up.",
		feedback: "Uncorroborated claims:\nNone.",
		report:   "the final report",
	}
	research := &researchBackend{replies: []agent.Message{answer("the draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "what is a test")
	require.NoError(t, err)

	// Each tool-free stage ran exactly once, in order, and the research
	// stage ran between clarify and fact-check.
	assert.Equal(t, []string{"clarify", "factcheck", "format"}, stages.calls)
	require.Len(t, research.queries, 1)

	assert.Equal(t, "Scope: test.\n1. Look it up.", res.Clarification)
	assert.Equal(t, "the draft", res.Draft)
	assert.Equal(t, "Uncorroborated claims:\nNone.", res.Feedback)
	assert.Equal(t, "the final report", res.Report)
	assert.Greater(t, res.ElapsedSeconds, 0.0)
}

func TestRunEnrichesResearchQuery(t *testing.T) {
	stages := &stageBackend{clarify: "1. Check the log.", feedback: "fine", report: "done"}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	store := newTestStore(t)
	p := New(stages, newResearcher(t, research), store)

	_, err := p.Run(context.Background(), "original question")
	require.NoError(t, err)

	require.Len(t, research.queries, 1)
	assert.Contains(t, research.queries[0], "original question")
	assert.Contains(t, research.queries[0], "Scope and research plan:")
	assert.Contains(t, research.queries[0], "1. Check the log.")

	// The log records the original question, not the enriched prompt.
	entries := store.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "original question", entries[0].Query)
	assert.Equal(t, "done", entries[0].Response)
}

func TestRunEmptyClarificationBypassesEnrichment(t *testing.T) {
	stages := &stageBackend{clarify: "   \n  ", feedback: "fine", report: "done"}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "raw question")
	require.NoError(t, err)
	assert.Empty(t, res.Clarification)
	require.Len(t, research.queries, 1)
	assert.Equal(t, "raw question", research.queries[0])
}

func TestRunClarifyErrorPropagates(t *testing.T) {
	stages := &stageBackend{clarifyErr: errors.New("model offline")}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	_, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorContains(t, err, "clarify stage")
	// Nothing past the failed stage ran.
	assert.Equal(t, []string{"clarify"}, stages.calls)
	assert.Empty(t, research.queries)
}

func TestRunFactCheckFailureDegradesToNoFeedback(t *testing.T) {
	stages := &stageBackend{
		clarify:     "plan",
		feedbackErr: errors.New("reviewer offline"),
		report:      "final",
	}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoFeedback, res.Feedback)
	assert.Equal(t, "final", res.Report)
}

func TestRunFormatFailureKeepsDraft(t *testing.T) {
	stages := &stageBackend{
		clarify:   "plan",
		feedback:  "some feedback",
		reportErr: errors.New("editor offline"),
	}
	research := &researchBackend{replies: []agent.Message{answer("the draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "the draft", res.Report)
}

func TestRunEmptyFallbacks(t *testing.T) {
	// Empty critique and empty formatter output both degrade instead of
	// erasing the answer.
	stages := &stageBackend{clarify: "plan", feedback: "  ", report: ""}
	research := &researchBackend{replies: []agent.Message{answer("the draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoFeedback, res.Feedback)
	assert.Equal(t, "the draft", res.Report)
}

func TestRunObserverCalledOnceBeforeResearch(t *testing.T) {
	stages := &stageBackend{clarify: "the plan", feedback: "fine", report: "done"}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	var observed []string
	p.Observer = func(clarification string) {
		observed = append(observed, clarification)
		// Research has not started when the observer fires.
		assert.Empty(t, research.queries)
	}

	_, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"the plan"}, observed)
}

func TestRunToolsUsedSection(t *testing.T) {
	stages := &stageBackend{clarify: "plan", feedback: "fine", report: "Report body."}
	research := &researchBackend{replies: []agent.Message{
		callTool("search_web"),
		callTool("search_web"),
		callTool("arxiv_search"),
		answer("draft"),
	}}
	p := New(stages, newResearcher(t, research,
		&cannedTool{name: "search_web", payload: "web"},
		&cannedTool{name: "arxiv_search", payload: "papers"},
	), newTestStore(t))

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	// Deduplicated, first-seen order, appended after a separator.
	assert.Equal(t, []string{"search_web", "arxiv_search"}, res.ToolsUsed)
	assert.Equal(t, "Report body.\n\n---\nTools used: search_web, arxiv_search", res.Report)
}

func TestRunNoToolsNoSection(t *testing.T) {
	stages := &stageBackend{clarify: "plan", feedback: "fine", report: "Report body."}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}
	p := New(stages, newResearcher(t, research), newTestStore(t))

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, res.ToolsUsed)
	assert.Equal(t, "Report body.", res.Report)
}

func TestRunLogFailureWarnsAndSucceeds(t *testing.T) {
	stages := &stageBackend{clarify: "plan", feedback: "fine", report: "done"}
	research := &researchBackend{replies: []agent.Message{answer("draft")}}

	// A log path under a regular file cannot be created.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store := researchlog.NewStore(types.LogConfig{Path: filepath.Join(blocker, "log.json")})

	p := New(stages, newResearcher(t, research), store)
	var warnings bytes.Buffer
	p.Warn = &warnings

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Report)
	assert.Contains(t, warnings.String(), "could not write research log")
}

func TestQuickLogsDraftDirectly(t *testing.T) {
	stages := &stageBackend{}
	research := &researchBackend{replies: []agent.Message{answer("quick draft")}}
	store := newTestStore(t)
	p := New(stages, newResearcher(t, research), store)

	out, err := p.Quick(context.Background(), "quick question")
	require.NoError(t, err)
	assert.Equal(t, "quick draft", out)

	// No tool-free stage ran.
	assert.Empty(t, stages.calls)

	entries := store.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "quick question", entries[0].Query)
	assert.Equal(t, "quick draft", entries[0].Response)
}

func TestRunEndToEndCitedReport(t *testing.T) {
	searchResult := "[1] Paris\n    URL: https://example.com/paris\n    Paris is the capital of France."
	draft := "Paris is the capital of France. [1](https://example.com/paris)"
	report := "Paris is the capital of France. [1](https://example.com/paris)"

	stages := &stageBackend{
		clarify:  "Scope: identify the capital of France.\n1. Check the log.\n2. Search the web.",
		feedback: "Uncorroborated claims:\nNone.\n\nAssessment:\nAdequately supported.",
		report:   report,
	}
	research := &researchBackend{replies: []agent.Message{
		callTool("search_web"),
		answer(draft),
	}}
	store := newTestStore(t)
	p := New(stages, newResearcher(t, research,
		&cannedTool{name: "search_web", payload: searchResult},
	), store)

	res, err := p.Run(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Contains(t, res.Report, "[1](https://example.com/paris)")
	assert.Contains(t, res.Report, "Tools used: search_web")

	entries := store.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "What is the capital of France?", entries[0].Query)
	assert.Equal(t, res.Report, entries[0].Response)
	assert.NotEmpty(t, entries[0].Timestamp)

	// A later related query finds the logged report.
	relevant := store.Relevant("capital of France")
	require.Len(t, relevant, 1)
	assert.GreaterOrEqual(t, relevant[0].RelevanceScore, 0.4)
}
