// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent runs the tool-calling research loop against a chat model
// and yields a cited draft answer.
package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/researcherbot/research-bot/internal/tools"
	"github.com/researcherbot/research-bot/pkg/types"
)

// FallbackAnswer is returned when the model produces no final content.
const FallbackAnswer = "I couldn't generate a response. Please try again."

const defaultMaxTurns = 10

// systemPrompt encodes the research policy: log before live search,
// freshness for time-sensitive topics, and a citation after every factual
// sentence.
const systemPrompt = `You are a research assistant that finds accurate, up-to-date information and cites every claim.

CRITICAL rules, in order:
1. ALWAYS call check_research_log FIRST. If a prior answer covers the question, reuse it and mark each reused claim with "(from prior research log)" instead of a URL citation.
2. For anything not covered by the log, search before answering. Never answer from memory alone. Use search_news (or another freshness-filtered search) for weather, prices, news, or other time-sensitive topics.
3. Attach a citation immediately after EVERY factual sentence, in the form [n](url) where [n] is the search result number. A sentence with no citation must be marked "(from prior research log)" or removed.
4. Run multiple searches if needed. Never state that information could not be found until you have retried at least once with a reworded query.
5. Synthesize the results into a clear answer with specific facts (temperatures, numbers, dates) where the sources provide them.

Be thorough. If search results lack specific details, say what you found and note the gaps in prose.`

// Agent drives one conversational research turn: the model either answers
// or requests tool calls, which are dispatched and fed back until it
// produces final content.
type Agent struct {
	backend  ChatBackend
	registry *tools.Registry
	maxTurns int
}

// New builds an Agent over a chat backend and a tool registry.
func New(backend ChatBackend, registry *tools.Registry, cfg types.ModelConfig) *Agent {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Agent{
		backend:  backend,
		registry: registry,
		maxTurns: maxTurns,
	}
}

// Research runs the agent loop for one query and returns the draft answer
// plus every tool invocation in call order, duplicates included. A backend
// failure propagates as an error; a model that never produces content
// yields FallbackAnswer instead.
func (a *Agent) Research(ctx context.Context, query string) (string, []string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: query},
	}
	specs := Specs(a.registry.Tools())

	var toolsUsed []string
	for turn := 0; turn < a.maxTurns; turn++ {
		reply, err := a.backend.Chat(ctx, messages, specs)
		if err != nil {
			return "", toolsUsed, err
		}
		messages = append(messages, reply)

		if len(reply.ToolCalls) == 0 {
			break
		}

		results := a.dispatch(ctx, reply.ToolCalls)
		for i, call := range reply.ToolCalls {
			toolsUsed = append(toolsUsed, call.Function.Name)
			messages = append(messages, Message{
				Role:     RoleTool,
				ToolName: call.Function.Name,
				Content:  results[i],
			})
		}
	}

	return FinalAnswer(messages), toolsUsed, nil
}

// dispatch invokes the requested tools concurrently. Results come back in
// request order so the model can correlate them to its calls; the calls
// are independent read-only lookups, so the fan-out is safe.
func (a *Agent) dispatch(ctx context.Context, calls []ToolCall) []string {
	results := make([]string, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = a.registry.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
		}(i, call)
	}
	wg.Wait()
	return results
}

// FinalAnswer returns the last assistant message with non-empty content,
// or FallbackAnswer when there is none.
func FinalAnswer(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == RoleAssistant && strings.TrimSpace(m.Content) != "" && len(m.ToolCalls) == 0 {
			return m.Content
		}
	}
	// A tool-calling message can still carry content; fall back to it
	// before giving up entirely.
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == RoleAssistant && strings.TrimSpace(m.Content) != "" {
			return m.Content
		}
	}
	return FallbackAnswer
}
