// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the research stages: clarify the question,
// research with tools, fact-check the draft, and format the final report.
// The stages run strictly in that order within one run; the research log is
// the only state shared between runs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/researcherbot/research-bot/internal/agent"
	"github.com/researcherbot/research-bot/internal/researchlog"
	"github.com/researcherbot/research-bot/pkg/types"
)

// NoFeedback is the neutral critique used when the fact-check stage
// produces nothing.
const NoFeedback = "No feedback"

// Pipeline orchestrates one research run end to end and records the result
// in the research log.
type Pipeline struct {
	backend    agent.ChatBackend
	researcher *agent.Agent
	store      *researchlog.Store

	// Observer, when set, receives the clarification exactly once,
	// synchronously, before the research stage starts. It is the caller's
	// own callback: a panic inside it propagates.
	Observer func(clarification string)

	// Warn receives best-effort failure notices (e.g. a log write that
	// could not complete). Defaults to stderr.
	Warn io.Writer
}

// New builds a Pipeline. backend serves the tool-free stages; researcher
// runs the tool-calling research stage; store receives the final report.
func New(backend agent.ChatBackend, researcher *agent.Agent, store *researchlog.Store) *Pipeline {
	return &Pipeline{
		backend:    backend,
		researcher: researcher,
		store:      store,
		Warn:       os.Stderr,
	}
}

// Clarify restates the question and proposes a research plan. An empty
// model response yields an empty clarification, which the orchestrator
// treats as "use the raw query".
func (p *Pipeline) Clarify(ctx context.Context, query string) (string, error) {
	prompt, err := renderPrompt(clarifyPromptTmpl, struct{ Query string }{query})
	if err != nil {
		return "", fmt.Errorf("rendering clarify prompt: %w", err)
	}
	reply, err := p.backend.Chat(ctx, []agent.Message{{Role: agent.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return "", fmt.Errorf("clarify stage: %w", err)
	}
	return strings.TrimSpace(reply.Content), nil
}

// FactCheck critiques a draft for uncorroborated claims, bias, and weak
// sources. It never fails: a model error or empty critique degrades to
// NoFeedback so a weak review cannot sink a finished draft.
func (p *Pipeline) FactCheck(ctx context.Context, query, draft string) string {
	prompt, err := renderPrompt(factCheckPromptTmpl, struct{ Query, Draft string }{query, draft})
	if err != nil {
		return NoFeedback
	}
	reply, err := p.backend.Chat(ctx, []agent.Message{{Role: agent.RoleUser, Content: prompt}}, nil)
	if err != nil || strings.TrimSpace(reply.Content) == "" {
		return NoFeedback
	}
	return reply.Content
}

// Format reconciles the draft with the critique into the final report. On
// any failure it returns the unmodified draft rather than losing the
// answer.
func (p *Pipeline) Format(ctx context.Context, query, draft, feedback string) string {
	prompt, err := renderPrompt(formatPromptTmpl, struct{ Query, Draft, Feedback string }{query, draft, feedback})
	if err != nil {
		return draft
	}
	reply, err := p.backend.Chat(ctx, []agent.Message{{Role: agent.RoleUser, Content: prompt}}, nil)
	if err != nil || strings.TrimSpace(reply.Content) == "" {
		return draft
	}
	return reply.Content
}

// Run executes the full pipeline for one query and returns every stage's
// output. The final report is logged against the original query with the
// total elapsed time; a log write failure is reported on Warn and
// swallowed.
func (p *Pipeline) Run(ctx context.Context, query string) (types.PipelineResult, error) {
	start := time.Now()
	var res types.PipelineResult

	clarification, err := p.Clarify(ctx, query)
	if err != nil {
		return res, err
	}
	res.Clarification = clarification
	if p.Observer != nil {
		p.Observer(clarification)
	}

	draft, toolsUsed, err := p.researcher.Research(ctx, enrichQuery(query, clarification))
	if err != nil {
		return res, err
	}
	res.Draft = draft
	res.ToolsUsed = dedupe(toolsUsed)

	res.Feedback = p.FactCheck(ctx, query, draft)
	res.Report = p.Format(ctx, query, draft, res.Feedback)

	if len(res.ToolsUsed) > 0 {
		res.Report += "\n\n---\nTools used: " + strings.Join(res.ToolsUsed, ", ")
	}

	res.ElapsedSeconds = time.Since(start).Seconds()
	if err := p.store.Append(query, res.Report, res.ElapsedSeconds); err != nil {
		fmt.Fprintf(p.Warn, "warning: could not write research log: %v\n", err)
	}
	return res, nil
}

// Research runs the full pipeline and returns only the final report.
func (p *Pipeline) Research(ctx context.Context, query string) (string, error) {
	res, err := p.Run(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Report, nil
}

// Quick runs the research stage alone, logging its draft directly. This is
// the latency-sensitive path: no fact-check, no formatting, no tools-used
// section.
func (p *Pipeline) Quick(ctx context.Context, query string) (string, error) {
	start := time.Now()
	draft, _, err := p.researcher.Research(ctx, query)
	if err != nil {
		return "", err
	}
	if err := p.store.Append(query, draft, time.Since(start).Seconds()); err != nil {
		fmt.Fprintf(p.Warn, "warning: could not write research log: %v\n", err)
	}
	return draft, nil
}

// enrichQuery prepends the clarification to the research prompt. A
// whitespace-only clarification is bypassed so an empty plan cannot
// corrupt the prompt.
func enrichQuery(query, clarification string) string {
	if strings.TrimSpace(clarification) == "" {
		return query
	}
	return fmt.Sprintf("%s\n\nScope and research plan:\n%s\n\nFollow this plan while researching.", query, clarification)
}

// dedupe removes duplicate tool names, preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
