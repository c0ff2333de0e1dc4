// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researcherbot/research-bot/internal/tools"
	"github.com/researcherbot/research-bot/pkg/types"
)

// scriptedBackend returns canned replies in order and records every
// conversation it was sent.
type scriptedBackend struct {
	replies []Message
	err     error
	calls   [][]Message
}

func (b *scriptedBackend) Chat(_ context.Context, messages []Message, _ []ToolSpec) (Message, error) {
	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	b.calls = append(b.calls, snapshot)
	if b.err != nil {
		return Message{}, b.err
	}
	if len(b.replies) == 0 {
		return Message{Role: RoleAssistant}, nil
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r, nil
}

// delayTool returns its payload after an optional delay, for ordering tests.
type delayTool struct {
	name    string
	payload string
	delay   time.Duration
}

func (t *delayTool) Name() string        { return t.name }
func (t *delayTool) Description() string { return "test tool" }
func (t *delayTool) Parameters() tools.Schema {
	return tools.Schema{Type: "object"}
}
func (t *delayTool) Call(context.Context, map[string]any) string {
	time.Sleep(t.delay)
	return t.payload
}

func toolCall(name string, args map[string]any) ToolCall {
	return ToolCall{Function: FunctionCall{Name: name, Arguments: args}}
}

func testRegistry(t *testing.T, ts ...tools.Tool) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	for _, tool := range ts {
		require.NoError(t, r.Register(tool))
	}
	return r
}

func TestResearchToolLoop(t *testing.T) {
	backend := &scriptedBackend{
		replies: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{toolCall("search_web", map[string]any{"query": "capital of France"})}},
			{Role: RoleAssistant, Content: "Paris is the capital of France. [1](https://example.com/paris)"},
		},
	}
	registry := testRegistry(t, &delayTool{name: "search_web", payload: "[1] Paris"})
	a := New(backend, registry, types.ModelConfig{})

	draft, used, err := a.Research(context.Background(), "capital of France")
	require.NoError(t, err)
	assert.Contains(t, draft, "Paris is the capital of France")
	assert.Equal(t, []string{"search_web"}, used)

	// The second model call must have seen the tool result.
	require.Len(t, backend.calls, 2)
	last := backend.calls[1][len(backend.calls[1])-1]
	assert.Equal(t, RoleTool, last.Role)
	assert.Equal(t, "search_web", last.ToolName)
	assert.Equal(t, "[1] Paris", last.Content)
}

func TestResearchRecordsDuplicateToolCalls(t *testing.T) {
	backend := &scriptedBackend{
		replies: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{
				toolCall("search_web", map[string]any{"query": "a"}),
				toolCall("search_news", map[string]any{"query": "a"}),
			}},
			{Role: RoleAssistant, ToolCalls: []ToolCall{
				toolCall("search_web", map[string]any{"query": "b"}),
			}},
			{Role: RoleAssistant, Content: "done"},
		},
	}
	registry := testRegistry(t,
		&delayTool{name: "search_web", payload: "web"},
		&delayTool{name: "search_news", payload: "news"},
	)
	a := New(backend, registry, types.ModelConfig{})

	_, used, err := a.Research(context.Background(), "q")
	require.NoError(t, err)
	// Call order preserved, duplicates included.
	assert.Equal(t, []string{"search_web", "search_news", "search_web"}, used)
}

func TestResearchResultsMatchRequestOrder(t *testing.T) {
	// The slow tool is requested first; its result must still come first.
	backend := &scriptedBackend{
		replies: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{
				toolCall("slow", nil),
				toolCall("fast", nil),
			}},
			{Role: RoleAssistant, Content: "done"},
		},
	}
	registry := testRegistry(t,
		&delayTool{name: "slow", payload: "slow result", delay: 30 * time.Millisecond},
		&delayTool{name: "fast", payload: "fast result"},
	)
	a := New(backend, registry, types.ModelConfig{})

	_, _, err := a.Research(context.Background(), "q")
	require.NoError(t, err)

	msgs := backend.calls[1]
	var toolMsgs []Message
	for _, m := range msgs {
		if m.Role == RoleTool {
			toolMsgs = append(toolMsgs, m)
		}
	}
	require.Len(t, toolMsgs, 2)
	assert.Equal(t, "slow result", toolMsgs[0].Content)
	assert.Equal(t, "fast result", toolMsgs[1].Content)
}

func TestResearchFallbackOnNoContent(t *testing.T) {
	backend := &scriptedBackend{
		replies: []Message{{Role: RoleAssistant, Content: "   "}},
	}
	a := New(backend, testRegistry(t), types.ModelConfig{})

	draft, used, err := a.Research(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, draft)
	assert.Empty(t, used)
}

func TestResearchBackendErrorPropagates(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("connection refused")}
	a := New(backend, testRegistry(t), types.ModelConfig{})

	_, _, err := a.Research(context.Background(), "q")
	assert.ErrorContains(t, err, "connection refused")
}

func TestResearchBoundedTurns(t *testing.T) {
	// A model that never stops calling tools runs out of turns and falls
	// back instead of looping forever.
	looping := Message{Role: RoleAssistant, ToolCalls: []ToolCall{toolCall("echo", nil)}}
	backend := &scriptedBackend{
		replies: []Message{looping, looping, looping, looping, looping},
	}
	registry := testRegistry(t, &delayTool{name: "echo", payload: "x"})
	a := New(backend, registry, types.ModelConfig{MaxTurns: 3})

	draft, used, err := a.Research(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, draft)
	assert.Len(t, used, 3)
	assert.Len(t, backend.calls, 3)
}

func TestResearchContainsFailingTool(t *testing.T) {
	// A tool that panics internally still yields a string result and the
	// run completes.
	backend := &scriptedBackend{
		replies: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{toolCall("broken", nil)}},
			{Role: RoleAssistant, Content: "answered despite the failure"},
		},
	}
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(panickyTool{}))
	a := New(backend, registry, types.ModelConfig{})

	draft, used, err := a.Research(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answered despite the failure", draft)
	assert.Equal(t, []string{"broken"}, used)

	last := backend.calls[1][len(backend.calls[1])-1]
	assert.Contains(t, last.Content, "tool broken failed")
}

type panickyTool struct{}

func (panickyTool) Name() string        { return "broken" }
func (panickyTool) Description() string { return "always panics" }
func (panickyTool) Parameters() tools.Schema {
	return tools.Schema{Type: "object"}
}
func (panickyTool) Call(context.Context, map[string]any) string {
	panic("internal adapter error")
}

func TestFinalAnswer(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{
			name: "last assistant content wins",
			messages: []Message{
				{Role: RoleAssistant, Content: "first"},
				{Role: RoleTool, Content: "tool output"},
				{Role: RoleAssistant, Content: "second"},
			},
			want: "second",
		},
		{
			name:     "no content falls back",
			messages: []Message{{Role: RoleUser, Content: "q"}},
			want:     FallbackAnswer,
		},
		{
			name: "tool-calling message content used as last resort",
			messages: []Message{
				{Role: RoleAssistant, Content: "partial thoughts", ToolCalls: []ToolCall{toolCall("x", nil)}},
			},
			want: "partial thoughts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalAnswer(tt.messages))
		})
	}
}
