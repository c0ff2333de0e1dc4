// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researcherbot/research-bot/internal/researchlog"
	"github.com/researcherbot/research-bot/pkg/types"
)

func testLogTool(t *testing.T) (*LogTool, *researchlog.Store) {
	t.Helper()
	store := researchlog.NewStore(types.LogConfig{
		Path: filepath.Join(t.TempDir(), "research_log.json"),
	})
	return NewLogTool(store), store
}

func TestLogToolNoRelevantEntries(t *testing.T) {
	tool, _ := testLogTool(t)
	got := tool.Call(context.Background(), map[string]any{"query": "capital of France"})
	assert.Equal(t, "No relevant prior research found for: capital of France", got)
}

func TestLogToolFormatsRelevantEntries(t *testing.T) {
	tool, store := testLogTool(t)
	require.NoError(t, store.AppendAt("capital of France", "Paris is the capital of France.", 1.2, "2024-01-01T00:00:00.000000+00:00"))
	require.NoError(t, store.Append("go concurrency patterns", "Use channels.", 2))

	got := tool.Call(context.Background(), map[string]any{"query": "capital of France"})
	assert.Contains(t, got, "Found 1 relevant prior research entry")
	assert.Contains(t, got, "Q: capital of France")
	assert.Contains(t, got, "A: Paris is the capital of France.")
	assert.Contains(t, got, "relevance 1.00")
	assert.NotContains(t, got, "channels")
}

func TestLogToolMissingQuery(t *testing.T) {
	tool, _ := testLogTool(t)
	got := tool.Call(context.Background(), map[string]any{})
	assert.Contains(t, got, "no query provided")
}
