// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration structs and data transfer types shared
// across the research-bot stages.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the per-call HTTP request timeout (default 12s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-bot/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ModelConfig holds settings for the chat model backend.
type ModelConfig struct {
	// Model is the Ollama model identifier (e.g. "llama3.2"). The model
	// must support tool calling.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the Ollama API base URL (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Temperature is the sampling temperature, 0-1 (default 0.2).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTurns bounds the number of model turns in one research run
	// (default 10). Each tool-dispatch round consumes one turn.
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// Timeout bounds each model call (default 120s). It is deliberately
	// longer than the tool timeout: one completion can take minutes on
	// local hardware.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// LogConfig holds settings for the research log store.
type LogConfig struct {
	// Path is the log file location (default "research_log.json" in the
	// working directory).
	Path string `json:"path" yaml:"path"`

	// MinScore is the minimum relevance score for log lookups (default 0.4).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MaxEntries is the maximum number of relevant entries returned from a
	// log lookup (default 5).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`
}

// ToolsConfig holds settings for the search tool adapters.
type ToolsConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the upper bound on results any search tool returns
	// (default 20). Individual calls may ask for fewer.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableWebSearch controls whether the DuckDuckGo web search tool is
	// registered.
	EnableWebSearch bool `json:"enable_web_search" yaml:"enable_web_search"`

	// EnableNewsSearch controls whether the DuckDuckGo news search tool is
	// registered.
	EnableNewsSearch bool `json:"enable_news_search" yaml:"enable_news_search"`

	// EnableArxiv controls whether the arXiv search tool is registered.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar search
	// tool is registered.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey authenticates Semantic Scholar requests. When
	// empty the tool reports the missing credential instead of searching.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// PipelineConfig groups all component configurations for one bot instance.
type PipelineConfig struct {
	Model ModelConfig `json:"model" yaml:"model"`
	Log   LogConfig   `json:"log" yaml:"log"`
	Tools ToolsConfig `json:"tools" yaml:"tools"`
}
