// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LogEntry is one question/answer record in the research log. Entries are
// append-only: identity is positional within the log file and no entry is
// ever mutated or deleted.
type LogEntry struct {
	// Query is the user question exactly as asked.
	Query string `json:"query" yaml:"query"`

	// Response is the final answer that was returned to the user.
	Response string `json:"response" yaml:"response"`

	// Timestamp is the ISO-8601 time the entry was written.
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	// ResponseTimeSeconds is the wall time taken to produce the response,
	// rounded to two decimals.
	ResponseTimeSeconds float64 `json:"response_time_seconds" yaml:"response_time_seconds"`
}

// ScoredEntry is a LogEntry annotated with its relevance to a probe query.
// The score exists only on read; it is never persisted.
type ScoredEntry struct {
	LogEntry `yaml:",inline"`

	// RelevanceScore is the 0-1 match between the probe query and this
	// entry's query, rounded to two decimals.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// PipelineResult holds the intermediate and final outputs of one full
// pipeline run. It is transient: the orchestrator builds it across stages
// and discards it once the report is logged.
type PipelineResult struct {
	// Clarification is the restated scope and research plan.
	Clarification string

	// Draft is the research stage's cited but unreviewed answer.
	Draft string

	// Feedback is the fact-check stage's critique of the draft.
	Feedback string

	// Report is the final, critique-reconciled answer.
	Report string

	// ToolsUsed lists tool names in first-use order, duplicates removed.
	ToolsUsed []string

	// ElapsedSeconds is the total wall time across all stages.
	ElapsedSeconds float64
}
