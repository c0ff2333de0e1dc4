// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package researchlog persists a JSON log of questions, responses,
// timestamps, and response times, and scores past queries for relevance to
// new ones.
package researchlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/researcherbot/research-bot/pkg/types"
)

// DefaultPath is the log file location when none is configured.
const DefaultPath = "research_log.json"

const (
	defaultMinScore   = 0.4
	defaultMaxEntries = 5
)

// timestampFormat matches ISO-8601 with a numeric UTC offset
// (e.g. "2024-01-01T00:00:00.000000+00:00").
const timestampFormat = "2006-01-02T15:04:05.000000-07:00"

// Store is a file-backed research log. The file holds a single JSON array;
// every append re-reads the array, appends one entry, and rewrites the file
// through a temp-file rename so a partial write never corrupts it.
//
// The store is read-all/write-all: overlapping appends from concurrent runs
// can lose an entry to a read-then-write race. This is accepted for a
// single-user tool; callers needing multi-user safety must add a file lock
// or a single-writer queue in front of the store.
type Store struct {
	path       string
	minScore   float64
	maxEntries int
	now        func() time.Time
}

// NewStore builds a Store from the log configuration, applying defaults for
// unset fields.
func NewStore(cfg types.LogConfig) *Store {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Store{
		path:       path,
		minScore:   minScore,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns all log entries in append order. It fails soft: a missing
// file, an unreadable file, or malformed JSON all yield an empty slice,
// never an error.
func (s *Store) Load() []types.LogEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []types.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// Append persists one new entry stamped with the current UTC time. The
// response time is rounded to two decimals. Callers treat a returned error
// as non-fatal: logging is best-effort and must never fail a research run.
func (s *Store) Append(query, response string, responseTimeSeconds float64) error {
	return s.AppendAt(query, response, responseTimeSeconds, s.now().UTC().Format(timestampFormat))
}

// AppendAt is Append with an explicit ISO-8601 timestamp.
func (s *Store) AppendAt(query, response string, responseTimeSeconds float64, timestamp string) error {
	entries := s.Load()
	entries = append(entries, types.LogEntry{
		Query:               query,
		Response:            response,
		Timestamp:           timestamp,
		ResponseTimeSeconds: round2(responseTimeSeconds),
	})

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}

	data, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encoding log entries: %w", err)
	}

	// Write-then-rename so a crash mid-write leaves the old file intact.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp log file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing log entries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp log file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing log file: %w", err)
	}
	return nil
}

// Relevant returns stored entries whose queries score at or above the
// configured minimum against query, each annotated with its score, sorted
// by descending score then ascending timestamp, truncated to the configured
// maximum.
func (s *Store) Relevant(query string) []types.ScoredEntry {
	entries := s.Load()
	if query == "" || len(entries) == 0 {
		return nil
	}

	var scored []types.ScoredEntry
	for _, e := range entries {
		score := Score(query, e.Query)
		if score >= s.minScore {
			scored = append(scored, types.ScoredEntry{
				LogEntry:       e,
				RelevanceScore: round2(score),
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].Timestamp < scored[j].Timestamp
	})

	if len(scored) > s.maxEntries {
		scored = scored[:s.maxEntries]
	}
	return scored
}

// encodeEntries serializes entries as a two-space-indented JSON array with
// non-ASCII characters preserved.
func encodeEntries(entries []types.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
