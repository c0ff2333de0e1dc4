// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package researchlog

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/researcherbot/research-bot/pkg/types"
)

// ExportYAML writes all log entries to w as YAML.
func (s *Store) ExportYAML(w io.Writer) error {
	entries := s.Load()
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes all log entries to w as indented JSON. An empty log
// exports as an empty array, not null.
func (s *Store) ExportJSON(w io.Writer) error {
	entries := s.Load()
	if entries == nil {
		entries = []types.LogEntry{}
	}
	data, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}
