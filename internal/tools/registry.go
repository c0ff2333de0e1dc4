// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"net/http"
	"time"

	"github.com/researcherbot/research-bot/internal/researchlog"
	"github.com/researcherbot/research-bot/pkg/types"
)

// defaultTimeout bounds each tool's HTTP call so one flaky source never
// stalls a research run.
const defaultTimeout = 12 * time.Second

// NewDefaultRegistry builds the standard tool set: the research log lookup
// plus every search adapter enabled in the configuration. The log tool is
// registered first so it heads the catalog the model sees.
func NewDefaultRegistry(cfg types.ToolsConfig, store *researchlog.Store) (*Registry, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	r := NewRegistry()
	if err := r.Register(NewLogTool(store)); err != nil {
		return nil, err
	}
	if cfg.EnableWebSearch {
		if err := r.Register(NewWebSearchTool(cfg, client)); err != nil {
			return nil, err
		}
	}
	if cfg.EnableNewsSearch {
		if err := r.Register(NewNewsSearchTool(cfg, client)); err != nil {
			return nil, err
		}
	}
	if cfg.EnableArxiv {
		if err := r.Register(NewArxivTool(cfg, client)); err != nil {
			return nil, err
		}
	}
	if cfg.EnableSemanticScholar {
		if err := r.Register(NewSemanticScholarTool(cfg, client)); err != nil {
			return nil, err
		}
	}
	return r, nil
}
