// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/researcherbot/research-bot/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivTool searches arXiv for academic papers.
type ArxivTool struct {
	client *http.Client
	cfg    types.ToolsConfig
}

// NewArxivTool builds the arXiv search tool.
func NewArxivTool(cfg types.ToolsConfig, client *http.Client) *ArxivTool {
	return &ArxivTool{client: client, cfg: cfg}
}

// Name returns the tool identifier.
func (t *ArxivTool) Name() string { return "arxiv_search" }

// Description returns the model-facing tool description.
func (t *ArxivTool) Description() string {
	return "Search arXiv for academic papers and preprints. Use for scientific or " +
		"technical questions that benefit from primary research sources. Returns " +
		"numbered results with titles, arXiv URLs, authors, and abstracts; cite " +
		"results as [n](url)."
}

// Parameters declares the tool's argument schema.
func (t *ArxivTool) Parameters() Schema {
	return searchSchema("Search terms describing the research topic")
}

// Call queries the arXiv Atom API and formats results, converting any
// failure into an explanatory string.
func (t *ArxivTool) Call(ctx context.Context, args map[string]any) string {
	query := stringArg(args, "query", "")
	if strings.TrimSpace(query) == "" {
		return "arXiv search failed: no query provided."
	}

	maxAllowed := t.cfg.MaxResults
	if maxAllowed <= 0 || maxAllowed > maxSearchResults {
		maxAllowed = maxSearchResults
	}
	maxResults := clamp(intArg(args, "max_results", defaultSearchResults), 1, maxAllowed)

	terms := strings.Fields(query)
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, "all:"+url.QueryEscape(strings.Join(terms, "+")), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Sprintf("arXiv search failed: %v", err)
	}
	req.Header.Set("User-Agent", t.cfg.UserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("arXiv search failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("arXiv search failed: arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Sprintf("arXiv search failed: parsing response: %v", err)
	}

	if len(feed.Entries) == 0 {
		return fmt.Sprintf("No results found for: %s", query)
	}

	var parts []string
	for i, entry := range feed.Entries {
		if i >= maxResults {
			break
		}
		id := extractArxivID(entry.ID)
		var authors []string
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		parts = append(parts, fmt.Sprintf("[%d] %s\n    URL: https://arxiv.org/abs/%s\n    Authors: %s\n    %s",
			i+1,
			strings.TrimSpace(entry.Title),
			id,
			strings.Join(authors, ", "),
			truncate(strings.TrimSpace(entry.Summary), 400)))
	}
	return strings.Join(parts, "\n\n")
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func extractArxivID(idURL string) string {
	if i := strings.LastIndex(idURL, "/abs/"); i >= 0 {
		return idURL[i+len("/abs/"):]
	}
	return idURL
}
