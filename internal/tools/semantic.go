// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/researcherbot/research-bot/internal/httputil"
	"github.com/researcherbot/research-bot/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,url"

// SemanticScholarTool searches Semantic Scholar for academic papers. It
// requires an API key; without one it reports where to configure the
// credential instead of failing.
type SemanticScholarTool struct {
	client *http.Client
	cfg    types.ToolsConfig
}

// NewSemanticScholarTool builds the Semantic Scholar search tool.
func NewSemanticScholarTool(cfg types.ToolsConfig, client *http.Client) *SemanticScholarTool {
	return &SemanticScholarTool{client: client, cfg: cfg}
}

// Name returns the tool identifier.
func (t *SemanticScholarTool) Name() string { return "semantic_scholar_search" }

// Description returns the model-facing tool description.
func (t *SemanticScholarTool) Description() string {
	return "Search Semantic Scholar for peer-reviewed papers across all fields. Use for " +
		"scientific questions needing citation-quality sources. Requires an API key. " +
		"Returns numbered results with titles, URLs, authors, and abstracts; cite " +
		"results as [n](url)."
}

// Parameters declares the tool's argument schema.
func (t *SemanticScholarTool) Parameters() Schema {
	return searchSchema("Search terms describing the research topic")
}

// Call queries the Semantic Scholar API. A missing API key is reported as
// configuration guidance, not an error, so the model can pick another tool.
func (t *SemanticScholarTool) Call(ctx context.Context, args map[string]any) string {
	if t.cfg.SemanticScholarAPIKey == "" {
		return "Semantic Scholar search is not configured: no API key found. " +
			"Set the RESEARCH_BOT_TOOLS_SEMANTIC_SCHOLAR_API_KEY environment variable " +
			"or place the key in .secrets/semantic-scholar-api-key. " +
			"Use search_web or arxiv_search instead."
	}

	query := stringArg(args, "query", "")
	if strings.TrimSpace(query) == "" {
		return "Semantic Scholar search failed: no query provided."
	}

	maxAllowed := t.cfg.MaxResults
	if maxAllowed <= 0 || maxAllowed > maxSearchResults {
		maxAllowed = maxSearchResults
	}
	maxResults := clamp(intArg(args, "max_results", defaultSearchResults), 1, maxAllowed)

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Sprintf("Semantic Scholar search failed: %v", err)
	}
	req.Header.Set("User-Agent", t.cfg.UserAgent)
	req.Header.Set("x-api-key", t.cfg.SemanticScholarAPIKey)

	resp, err := httputil.DoWithRetry(ctx, t.client, req, 2)
	if err != nil {
		return fmt.Sprintf("Semantic Scholar search failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Semantic Scholar search failed: API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Sprintf("Semantic Scholar search failed: parsing response: %v", err)
	}

	if len(sr.Data) == 0 {
		return fmt.Sprintf("No results found for: %s", query)
	}

	var parts []string
	for i, paper := range sr.Data {
		if i >= maxResults {
			break
		}
		var authors []string
		for _, a := range paper.Authors {
			authors = append(authors, a.Name)
		}
		link := paper.URL
		if link == "" && paper.ExternalIDs.DOI != "" {
			link = "https://doi.org/" + paper.ExternalIDs.DOI
		}
		header := paper.Title
		if paper.Year > 0 {
			header = fmt.Sprintf("%s (%d)", paper.Title, paper.Year)
		}
		parts = append(parts, fmt.Sprintf("[%d] %s\n    URL: %s\n    Authors: %s\n    %s",
			i+1, header, link, strings.Join(authors, ", "), truncate(paper.Abstract, 400)))
	}
	return strings.Join(parts, "\n\n")
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        int                 `json:"year"`
	URL         string              `json:"url"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
