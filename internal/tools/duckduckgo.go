// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/researcherbot/research-bot/pkg/types"
)

// duckduckgoAPIBase is the DuckDuckGo Lite endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckduckgoAPIBase = "https://lite.duckduckgo.com/lite/"

const (
	defaultSearchResults = 8
	maxSearchResults     = 20
)

// ddgResult is one parsed DuckDuckGo result.
type ddgResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearchTool searches the web through DuckDuckGo Lite.
type WebSearchTool struct {
	client *http.Client
	cfg    types.ToolsConfig
}

// NewWebSearchTool builds the web search tool.
func NewWebSearchTool(cfg types.ToolsConfig, client *http.Client) *WebSearchTool {
	return &WebSearchTool{client: client, cfg: cfg}
}

// Name returns the tool identifier.
func (t *WebSearchTool) Name() string { return "search_web" }

// Description returns the model-facing tool description.
func (t *WebSearchTool) Description() string {
	return "Search the internet using DuckDuckGo. Use this to find current information, " +
		"news, facts, or research on any topic. Returns numbered results with titles, " +
		"URLs, and snippets; cite results as [n](url)."
}

// Parameters declares the tool's argument schema.
func (t *WebSearchTool) Parameters() Schema {
	return searchSchema("The search query - be specific and descriptive for better results")
}

// Call runs the search and formats results, converting any failure into an
// explanatory string.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) string {
	return duckduckgoSearch(ctx, t.client, t.cfg, args, "", "Web")
}

// NewsSearchTool searches recent coverage through DuckDuckGo Lite with a
// past-week freshness filter. Use for weather, prices, and current events.
type NewsSearchTool struct {
	client *http.Client
	cfg    types.ToolsConfig
}

// NewNewsSearchTool builds the news search tool.
func NewNewsSearchTool(cfg types.ToolsConfig, client *http.Client) *NewsSearchTool {
	return &NewsSearchTool{client: client, cfg: cfg}
}

// Name returns the tool identifier.
func (t *NewsSearchTool) Name() string { return "search_news" }

// Description returns the model-facing tool description.
func (t *NewsSearchTool) Description() string {
	return "Search for recent news and time-sensitive information using DuckDuckGo with a " +
		"freshness filter (past week). Use for current events, weather, and prices. " +
		"Returns numbered results with titles, URLs, and snippets; cite results as [n](url)."
}

// Parameters declares the tool's argument schema.
func (t *NewsSearchTool) Parameters() Schema {
	return searchSchema("The news search query - include place names and dates where relevant")
}

// Call runs the freshness-filtered search.
func (t *NewsSearchTool) Call(ctx context.Context, args map[string]any) string {
	return duckduckgoSearch(ctx, t.client, t.cfg, args, "w", "News")
}

// searchSchema is the shared argument schema for the search tools.
func searchSchema(queryDesc string) Schema {
	return Schema{
		Type: "object",
		Properties: map[string]Property{
			"query": {
				Type:        "string",
				Description: queryDesc,
			},
			"max_results": {
				Type:        "integer",
				Description: fmt.Sprintf("Maximum number of results to return (default %d, max %d)", defaultSearchResults, maxSearchResults),
			},
		},
		Required: []string{"query"},
	}
}

// duckduckgoSearch queries the Lite endpoint and formats results. freshness
// is the DuckDuckGo df parameter ("d", "w", "m") or empty for no filter.
func duckduckgoSearch(ctx context.Context, client *http.Client, cfg types.ToolsConfig, args map[string]any, freshness, label string) string {
	query := stringArg(args, "query", "")
	if strings.TrimSpace(query) == "" {
		return fmt.Sprintf("%s search failed: no query provided.", label)
	}

	maxAllowed := cfg.MaxResults
	if maxAllowed <= 0 || maxAllowed > maxSearchResults {
		maxAllowed = maxSearchResults
	}
	maxResults := clamp(intArg(args, "max_results", defaultSearchResults), 1, maxAllowed)

	params := url.Values{"q": {query}}
	if freshness != "" {
		params.Set("df", freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, duckduckgoAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Sprintf("%s search failed: %v", label, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("%s search failed: %v", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("%s search failed: DuckDuckGo returned HTTP %d", label, resp.StatusCode)
	}

	results, err := parseDDGLite(resp.Body)
	if err != nil {
		return fmt.Sprintf("%s search failed: %v", label, err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results found for: %s", query)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return formatResults(results)
}

// formatResults renders results as numbered blocks the model can cite.
func formatResults(results []ddgResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		parts = append(parts, fmt.Sprintf("[%d] %s\n    URL: %s\n    %s", i+1, title, r.URL, r.Snippet))
	}
	return strings.Join(parts, "\n\n")
}

// parseDDGLite extracts results from the DuckDuckGo Lite HTML page. Result
// links carry class "result-link"; the following "result-snippet" cell
// holds the summary text.
func parseDDGLite(r io.Reader) ([]ddgResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	var results []ddgResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				results = append(results, ddgResult{
					Title: strings.TrimSpace(textContent(n)),
					URL:   attr(n, "href"),
				})
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if len(results) > 0 {
					results[len(results)-1].Snippet = strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if cls == name {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
