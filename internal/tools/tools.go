// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools defines the contract external data sources satisfy and the
// registry the research agent dispatches through. A tool never lets a
// failure escape its boundary: network errors, parse errors, and missing
// credentials all come back as descriptive strings the model can reason
// over.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Schema describes a tool's arguments in JSON-schema form, as presented to
// the model in the tool catalog.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one tool argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Tool is a named, described, boundary-safe data lookup invocable by the
// model. Call must never return an error or panic past its boundary; it
// converts its own failures into explanatory strings.
type Tool interface {
	Name() string
	Description() string
	Parameters() Schema
	Call(ctx context.Context, args map[string]any) string
}

// Registry is a static name-to-tool map built at startup. The catalog
// preserves registration order so the model always sees tools in a stable
// sequence.
type Registry struct {
	names []string
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering two tools under the same name is a
// startup configuration error.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.names = append(r.names, name)
	r.tools[name] = t
	return nil
}

// Tools returns the catalog in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.names)
}

// Dispatch invokes the named tool with model-supplied arguments and always
// returns a string: an unknown name yields an in-band error message listing
// the available tools, and a tool that panics is contained here rather than
// aborting the run.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result string) {
	tool, ok := r.tools[name]
	if !ok {
		available := make([]string, len(r.names))
		copy(available, r.names)
		sort.Strings(available)
		return fmt.Sprintf("unknown tool %q: available tools are %s", name, strings.Join(available, ", "))
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = fmt.Sprintf("tool %s failed: %v", name, rec)
		}
	}()
	return tool.Call(ctx, args)
}

// stringArg extracts a string argument, or fallback when absent or not a
// string.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

// intArg extracts an integer argument. JSON numbers arrive as float64;
// model backends occasionally send strings or proper ints, so all three are
// accepted.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

// clamp bounds n to [lo, hi].
func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
