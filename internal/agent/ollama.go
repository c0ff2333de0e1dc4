// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/researcherbot/research-bot/internal/tools"
	"github.com/researcherbot/research-bot/pkg/types"
)

// Message roles in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn in a conversation with the model.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolName identifies which tool produced a RoleTool message.
	ToolName string `json:"tool_name,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries the model-supplied arguments.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSpec is one catalog entry presented to the model.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable tool to the model.
type ToolFunction struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Parameters  tools.Schema `json:"parameters"`
}

// Specs converts a tool catalog into the wire form the model consumes.
func Specs(catalog []tools.Tool) []ToolSpec {
	specs := make([]ToolSpec, 0, len(catalog))
	for _, t := range catalog {
		specs = append(specs, ToolSpec{
			Type: "function",
			Function: ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return specs
}

// ChatBackend abstracts the chat model API so tests can supply a mock.
// Chat sends the conversation and tool catalog and returns the model's
// next message: either final content or one or more tool calls.
type ChatBackend interface {
	Chat(ctx context.Context, messages []Message, toolSpecs []ToolSpec) (Message, error)
}

// ollamaChatPath is the chat endpoint path under the configured base URL.
const ollamaChatPath = "/api/chat"

// defaultModelTimeout bounds a model call when no timeout is configured.
// Completions are slow on local hardware, so this is far looser than the
// tool timeout, but a hung endpoint still cannot stall a run forever.
const defaultModelTimeout = 120 * time.Second

// OllamaBackend calls the Ollama chat API. A nil Client is replaced per
// call with one bounded by the configured model timeout.
type OllamaBackend struct {
	Config types.ModelConfig
	Client *http.Client
}

// ollamaChatRequest is the request body for the Ollama chat API.
type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Tools    []ToolSpec     `json:"tools,omitempty"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ollamaChatResponse is the response body from the Ollama chat API.
type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Chat sends one completion request and returns the model's reply message.
func (b *OllamaBackend) Chat(ctx context.Context, messages []Message, toolSpecs []ToolSpec) (Message, error) {
	baseURL := b.Config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	reqBody := ollamaChatRequest{
		Model:    b.Config.Model,
		Messages: messages,
		Tools:    toolSpecs,
		Stream:   false,
		Options:  map[string]any{"temperature": b.Config.Temperature},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Message{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+ollamaChatPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return Message{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := b.Client
	if client == nil {
		timeout := b.Config.Timeout
		if timeout <= 0 {
			timeout = defaultModelTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("calling Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Message{}, fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return Message{}, fmt.Errorf("decoding Ollama response: %w", err)
	}

	if oResp.Message.Role == "" {
		oResp.Message.Role = RoleAssistant
	}
	return oResp.Message, nil
}
