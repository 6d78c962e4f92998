// Package core defines the types shared by the engine, tools and executors.
package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a function the model may call during a run.
type Tool interface {
	// Name is the identifier the model uses to call the tool.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Schema is the JSON schema of the tool input.
	Schema() map[string]interface{}

	// Execute runs the tool with the raw JSON input supplied by the model.
	Execute(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// ToolParams is passed to a tool handler.
type ToolParams struct {
	UserID    string
	RequestID string
	Input     json.RawMessage
}

// ToolResult is the outcome of a tool execution.
// A failed result is reported back to the model, not to the caller.
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Content renders the result as the string sent back to the model.
func (r *ToolResult) Content() (string, bool) {
	if r == nil {
		return "tool returned no result", true
	}
	if !r.Success {
		return r.Error, true
	}
	data, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Sprintf("failed to encode tool result: %v", err), true
	}
	return string(data), false
}

// ToolDefinition describes a tool without binding it to a handler.
type ToolDefinition struct {
	ToolName        string
	ToolDescription string
	InputSchema     map[string]interface{}
}

// Definition returns the definition of a tool.
func Definition(t Tool) ToolDefinition {
	return ToolDefinition{
		ToolName:        t.Name(),
		ToolDescription: t.Description(),
		InputSchema:     t.Schema(),
	}
}

// Capabilities describes how an agent is allowed to run.
type Capabilities struct {
	AvailableTools []string
	Model          string
	MaxTokens      int64
	MaxTurns       int
	SystemPrompt   string
}
