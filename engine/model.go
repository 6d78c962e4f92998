package engine

import (
	"context"

	"github.com/waqaskhan137/fintips/core"
)

// Model is a text-generation backend that supports tool calling.
type Model interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ToolChoice controls whether the model must call a tool.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceAny requires the model to call some tool.
	ToolChoiceAny ToolChoice = "any"
)

// StopReason is why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
	StopOther     StopReason = "other"
)

// Request is one generation call.
type Request struct {
	Model      string
	System     string
	Messages   []core.Message
	Tools      []core.ToolDefinition
	ToolChoice ToolChoice
	MaxTokens  int64
}

// Response is the assistant turn produced by a generation call.
type Response struct {
	Blocks     []core.ContentBlock
	StopReason StopReason
	Usage      core.TokenUsage
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req *Request) (*Response, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
