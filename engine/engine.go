package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/waqaskhan137/fintips/core"
)

// DefaultMaxTurns bounds a run when Input.MaxTurns is not set.
const DefaultMaxTurns = 5

var (
	// ErrMaxTurns is returned when the model keeps calling tools past the turn limit.
	ErrMaxTurns = errors.New("engine: max turns exceeded")
	// ErrNoModel is returned when the engine has no model configured.
	ErrNoModel = errors.New("engine: no model configured")
)

// Input configures a run.
type Input struct {
	UserMessage  string
	History      []core.Message
	SystemPrompt string
	Model        string
	MaxTokens    int64
	MaxTurns     int

	// AllowedTools limits the registry tools offered to the model. Empty means all.
	AllowedTools []string

	// OutputTool, when set, names the tool whose input is the run result.
	// The model is then required to call a tool on every turn.
	OutputTool string

	UserID    string
	RequestID string
}

// ToolCall records one tool invocation made during a run.
type ToolCall struct {
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	IsError bool            `json:"is_error"`
}

// Output is the result of a completed run.
type Output struct {
	// Text is the concatenated text of the final assistant turn.
	Text string
	// Result is the input of the OutputTool call, if the model made one.
	Result     json.RawMessage
	ToolCalls  []ToolCall
	TokensUsed core.TokenUsage
	Turns      int
}

// Engine runs the model/tool loop.
type Engine struct {
	model    Model
	registry *ToolRegistry
	logger   *slog.Logger
}

// NewEngine creates an engine over a model and a tool registry.
func NewEngine(model Model, registry *ToolRegistry) *Engine {
	if registry == nil {
		registry = NewToolRegistry()
	}
	return &Engine{
		model:    model,
		registry: registry,
		logger:   slog.Default().With("component", "engine"),
	}
}

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *ToolRegistry {
	return e.registry
}

// Run drives the model until it answers, calls the output tool, or runs out of turns.
// Errors from the model are returned as is; tool failures are reported to the model.
func (e *Engine) Run(ctx context.Context, input *Input) (*Output, error) {
	if e.model == nil {
		return nil, ErrNoModel
	}

	maxTurns := input.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	defs := e.registry.Definitions()
	if len(input.AllowedTools) > 0 {
		names := make([]string, 0, len(input.AllowedTools)+1)
		names = append(names, input.AllowedTools...)
		names = append(names, input.OutputTool)
		defs = e.registry.DefinitionsFiltered(FilterByNames(names...))
	}

	choice := ToolChoiceAuto
	if input.OutputTool != "" {
		choice = ToolChoiceAny
	}

	messages := make([]core.Message, 0, len(input.History)+1)
	messages = append(messages, input.History...)
	messages = append(messages, core.NewUserMessage(input.UserMessage))

	out := &Output{}
	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := e.model.Generate(ctx, &Request{
			Model:      input.Model,
			System:     input.SystemPrompt,
			Messages:   messages,
			Tools:      defs,
			ToolChoice: choice,
			MaxTokens:  input.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("engine: generate (turn %d): %w", turn, err)
		}

		out.Turns = turn
		out.TokensUsed.Add(resp.Usage)

		assistant := core.NewAssistantMessageWithBlocks(resp.Blocks)
		messages = append(messages, assistant)
		out.Text = assistant.Text()

		uses := assistant.ToolUses()
		e.logger.Debug("model turn",
			"request_id", input.RequestID,
			"turn", turn,
			"stop_reason", resp.StopReason,
			"tool_calls", len(uses))

		if input.OutputTool != "" {
			for _, use := range uses {
				if use.Name == input.OutputTool {
					out.Result = use.Input
					out.ToolCalls = append(out.ToolCalls, ToolCall{Name: use.Name, Input: use.Input})
					return out, nil
				}
			}
		}

		if len(uses) == 0 {
			return out, nil
		}

		results := make([]core.ToolResultContent, 0, len(uses))
		for _, use := range uses {
			content, isErr := e.callTool(ctx, input, use)
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: use.Name, Input: use.Input, IsError: isErr})
			results = append(results, core.ToolResultContent{
				ToolUseID: use.ID,
				Content:   content,
				IsError:   isErr,
			})
		}
		messages = append(messages, core.NewToolResultMessage(results))
	}

	return nil, ErrMaxTurns
}

// callTool executes one tool call and renders the content returned to the model.
func (e *Engine) callTool(ctx context.Context, input *Input, use core.ContentBlock) (string, bool) {
	result, err := e.ExecuteTool(ctx, input.UserID, input.RequestID, use.Name, use.Input)
	if err != nil {
		e.logger.Warn("tool call failed",
			"request_id", input.RequestID,
			"tool", use.Name,
			"error", err)
		return fmt.Sprintf("Error: %v", err), true
	}
	return result.Content()
}

// ExecuteTool runs a registered tool directly.
func (e *Engine) ExecuteTool(ctx context.Context, userID, requestID, name string, input json.RawMessage) (*core.ToolResult, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return tool.Execute(ctx, &core.ToolParams{
		UserID:    userID,
		RequestID: requestID,
		Input:     input,
	})
}
