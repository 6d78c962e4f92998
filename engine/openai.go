package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/waqaskhan137/fintips/core"
)

// DefaultOpenAIModel is used when a request names no model.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIModel generates with any OpenAI-compatible chat completions API.
type OpenAIModel struct {
	client *openai.Client
}

// NewOpenAIModel creates a chat-completions model. An empty baseURL uses the OpenAI endpoint.
func NewOpenAIModel(apiKey, baseURL string) *OpenAIModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIModel{client: openai.NewClientWithConfig(cfg)}
}

// Generate implements Model.
func (m *OpenAIModel) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(req.System, req.Messages),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAITools(req.Tools)
		if req.ToolChoice == ToolChoiceAny {
			chatReq.ToolChoice = "required"
		} else {
			chatReq.ToolChoice = "auto"
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	choice := resp.Choices[0]
	out := &Response{
		StopReason: fromOpenAIFinishReason(choice.FinishReason),
		Usage: core.TokenUsage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}
	if choice.Message.Content != "" {
		out.Blocks = append(out.Blocks, core.ContentBlock{Type: core.BlockText, Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		args := call.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.Blocks = append(out.Blocks, core.ContentBlock{
			Type:  core.BlockToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: json.RawMessage(args),
		})
	}
	return out, nil
}

func toOpenAIMessages(system string, messages []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, msg := range messages {
		if msg.Role == core.RoleAssistant {
			am := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Text()}
			for _, use := range msg.ToolUses() {
				args := string(use.Input)
				if args == "" {
					args = "{}"
				}
				am.ToolCalls = append(am.ToolCalls, openai.ToolCall{
					ID:   use.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      use.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, am)
			continue
		}

		// Tool results become one tool message each; text stays a user message.
		for _, b := range msg.Blocks {
			switch b.Type {
			case core.BlockToolResult:
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					ToolCallID: b.ToolUseID,
					Content:    b.Content,
				})
			case core.BlockText:
				out = append(out, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: b.Text,
				})
			}
		}
	}
	return out
}

func toOpenAITools(defs []core.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.ToolName,
				Description: def.ToolDescription,
				Parameters:  def.InputSchema,
			},
		})
	}
	return out
}

func fromOpenAIFinishReason(r openai.FinishReason) StopReason {
	switch r {
	case openai.FinishReasonStop:
		return StopEndTurn
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return StopToolUse
	case openai.FinishReasonLength:
		return StopMaxTokens
	default:
		return StopOther
	}
}
