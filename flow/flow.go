// Package flow implements the budgeting-tips flow: validate the request,
// prompt the model with the checkBudget tool available, and collect its tips.
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/budget"
	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/engine"
	"github.com/waqaskhan137/fintips/presets"
	"github.com/waqaskhan137/fintips/tools"
)

// Runner executes a prompt against the model and its tools.
type Runner interface {
	Run(ctx context.Context, input *engine.Input) (*engine.Output, error)
}

// Options tunes the generation run. Zero values take the advisor defaults.
type Options struct {
	Model        string
	MaxTokens    int64
	MaxTurns     int
	SystemPrompt string
	// Timeout bounds a single Generate call. Zero means no extra bound.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	caps := presets.AdvisorCapabilities()
	if o.Model == "" {
		o.Model = caps.Model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = caps.MaxTokens
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = caps.MaxTurns
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = caps.SystemPrompt
	}
	return o
}

// BudgetTips is the tips flow.
type BudgetTips struct {
	runner Runner
	opts   Options
	logger *slog.Logger
}

// New creates the flow over a model, with the analyzer exposed as the checkBudget tool.
func New(model engine.Model, analyzer budget.Analyzer, opts Options) *BudgetTips {
	registry := engine.NewToolRegistry()
	registry.RegisterAll(
		tools.CheckBudget(analyzer),
		tools.SubmitTips(),
	)
	return NewWithRunner(engine.NewEngine(model, registry), opts)
}

// NewWithRunner creates the flow over an existing runner.
func NewWithRunner(runner Runner, opts Options) *BudgetTips {
	return &BudgetTips{
		runner: runner,
		opts:   opts.withDefaults(),
		logger: slog.Default().With("component", "flow"),
	}
}

// Generate validates the input and asks the model for tips.
// Validation failures never reach the model.
func (f *BudgetTips) Generate(ctx context.Context, in Input) (*Output, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	prompt, err := presets.RenderTipsPrompt(presets.PromptData{FinancialGoals: in.FinancialGoals})
	if err != nil {
		return nil, apperr.ErrInternal.WithError(err)
	}

	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	requestID := core.RequestID(ctx)
	out, err := f.runner.Run(ctx, &engine.Input{
		UserMessage:  prompt,
		SystemPrompt: f.opts.SystemPrompt,
		Model:        f.opts.Model,
		MaxTokens:    f.opts.MaxTokens,
		MaxTurns:     f.opts.MaxTurns,
		OutputTool:   tools.SubmitTipsName,
		UserID:       core.UserID(ctx),
		RequestID:    requestID,
	})
	if err != nil {
		f.logger.Error("tip generation failed", "request_id", requestID, "error", err)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperr.ErrTimeout.WithError(err)
		case errors.Is(err, context.Canceled):
			return nil, apperr.ErrCanceled.WithError(err)
		}
		return nil, apperr.ErrGeneration.WithError(err)
	}

	tips, err := collectTips(out)
	if err != nil {
		return nil, apperr.ErrGeneration.WithError(err)
	}

	f.logger.Info("tips generated",
		"request_id", requestID,
		"tips", len(tips),
		"turns", out.Turns,
		"tool_calls", len(out.ToolCalls),
		"input_tokens", out.TokensUsed.InputTokens,
		"output_tokens", out.TokensUsed.OutputTokens,
		"duration", time.Since(start))

	return &Output{Tips: tips}, nil
}

// collectTips reads the submitted tips, falling back to a JSON object in the
// final text when the model answered without the output tool.
func collectTips(out *engine.Output) ([]string, error) {
	var result budget.BudgetingTips
	switch {
	case len(out.Result) > 0:
		if err := json.Unmarshal(out.Result, &result); err != nil {
			return nil, fmt.Errorf("malformed %s input: %w", tools.SubmitTipsName, err)
		}
	default:
		text := out.Text
		start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			// Text that is not a tips object yields no tips.
			var parsed budget.BudgetingTips
			if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil {
				result = parsed
			}
		}
	}

	tips := make([]string, 0, len(result.Tips))
	for _, tip := range result.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			tips = append(tips, tip)
		}
	}
	return tips, nil
}
