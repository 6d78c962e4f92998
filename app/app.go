// Package app wires configuration, the generation backend, the tips flow and
// the server together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/waqaskhan137/fintips/budget"
	"github.com/waqaskhan137/fintips/config"
	"github.com/waqaskhan137/fintips/engine"
	"github.com/waqaskhan137/fintips/executor"
	"github.com/waqaskhan137/fintips/flow"
	"github.com/waqaskhan137/fintips/server"
)

// FlowModule provides the tips flow, as the server's TipsGenerator, and its dependencies.
var FlowModule = fx.Module("flow",
	fx.Provide(
		NewModel,
		NewAnalyzer,
		fx.Annotate(NewTipsFlow, fx.As(new(server.TipsGenerator))),
	),
)

// ServerModule provides the HTTP server and ties it to the app lifecycle.
var ServerModule = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerServer),
)

// New builds the serve application for cfg.
func New(cfg config.Config, opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default()}
		}),
		FlowModule,
		ServerModule,
	}, opts...)...)
}

// NewModel creates the generation backend selected by the config.
func NewModel(cfg config.Config) (engine.Model, error) {
	llm := cfg.LLM
	if llm.APIKey == "" {
		return nil, fmt.Errorf("no API key for provider %q: set llm.api_key or %s", llm.Provider, providerKeyVar(llm.Provider))
	}
	switch llm.Provider {
	case "anthropic":
		return engine.NewAnthropicModel(llm.APIKey, llm.BaseURL), nil
	case "openai":
		return engine.NewOpenAIModel(llm.APIKey, llm.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", llm.Provider)
	}
}

func providerKeyVar(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// NewAnalyzer creates the budget analyzer behind the checkBudget tool.
func NewAnalyzer(cfg config.Config) budget.Analyzer {
	if cfg.Analyzer.Mode == "remote" {
		return budget.NewRemoteAnalyzer(executor.NewHTTPExecutor(executor.HTTPExecutorConfig{
			BaseURL: cfg.Analyzer.BaseURL,
			APIKey:  cfg.Analyzer.APIKey,
			Timeout: cfg.Analyzer.Timeout(),
		}))
	}
	return budget.NewStubAnalyzer()
}

// NewTipsFlow creates the tips flow.
func NewTipsFlow(cfg config.Config, model engine.Model, analyzer budget.Analyzer) *flow.BudgetTips {
	return flow.New(model, analyzer, flow.Options{
		Model:     modelName(cfg.LLM),
		MaxTokens: cfg.LLM.MaxTokens,
		MaxTurns:  cfg.LLM.MaxTurns,
		Timeout:   cfg.LLM.Timeout(),
	})
}

// modelName picks the provider default when none is configured.
func modelName(llm config.LLMConfig) string {
	if llm.Model != "" {
		return llm.Model
	}
	if llm.Provider == "openai" {
		return engine.DefaultOpenAIModel
	}
	return engine.DefaultAnthropicModel
}

// BuildFlow creates the tips flow without the fx container, for one-shot CLI use.
func BuildFlow(cfg config.Config) (*flow.BudgetTips, error) {
	model, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	return NewTipsFlow(cfg, model, NewAnalyzer(cfg)), nil
}

// NewServer creates the HTTP server.
func NewServer(cfg config.Config, tips server.TipsGenerator) (*server.Server, error) {
	return server.New(server.Config{
		Addr:            cfg.Server.Addr,
		Mode:            cfg.Server.Mode,
		CacheTTL:        cfg.Server.CacheTTL(),
		CacheMaxEntries: cfg.Server.CacheMaxEntries,
	}, tips)
}

func registerServer(lc fx.Lifecycle, cfg config.Config, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			if timeout := cfg.Server.ShutdownTimeout(); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return srv.Shutdown(ctx)
		},
	})
}
