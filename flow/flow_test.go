package flow

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/budget"
	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/engine"
	"github.com/waqaskhan137/fintips/tools"
)

const exampleRequest = `{
	"budget": {"categories": {"Food": 400}, "totalBudget": 1000},
	"expenses": {"categories": {"Food": 450}, "totalExpenses": 450},
	"financialGoals": "Save more"
}`

type fakeRunner struct {
	RunFunc func(ctx context.Context, input *engine.Input) (*engine.Output, error)
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, input *engine.Input) (*engine.Output, error) {
	f.calls++
	return f.RunFunc(ctx, input)
}

func submit(tips ...string) *engine.Output {
	data, _ := json.Marshal(budget.BudgetingTips{Tips: tips})
	return &engine.Output{Result: data, Turns: 1}
}

func mustDecode(t *testing.T, data string) Input {
	t.Helper()
	in, err := DecodeInput([]byte(data))
	if err != nil {
		t.Fatalf("DecodeInput: %v", err)
	}
	return in
}

// checkThenSubmit plays a model that calls checkBudget with the user's
// figures and then submits the tips the tool returned.
func checkThenSubmit(t *testing.T) engine.Model {
	turn := 0
	return engine.ModelFunc(func(_ context.Context, req *engine.Request) (*engine.Response, error) {
		turn++
		switch turn {
		case 1:
			if !strings.Contains(req.Messages[0].Text(), "Financial Goals: Save more") {
				t.Errorf("prompt = %q", req.Messages[0].Text())
			}
			return &engine.Response{Blocks: []core.ContentBlock{{
				Type:  core.BlockToolUse,
				ID:    "call_1",
				Name:  tools.CheckBudgetName,
				Input: json.RawMessage(`{"budget":{"categories":{"Food":400},"totalBudget":1000},"expenses":{"categories":{"Food":450},"totalExpenses":450}}`),
			}}}, nil
		case 2:
			result := req.Messages[len(req.Messages)-1].Blocks[0]
			if result.IsError {
				t.Errorf("checkBudget failed: %s", result.Content)
			}
			return &engine.Response{Blocks: []core.ContentBlock{{
				Type:  core.BlockToolUse,
				ID:    "call_2",
				Name:  tools.SubmitTipsName,
				Input: json.RawMessage(result.Content),
			}}}, nil
		default:
			t.Fatalf("unexpected turn %d", turn)
			return nil, nil
		}
	})
}

func TestGenerate_ExampleScenario(t *testing.T) {
	f := New(checkThenSubmit(t), budget.NewStubAnalyzer(), Options{})

	out, err := f.Generate(context.Background(), mustDecode(t, exampleRequest))
	if err != nil {
		t.Fatal(err)
	}
	if out.Tips == nil || len(out.Tips) != 3 {
		t.Fatalf("tips = %q", out.Tips)
	}
	for i, tip := range out.Tips {
		if tip == "" {
			t.Fatalf("tip %d is empty", i)
		}
	}
}

func TestGenerate_EmptyGoalIsValid(t *testing.T) {
	runner := &fakeRunner{RunFunc: func(_ context.Context, input *engine.Input) (*engine.Output, error) {
		if !strings.Contains(input.UserMessage, "Financial Goals: \n") {
			t.Errorf("prompt = %q", input.UserMessage)
		}
		return submit("Track your spending."), nil
	}}
	in := mustDecode(t, `{
		"budget": {"categories": {}, "totalBudget": 0},
		"expenses": {"categories": {}, "totalExpenses": 0},
		"financialGoals": ""
	}`)

	out, err := NewWithRunner(runner, Options{}).Generate(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Tips, []string{"Track your spending."}) {
		t.Fatalf("tips = %q", out.Tips)
	}
}

func TestGenerate_RunInputUsesOptions(t *testing.T) {
	var got *engine.Input
	runner := &fakeRunner{RunFunc: func(_ context.Context, input *engine.Input) (*engine.Output, error) {
		got = input
		return submit(), nil
	}}
	ctx := core.WithRequestID(context.Background(), "req-1")

	_, err := NewWithRunner(runner, Options{Model: "m", MaxTurns: 2}).Generate(ctx, mustDecode(t, exampleRequest))
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "m" || got.MaxTurns != 2 || got.MaxTokens == 0 || got.SystemPrompt == "" {
		t.Fatalf("run input = %+v", got)
	}
	if got.OutputTool != tools.SubmitTipsName || got.RequestID != "req-1" {
		t.Fatalf("run input = %+v", got)
	}
}

func TestGenerate_NilAndBlankTipsBecomeEmptyList(t *testing.T) {
	tests := []struct {
		name string
		out  *engine.Output
		want []string
	}{
		{"null tips", &engine.Output{Result: json.RawMessage(`{"tips":null}`)}, []string{}},
		{"blank tips dropped", submit(" a ", "", "  "), []string{"a"}},
		{"text answer with json", &engine.Output{Text: "Sure: {\"tips\":[\"x\"]}"}, []string{"x"}},
		{"plain text answer", &engine.Output{Text: "no tips today"}, []string{}},
		{"malformed text object", &engine.Output{Text: `{"tips":["a",1]}`}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{RunFunc: func(context.Context, *engine.Input) (*engine.Output, error) {
				return tt.out, nil
			}}
			out, err := NewWithRunner(runner, Options{}).Generate(context.Background(), mustDecode(t, exampleRequest))
			if err != nil {
				t.Fatal(err)
			}
			if out.Tips == nil || !reflect.DeepEqual(out.Tips, tt.want) {
				t.Fatalf("tips = %#v, want %#v", out.Tips, tt.want)
			}
		})
	}
}

func TestGenerate_CanceledCaller(t *testing.T) {
	runner := &fakeRunner{RunFunc: func(ctx context.Context, _ *engine.Input) (*engine.Output, error) {
		return nil, ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithRunner(runner, Options{}).Generate(ctx, mustDecode(t, exampleRequest))
	if !errors.Is(err, apperr.ErrCanceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
	if appErr := apperr.FromError(err); appErr.Code != "REQUEST_CANCELED" || appErr.StatusCode != 408 {
		t.Fatalf("mapped to %s/%d", appErr.Code, appErr.StatusCode)
	}
}

func TestGenerate_BackendErrorIsGenerationError(t *testing.T) {
	backend := errors.New("503 from provider")
	runner := &fakeRunner{RunFunc: func(context.Context, *engine.Input) (*engine.Output, error) {
		return nil, backend
	}}

	_, err := NewWithRunner(runner, Options{}).Generate(context.Background(), mustDecode(t, exampleRequest))
	if !errors.Is(err, apperr.ErrGeneration) {
		t.Fatalf("err = %v, want generation error", err)
	}
	if !errors.Is(err, backend) {
		t.Fatal("backend error not wrapped")
	}
	if runner.calls != 1 {
		t.Fatalf("runner called %d times, want 1", runner.calls)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	runner := &fakeRunner{RunFunc: func(ctx context.Context, _ *engine.Input) (*engine.Output, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, err := NewWithRunner(runner, Options{Timeout: 10 * time.Millisecond}).
		Generate(context.Background(), mustDecode(t, exampleRequest))
	if !errors.Is(err, apperr.ErrTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestGenerate_MalformedSubmission(t *testing.T) {
	runner := &fakeRunner{RunFunc: func(context.Context, *engine.Input) (*engine.Output, error) {
		return &engine.Output{Result: json.RawMessage(`{"tips":"one"}`)}, nil
	}}
	_, err := NewWithRunner(runner, Options{}).Generate(context.Background(), mustDecode(t, exampleRequest))
	if !errors.Is(err, apperr.ErrGeneration) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerate_InvalidInputSkipsModel(t *testing.T) {
	runner := &fakeRunner{RunFunc: func(context.Context, *engine.Input) (*engine.Output, error) {
		t.Fatal("runner called for invalid input")
		return nil, nil
	}}
	in := Input{
		Budget:   budget.Budget{Categories: map[string]float64{"Food": -1}},
		Expenses: budget.Expenses{Categories: map[string]float64{}},
	}

	_, err := NewWithRunner(runner, Options{}).Generate(context.Background(), in)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{
			name:  "string totalBudget",
			body:  `{"budget":{"categories":{},"totalBudget":"1000"},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":""}`,
			code:  "VALIDATION_ERROR",
			field: "budget.totalBudget",
		},
		{
			name:  "numeric goal",
			body:  `{"budget":{"categories":{},"totalBudget":1},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":5}`,
			code:  "VALIDATION_ERROR",
			field: "financialGoals",
		},
		{
			name: "missing expenses",
			body: `{"budget":{"categories":{},"totalBudget":1},"financialGoals":""}`,
			code: "VALIDATION_ERROR",
		},
		{
			name: "missing categories",
			body: `{"budget":{"totalBudget":1},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":""}`,
			code: "VALIDATION_ERROR",
		},
		{
			name: "negative expense",
			body: `{"budget":{"categories":{},"totalBudget":1},"expenses":{"categories":{"Food":-3},"totalExpenses":0},"financialGoals":""}`,
			code: "VALIDATION_ERROR",
		},
		{
			name:  "missing totalBudget",
			body:  `{"budget":{"categories":{}},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":""}`,
			code:  "VALIDATION_ERROR",
			field: "budget.totalBudget",
		},
		{
			name:  "null totalExpenses",
			body:  `{"budget":{"categories":{},"totalBudget":1},"expenses":{"categories":{},"totalExpenses":null},"financialGoals":""}`,
			code:  "VALIDATION_ERROR",
			field: "expenses.totalExpenses",
		},
		{
			name:  "null category amount",
			body:  `{"budget":{"categories":{"Food":null},"totalBudget":1},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":""}`,
			code:  "VALIDATION_ERROR",
			field: "budget.categories[Food]",
		},
		{
			name: "syntax error",
			body: `{"budget":`,
			code: "BAD_REQUEST",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInput([]byte(tt.body))
			appErr, ok := apperr.AsAppError(err)
			if !ok {
				t.Fatalf("err = %v, want AppError", err)
			}
			if appErr.Code != tt.code {
				t.Fatalf("code = %s, want %s", appErr.Code, tt.code)
			}
			if tt.field != "" {
				fields := appErr.Details["fields"].([]map[string]string)
				if fields[0]["field"] != tt.field {
					t.Fatalf("field = %s, want %s", fields[0]["field"], tt.field)
				}
			}
		})
	}
}

func TestDecodeInput_ZeroAmountsAreValid(t *testing.T) {
	in := mustDecode(t, `{"budget":{"categories":{"Food":0},"totalBudget":0},"expenses":{"categories":{},"totalExpenses":0},"financialGoals":""}`)
	if v, ok := in.Budget.Categories["Food"]; !ok || v != 0 {
		t.Fatalf("categories = %v", in.Budget.Categories)
	}
	if in.Expenses.Categories == nil {
		t.Fatal("expense categories decoded as nil")
	}
}

func TestDecodeInput_RoundTrip(t *testing.T) {
	in := mustDecode(t, exampleRequest)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	again := mustDecode(t, string(data))
	if !reflect.DeepEqual(in, again) {
		t.Fatalf("round trip changed input: %+v vs %+v", in, again)
	}
}
