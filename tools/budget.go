package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/waqaskhan137/fintips/budget"
	"github.com/waqaskhan137/fintips/core"
)

// Tool names exposed to the model.
const (
	CheckBudgetName = "checkBudget"
	SubmitTipsName  = "submit_tips"
)

// BudgetSchema is the JSON schema of a budget.
func BudgetSchema() map[string]interface{} {
	return ObjectProperty("The user budget information.", map[string]interface{}{
		"categories":  NumberMapProperty("The amount budgeted for each category."),
		"totalBudget": NumberProperty("The total budget."),
	}, "categories", "totalBudget")
}

// ExpensesSchema is the JSON schema of the user's expenses.
func ExpensesSchema() map[string]interface{} {
	return ObjectProperty("The user expense information.", map[string]interface{}{
		"categories":    NumberMapProperty("The amount spent in each category."),
		"totalExpenses": NumberProperty("The total amount spent."),
	}, "categories", "totalExpenses")
}

// TipsSchema is the JSON schema of a tips list.
func TipsSchema(description string) map[string]interface{} {
	return ObjectSchema(map[string]interface{}{
		"tips": ArrayProperty(description, map[string]interface{}{"type": "string"}),
	}, "tips")
}

type checkBudgetInput struct {
	Budget   *budget.Budget   `json:"budget"`
	Expenses *budget.Expenses `json:"expenses"`
}

// CheckBudget returns the tool through which the model consults the analyzer.
func CheckBudget(analyzer budget.Analyzer) core.Tool {
	return New(CheckBudgetName).
		Description("Checks the user's budget and provides tips.").
		Schema(ObjectSchema(map[string]interface{}{
			"budget":   BudgetSchema(),
			"expenses": ExpensesSchema(),
		}, "budget", "expenses")).
		Handler(func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
			var in checkBudgetInput
			if err := json.Unmarshal(params.Input, &in); err != nil {
				return &core.ToolResult{
					Success: false,
					Error:   fmt.Sprintf("invalid input: %v", err),
				}, nil
			}
			if in.Budget == nil || in.Expenses == nil {
				return &core.ToolResult{
					Success: false,
					Error:   "invalid input: budget and expenses are required",
				}, nil
			}
			if in.Budget.Categories == nil {
				in.Budget.Categories = map[string]float64{}
			}
			if in.Expenses.Categories == nil {
				in.Expenses.Categories = map[string]float64{}
			}
			if err := in.Budget.Validate(); err != nil {
				return &core.ToolResult{Success: false, Error: fmt.Sprintf("invalid budget: %v", err)}, nil
			}
			if err := in.Expenses.Validate(); err != nil {
				return &core.ToolResult{Success: false, Error: fmt.Sprintf("invalid expenses: %v", err)}, nil
			}

			tips, err := analyzer.Analyze(ctx, *in.Budget, *in.Expenses)
			if err != nil {
				return &core.ToolResult{
					Success: false,
					Error:   fmt.Sprintf("budget analysis failed: %v", err),
				}, nil
			}
			if tips.Tips == nil {
				tips.Tips = []string{}
			}
			return &core.ToolResult{Success: true, Data: tips}, nil
		}).
		Build()
}

// SubmitTips returns the tool the model calls to deliver its final answer.
// The engine stops at this call and its input becomes the run result.
func SubmitTips() core.Tool {
	return New(SubmitTipsName).
		Description("Return the final list of personalized budgeting tips to the user. Call this exactly once when you are done.").
		Schema(TipsSchema("Personalized tips on how to optimize the budget based on financial goals.")).
		HandlerFunc(func(_ context.Context, input json.RawMessage) (interface{}, error) {
			var out budget.BudgetingTips
			if err := json.Unmarshal(input, &out); err != nil {
				return nil, fmt.Errorf("invalid tips: %w", err)
			}
			return out, nil
		}).
		Build()
}
