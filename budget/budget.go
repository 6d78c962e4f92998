// Package budget holds the budget, expense and tip values exchanged with the
// tips flow, and the analyzers the model can consult through a tool.
package budget

import "context"

// Budget is the amount budgeted per category plus an overall total.
// The category amounts are not required to add up to TotalBudget.
type Budget struct {
	Categories  map[string]float64 `json:"categories" validate:"required,dive,keys,min=1,endkeys,gte=0"`
	TotalBudget float64            `json:"totalBudget"`
}

// Expenses is the amount spent per category plus an overall total.
// The category amounts are not required to add up to TotalExpenses.
type Expenses struct {
	Categories    map[string]float64 `json:"categories" validate:"required,dive,keys,min=1,endkeys,gte=0"`
	TotalExpenses float64            `json:"totalExpenses"`
}

// BudgetingTips is an ordered list of tips, in generation order.
type BudgetingTips struct {
	Tips []string `json:"tips"`
}

// Analyzer produces tips from a budget and the matching expenses.
type Analyzer interface {
	Analyze(ctx context.Context, b Budget, e Expenses) (BudgetingTips, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, b Budget, e Expenses) (BudgetingTips, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, b Budget, e Expenses) (BudgetingTips, error) {
	return f(ctx, b, e)
}
