package budget

import "context"

var stubTips = [...]string{
	"Consider reducing spending on non-essential categories.",
	"Try to find ways to increase your income.",
	"Set realistic budget goals and track your progress.",
}

// StubAnalyzer returns the same three generic tips for every input.
// It stands in until per-category analysis exists.
type StubAnalyzer struct{}

// NewStubAnalyzer creates a StubAnalyzer.
func NewStubAnalyzer() *StubAnalyzer {
	return &StubAnalyzer{}
}

// Analyze ignores its input. Each call returns a new slice.
func (StubAnalyzer) Analyze(_ context.Context, _ Budget, _ Expenses) (BudgetingTips, error) {
	tips := make([]string, len(stubTips))
	copy(tips, stubTips[:])
	return BudgetingTips{Tips: tips}, nil
}
