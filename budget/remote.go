package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/waqaskhan137/fintips/core"
)

// RemoteTool is the tool name sent to the remote analysis service.
const RemoteTool = "checkBudget"

// RemoteAnalyzer delegates analysis to a service reached through a
// core.ToolExecutor.
type RemoteAnalyzer struct {
	executor core.ToolExecutor
}

// NewRemoteAnalyzer creates an analyzer backed by the given executor.
func NewRemoteAnalyzer(executor core.ToolExecutor) *RemoteAnalyzer {
	return &RemoteAnalyzer{executor: executor}
}

type remoteRequest struct {
	Budget   Budget   `json:"budget"`
	Expenses Expenses `json:"expenses"`
}

// Analyze sends the budget and expenses to the remote service.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, b Budget, e Expenses) (BudgetingTips, error) {
	input, err := json.Marshal(remoteRequest{Budget: b, Expenses: e})
	if err != nil {
		return BudgetingTips{}, fmt.Errorf("budget: encoding analysis request: %w", err)
	}

	resp, err := a.executor.Execute(ctx, &core.ExecuteRequest{
		UserID:    core.UserID(ctx),
		Tool:      RemoteTool,
		Input:     input,
		RequestID: core.RequestID(ctx),
	})
	if err != nil {
		return BudgetingTips{}, fmt.Errorf("budget: remote analysis: %w", err)
	}
	if !resp.Success {
		if resp.Error == "" {
			return BudgetingTips{}, errors.New("budget: remote analysis failed")
		}
		return BudgetingTips{}, fmt.Errorf("budget: remote analysis: %s", resp.Error)
	}

	var tips BudgetingTips
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &tips); err != nil {
			return BudgetingTips{}, fmt.Errorf("budget: parsing analysis response: %w", err)
		}
	}
	if tips.Tips == nil {
		tips.Tips = []string{}
	}
	return tips, nil
}
