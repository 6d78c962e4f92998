// Package presets provides the prompts and run settings of the budgeting advisor.
package presets

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/waqaskhan137/fintips/core"
)

// AdvisorSystemPrompt is the system prompt for the budgeting advisor.
const AdvisorSystemPrompt = `You are a personal finance advisor.

Your role is to turn a user's budget, their actual spending and their
financial goals into short, practical budgeting tips.

Guidelines:
- Use the checkBudget tool with the user's budget and expenses when it helps
- Compare spending per category against the budgeted amount
- Tie every tip to the stated financial goals when there are any
- Keep each tip to one or two sentences
- Never invent figures that are not in the data

When you are done, call submit_tips exactly once with the final list of tips.`

// TipsPromptTemplate is the user prompt. It is parameterized only by the
// financial goals.
const TipsPromptTemplate = `You are a personal finance advisor. Analyze the user's spending habits and provide personalized tips on how to optimize their budget based on their financial goals.

Financial Goals: {{.FinancialGoals}}

You can use the checkBudget tool to get some budget tips.`

var tipsPrompt = template.Must(template.New("tips").Parse(TipsPromptTemplate))

// PromptData is the template input.
type PromptData struct {
	FinancialGoals string
}

// RenderTipsPrompt renders the user prompt.
func RenderTipsPrompt(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tipsPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render tips prompt: %w", err)
	}
	return buf.String(), nil
}

// AdvisorCapabilities returns the default run settings of the advisor.
func AdvisorCapabilities() *core.Capabilities {
	return &core.Capabilities{
		AvailableTools: []string{"checkBudget"},
		Model:          "claude-sonnet-4-20250514",
		MaxTokens:      4096,
		MaxTurns:       6,
		SystemPrompt:   AdvisorSystemPrompt,
	}
}
