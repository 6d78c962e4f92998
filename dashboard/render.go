package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	spendStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	barStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

const barWidth = 24

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	return cardStyle.
		Width(55).
		Align(lipgloss.Center).
		Render(titleStyle.Render(title))
}

// FormatAmount formats a dollar amount, e.g. 1250 -> "$1,250", -50 -> "-$50".
func FormatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// Render writes the dashboard to w.
func Render(w io.Writer, d Data) error {
	var b strings.Builder

	b.WriteString(RenderTitle("Dashboard Overview"))
	b.WriteString("\n")

	cards := []string{
		card("Total Spending", "This month's total expenses.", d.Overview.TotalSpending),
		card("Remaining Budget", "Amount left to spend this month.", d.Overview.RemainingBudget),
		card("Savings", "Amount saved this month.", d.Overview.Savings),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	b.WriteString("  " + headerStyle.Render("Budget Breakdown") + "\n")
	nameWidth := 0
	for _, s := range d.Breakdown {
		nameWidth = max(nameWidth, len(s.Category))
	}
	for _, s := range d.Breakdown {
		filled := int(s.Percent / 100 * barWidth)
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&b, "  %-*s %s %3.0f%% %s\n",
			nameWidth, s.Category, bar, s.Percent, mutedStyle.Render(FormatAmount(s.Amount)))
	}
	b.WriteString("\n")

	b.WriteString("  " + headerStyle.Render("Recent Transactions") + "\n")
	for _, t := range d.SortedTransactions() {
		fmt.Fprintf(&b, "  %s  %-18s %-14s %s\n",
			mutedStyle.Render(t.Date), t.Description, t.Category,
			spendStyle.Render(fmt.Sprintf("%8s", FormatAmount(t.Amount))))
	}
	b.WriteString("\n")

	b.WriteString("  " + headerStyle.Render("AI Budgeting Assistant") + "\n")
	b.WriteString("  " + mutedStyle.Render("Get personalized tips with: fintips tips --sample --goal \"<your goal>\"") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func card(title, desc string, amount float64) string {
	return cardStyle.Width(24).Render(
		headerStyle.Render(title) + "\n" +
			mutedStyle.Render(desc) + "\n" +
			valueStyle.Render(FormatAmount(amount)))
}

// RenderTips writes a numbered tip list to w.
func RenderTips(w io.Writer, tips []string) error {
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render("Budgeting Tips") + "\n")
	if len(tips) == 0 {
		b.WriteString("  " + mutedStyle.Render("No tips were generated.") + "\n")
	}
	for i, tip := range tips {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%d.", i+1)), tip)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
