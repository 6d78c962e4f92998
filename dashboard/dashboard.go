// Package dashboard serves the static sample data shown on the dashboard.
package dashboard

import (
	"math"
	"sort"

	"github.com/waqaskhan137/fintips/budget"
	"github.com/waqaskhan137/fintips/flow"
)

// Overview holds the headline figures for the month.
type Overview struct {
	TotalSpending   float64 `json:"totalSpending"`
	RemainingBudget float64 `json:"remainingBudget"`
	Savings         float64 `json:"savings"`
}

// Slice is one category of the budget breakdown.
type Slice struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	// Percent is the share of the breakdown total, rounded to a whole number.
	Percent float64 `json:"percent"`
}

// Transaction is a recent account movement. Spending is negative.
type Transaction struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// Data is everything the dashboard shows.
type Data struct {
	Overview     Overview      `json:"overview"`
	Breakdown    []Slice       `json:"breakdown"`
	Transactions []Transaction `json:"transactions"`
}

// Sample returns a fresh copy of the sample dashboard data.
func Sample() Data {
	breakdown := []Slice{
		{Category: "Food", Amount: 400},
		{Category: "Travel", Amount: 300},
		{Category: "Entertainment", Amount: 200},
		{Category: "Utilities", Amount: 100},
		{Category: "Other", Amount: 50},
	}
	withShares(breakdown)

	return Data{
		Overview: Overview{
			TotalSpending:   1250,
			RemainingBudget: 750,
			Savings:         250,
		},
		Breakdown: breakdown,
		Transactions: []Transaction{
			{ID: 1, Date: "2024-07-22", Description: "Grocery Shopping", Amount: -50, Category: "Food"},
			{ID: 2, Date: "2024-07-21", Description: "Train Ticket", Amount: -20, Category: "Travel"},
			{ID: 3, Date: "2024-07-20", Description: "Movie Night", Amount: -30, Category: "Entertainment"},
			{ID: 4, Date: "2024-07-19", Description: "Electricity Bill", Amount: -80, Category: "Utilities"},
		},
	}
}

func withShares(slices []Slice) {
	var total float64
	for _, s := range slices {
		total += s.Amount
	}
	if total == 0 {
		return
	}
	for i := range slices {
		slices[i].Percent = math.Round(slices[i].Amount / total * 100)
	}
}

// Categories returns the breakdown category names in display order.
func (d Data) Categories() []string {
	names := make([]string, 0, len(d.Breakdown))
	for _, s := range d.Breakdown {
		names = append(names, s.Category)
	}
	return names
}

// SpendingByCategory sums the spending transactions per category as positive amounts.
func (d Data) SpendingByCategory() map[string]float64 {
	out := make(map[string]float64)
	for _, t := range d.Transactions {
		if t.Amount < 0 {
			out[t.Category] += -t.Amount
		}
	}
	return out
}

// TipsInput builds a tips request from the dashboard figures: the breakdown
// as the budget and the recent transactions as expenses.
func (d Data) TipsInput(goal string) flow.Input {
	categories := make(map[string]float64, len(d.Breakdown))
	for _, s := range d.Breakdown {
		categories[s.Category] = s.Amount
	}
	return flow.Input{
		Budget: budget.Budget{
			Categories:  categories,
			TotalBudget: d.Overview.TotalSpending + d.Overview.RemainingBudget,
		},
		Expenses: budget.Expenses{
			Categories:    d.SpendingByCategory(),
			TotalExpenses: d.Overview.TotalSpending,
		},
		FinancialGoals: goal,
	}
}

// SortedTransactions returns the transactions newest first.
func (d Data) SortedTransactions() []Transaction {
	out := append([]Transaction(nil), d.Transactions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
