// Package pnl builds a profit and loss statement and a trailing monthly P&L
// from a franchise snapshot and its records.
package pnl

import (
	"time"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/datetime"
)

// RowType classifies a statement row.
type RowType string

const (
	RowSection  RowType = "section"
	RowRevenue  RowType = "revenue"
	RowExpense  RowType = "expense"
	RowSubtotal RowType = "subtotal"
	RowTotal    RowType = "total"
)

// Row is one line of a statement.
type Row struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Type   RowType `json:"type"`
}

// Statement is a franchise's P&L statement.
type Statement struct {
	Rows          []Row   `json:"rows"`
	TotalTaxes    float64 `json:"totalTaxes"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
	IsProfitable  bool    `json:"isProfitable"`
}

// Month is one month of the trailing P&L.
type Month struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// Build produces the statement for snapshot a. Taxes are the stored tax
// components of the contracted transactions. When w is set, only deals
// contracted inside w count, matching a windowed snapshot.
func Build(a *model.FranchiseAnalytics, txs []model.Transaction, w *model.Window) Statement {
	taxes := 0.0
	for _, tx := range txs {
		if !tx.IsContracted() {
			continue
		}
		if w != nil && (tx.ContractedAt == nil || !w.Contains(*tx.ContractedAt)) {
			continue
		}
		taxes += tx.Taxes()
	}
	totalExpenses := a.TotalExpenses + a.CommissionCutsTotal + taxes
	net := a.GrossRevenue - totalExpenses

	return Statement{
		Rows: []Row{
			{Label: "REVENUE", Type: RowSection},
			{Label: "Gross Commission Revenue", Amount: a.GrossRevenue, Type: RowRevenue},
			{Label: "Expected Future Revenue", Amount: a.ExpectedRevenue, Type: RowRevenue},
			{Label: "Total Revenue", Amount: a.GrossRevenue + a.ExpectedRevenue, Type: RowSubtotal},
			{Label: "EXPENSES", Type: RowSection},
			{Label: "Fixed Expenses", Amount: a.FixedExpenses, Type: RowExpense},
			{Label: "Variable Expenses", Amount: a.VariableExpenses, Type: RowExpense},
			{Label: "Commission Cuts (Agent/Team)", Amount: a.CommissionCutsTotal, Type: RowExpense},
			{Label: "Taxes", Amount: taxes, Type: RowExpense},
			{Label: "Total Expenses", Amount: totalExpenses, Type: RowSubtotal},
			{Label: "NET PROFIT / (LOSS)", Amount: net, Type: RowTotal},
		},
		TotalTaxes:    taxes,
		TotalExpenses: totalExpenses,
		NetProfit:     net,
		IsProfitable:  net > 0,
	}
}

// Trailing returns the twelve months ending with now's month, oldest first.
// Revenue is bucketed by payout month. Expenses add the month's recorded
// expenses, the snapshot's cut rate applied to the month's contracted volume
// and the taxes of deals contracted that month.
func Trailing(txs []model.Transaction, expenses []model.Expense, a *model.FranchiseAnalytics, now time.Time) []Month {
	keys := datetime.MonthKeys(now, -constants.MonthsPerYear)
	revenue := make(map[string]float64, len(keys))
	sales := make(map[string]float64, len(keys))
	taxes := make(map[string]float64, len(keys))
	spent := make(map[string]float64, len(keys))

	for _, tx := range txs {
		if !tx.IsContracted() {
			continue
		}
		if tx.ExpectedPayoutDate != nil {
			revenue[datetime.MonthKey(*tx.ExpectedPayoutDate)] += tx.Commission()
		}
		if tx.ContractedAt != nil {
			key := datetime.MonthKey(*tx.ContractedAt)
			sales[key] += tx.TransactionAmount
			taxes[key] += tx.Taxes()
		}
	}
	for _, e := range expenses {
		spent[datetime.MonthKey(e.Date)] += e.Amount
	}

	cutRate := 0.0
	if a != nil && a.CommissionCutsTotal > 0 && a.TotalSalesVolume > 0 {
		cutRate = a.CommissionCutsTotal / a.TotalSalesVolume
	}

	months := make([]Month, 0, len(keys))
	for _, key := range keys {
		cost := spent[key] + cutRate*sales[key] + taxes[key]
		months = append(months, Month{
			Month:    key,
			Revenue:  revenue[key],
			Expenses: cost,
			Profit:   revenue[key] - cost,
		})
	}
	return months
}
