// Package forecast projects a franchise's finances forward: the monthly
// expense baseline, the sales volume needed to break even, and a 12 month
// cash-flow projection.
package forecast

import (
	"time"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/datetime"
	"github.com/salemate/franchise-performance/pkg/mathutil"
	"go.uber.org/zap"
)

// Projection bundles the forecast outputs for one franchise.
type Projection struct {
	MonthlyExpenses float64                 `json:"monthlyExpenses"`
	Breakeven       model.BreakevenAnalysis `json:"breakeven"`
	Cashflow        []model.CashflowMonth   `json:"cashflow"`
}

// Engine computes forecasts for a fixed set of rates.
type Engine struct {
	logger *zap.Logger
	rates  model.Rates
}

// NewEngine creates a forecast engine.
func NewEngine(logger *zap.Logger, rates model.Rates) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, rates: rates}
}

// MonthlyExpenseBaseline returns the mean of the per-month expense totals.
// Without expense history it falls back to the snapshot's fixed expenses,
// then to its total expenses.
func (e *Engine) MonthlyExpenseBaseline(expenses []model.Expense, fallback *model.FranchiseAnalytics) float64 {
	if len(expenses) == 0 {
		if fallback == nil {
			return 0
		}
		if fallback.FixedExpenses != 0 {
			return fallback.FixedExpenses
		}
		return fallback.TotalExpenses
	}

	totals := make(map[string]float64)
	for _, expense := range expenses {
		totals[datetime.MonthKey(expense.Date)] += expense.Amount
	}
	sum := 0.0
	for _, total := range totals {
		sum += total
	}
	baseline := sum / float64(len(totals))

	e.logger.Debug("computed monthly expense baseline",
		zap.String("op", "forecast.MonthlyExpenseBaseline"),
		zap.Int("months", len(totals)),
		zap.Float64("baseline", baseline),
	)
	return baseline
}

// Breakeven compares the sales volume needed to cover monthlyExpenses with
// the franchise's recent sales velocity.
func (e *Engine) Breakeven(a *model.FranchiseAnalytics, f *model.Franchise, txs []model.Transaction, monthlyExpenses float64) model.BreakevenAnalysis {
	return e.BreakevenAt(a, f, txs, monthlyExpenses, time.Now())
}

// BreakevenAt is Breakeven with a fixed clock.
func (e *Engine) BreakevenAt(a *model.FranchiseAnalytics, f *model.Franchise, txs []model.Transaction, monthlyExpenses float64, now time.Time) model.BreakevenAnalysis {
	var cutsTotal, volume, netRevenue float64
	if a != nil {
		cutsTotal = a.CommissionCutsTotal
		volume = a.TotalSalesVolume
		netRevenue = a.NetRevenue
	}
	headcount := 0
	if f != nil {
		headcount = f.Headcount
	}

	cutsPerMillion := 0.0
	if cutsTotal > 0 && volume > 0 {
		cutsPerMillion = cutsTotal / mathutil.PerMillion(volume)
	}
	commissionRate := e.rates.CommissionPercent()
	effectiveRate := commissionRate - cutsPerMillion/10_000

	result := model.BreakevenAnalysis{
		MonthlyExpenses: monthlyExpenses,
		CommissionRate:  commissionRate,
		EffectiveRate:   effectiveRate,
		IsProfitable:    netRevenue > 0,
	}
	if effectiveRate > 0 {
		result.BreakevenVolume = monthlyExpenses / effectiveRate * constants.PercentageMultiplier
	} else {
		result.Degenerate = true
		e.logger.Warn("role cuts consume the whole commission rate",
			zap.String("op", "forecast.BreakevenAt"),
			zap.Float64("cutsPerMillion", cutsPerMillion),
			zap.Float64("commissionRate", commissionRate),
		)
	}

	result.CurrentMonthlySales = CurrentMonthlySales(txs, now)
	if result.BreakevenVolume > 0 && result.CurrentMonthlySales > 0 {
		result.MonthsToBreakeven = max(0, result.BreakevenVolume/result.CurrentMonthlySales)
	}
	result.BreakevenVolumePerAgent = mathutil.SafeDivideInt(result.BreakevenVolume, headcount)
	result.CurrentMonthlySalesPerAgent = mathutil.SafeDivideInt(result.CurrentMonthlySales, headcount)
	return result
}

// CurrentMonthlySales sums the contracted volume of the trailing three
// 30-day months and spreads it over three months, whether or not each month
// had deals.
func CurrentMonthlySales(txs []model.Transaction, now time.Time) float64 {
	total := 0.0
	for _, tx := range txs {
		if !tx.IsContracted() || tx.ContractedAt == nil {
			continue
		}
		monthsAgo := datetime.ApproxMonthsBetween(*tx.ContractedAt, now)
		if monthsAgo >= 0 && monthsAgo <= constants.VelocityMonths {
			total += tx.TransactionAmount
		}
	}
	return total / constants.VelocityMonths
}

// Cashflow projects 12 months of inflows against a flat expense baseline,
// starting with the current month.
func (e *Engine) Cashflow(txs []model.Transaction, baseline, startingCumulative float64) []model.CashflowMonth {
	return e.CashflowAt(txs, baseline, startingCumulative, time.Now())
}

// CashflowAt is Cashflow with a fixed clock.
func (e *Engine) CashflowAt(txs []model.Transaction, baseline, startingCumulative float64, now time.Time) []model.CashflowMonth {
	inflows := make(map[string]float64)
	for _, tx := range txs {
		if !tx.IsContracted() || tx.ExpectedPayoutDate == nil {
			continue
		}
		inflows[datetime.MonthKey(*tx.ExpectedPayoutDate)] += tx.Commission()
	}

	months := make([]model.CashflowMonth, 0, constants.ForecastMonths)
	cumulative := startingCumulative
	for _, key := range datetime.MonthKeys(now, constants.ForecastMonths) {
		inflow := inflows[key]
		net := inflow - baseline
		cumulative += net
		months = append(months, model.CashflowMonth{
			Month:      key,
			Inflow:     inflow,
			Expenses:   baseline,
			Net:        net,
			Cumulative: cumulative,
			IsNegative: cumulative < 0,
		})
	}

	e.logger.Debug("projected cash flow",
		zap.String("op", "forecast.CashflowAt"),
		zap.String("from", months[0].Month),
		zap.Float64("closing", cumulative),
	)
	return months
}

// Project runs the baseline, break-even and cash-flow forecasts for one
// franchise. The projection starts from the snapshot's net revenue.
func (e *Engine) Project(a *model.FranchiseAnalytics, f *model.Franchise, txs []model.Transaction, expenses []model.Expense) Projection {
	return e.ProjectAt(a, f, txs, expenses, time.Now())
}

// ProjectAt is Project with a fixed clock.
func (e *Engine) ProjectAt(a *model.FranchiseAnalytics, f *model.Franchise, txs []model.Transaction, expenses []model.Expense, now time.Time) Projection {
	baseline := e.MonthlyExpenseBaseline(expenses, a)
	starting := 0.0
	if a != nil {
		starting = a.NetRevenue
	}
	return Projection{
		MonthlyExpenses: baseline,
		Breakeven:       e.BreakevenAt(a, f, txs, baseline, now),
		Cashflow:        e.CashflowAt(txs, baseline, starting, now),
	}
}
