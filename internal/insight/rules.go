package insight

import (
	"github.com/salemate/franchise-performance/internal/forecast"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/mathutil"
	"go.uber.org/zap"
)

// Thresholds used by the insight rules.
const (
	excellentMargin = 50.0
	healthyMargin   = 30.0

	highCostPerAgent   = 50_000.0
	lowCostPerAgent    = 30_000.0
	targetCostPerAgent = 40_000.0

	highConversion   = 70.0
	lowConversion    = 40.0
	highCancellation = 20.0
	targetCancel     = 10.0

	highRevenuePerAgent   = 200_000.0
	lowRevenuePerAgent    = 100_000.0
	targetRevenuePerAgent = 150_000.0

	excessiveExpenseRatio = 70.0
	leanExpenseRatio      = 40.0

	minimumDeals = 5

	strongCashflowMonths = 10
	weakCashflowMonths   = 6
	slowBreakevenMonths  = 3.0
)

func money(name string, v float64) Param   { return Param{Name: name, Kind: ParamMoney, Value: v} }
func percent(name string, v float64) Param { return Param{Name: name, Kind: ParamPercent, Value: v} }
func count(name string, v int) Param       { return Param{Name: name, Kind: ParamCount, Value: float64(v)} }

// Generate evaluates the analytics rules in order: profitability, cost per
// agent, conversion and cancellation, revenue per agent, pipeline, expense
// ratio and deal volume.
func (e *Engine) Generate(a *model.FranchiseAnalytics, f *model.Franchise) []Insight {
	if a == nil {
		return []Insight{}
	}
	headcount := a.Headcount
	if f != nil {
		headcount = f.Headcount
	}
	avgCommission := mathutil.SafeDivide(a.GrossRevenue, float64(a.Deals.Contracted))

	var findings []finding
	findings = append(findings, profitability(a, avgCommission))
	if fd, ok := costPerAgent(a, headcount); ok {
		findings = append(findings, fd)
	}
	findings = append(findings, conversion(a.Deals)...)
	if fd, ok := revenuePerAgent(a, headcount, avgCommission); ok {
		findings = append(findings, fd)
	}
	if fd, ok := pipeline(a); ok {
		findings = append(findings, fd)
	}
	if fd, ok := expenseRatio(a); ok {
		findings = append(findings, fd)
	}
	if fd, ok := dealVolume(a.Deals); ok {
		findings = append(findings, fd)
	}

	insights := e.build(findings)
	e.logger.Debug("generated insights",
		zap.String("op", "insight.Generate"),
		zap.Int("count", len(insights)),
	)
	return insights
}

func profitability(a *model.FranchiseAnalytics, avgCommission float64) finding {
	margin := mathutil.CalculatePercentage(a.NetRevenue, a.GrossRevenue)
	switch {
	case margin > excellentMargin:
		return finding{kind: KindExcellentMargin, severity: SeveritySuccess, params: []Param{percent("margin", margin)}}
	case margin > healthyMargin:
		return finding{kind: KindHealthyMargin, severity: SeveritySuccess, params: []Param{
			percent("margin", margin),
			money("reinvest", mathutil.ApplyPercentage(a.NetRevenue, 10)),
			money("gapToExcellent", mathutil.ApplyPercentage(a.GrossRevenue, excellentMargin)-a.NetRevenue),
		}}
	case margin > 0:
		return finding{kind: KindLowMargin, severity: SeverityWarning, params: []Param{
			percent("margin", margin),
			money("variableReduction", mathutil.ApplyPercentage(a.VariableExpenses, 20)),
			money("fixedReduction", mathutil.ApplyPercentage(a.FixedExpenses, 10)),
			money("gapToHealthy", mathutil.ApplyPercentage(a.GrossRevenue, healthyMargin)-a.NetRevenue),
		}}
	default:
		loss := max(0, -a.NetRevenue)
		fd := finding{kind: KindOperatingLoss, severity: SeverityDanger, params: []Param{money("loss", loss)}}
		if avgCommission <= 0 {
			// Without a contracted deal there is no average commission to count in.
			fd.omit = []int{1}
			return fd
		}
		fd.params = append(fd.params, count("dealsNeeded", mathutil.CeilCount(loss/avgCommission)))
		return fd
	}
}

func costPerAgent(a *model.FranchiseAnalytics, headcount int) (finding, bool) {
	cost := a.CostPerAgent
	switch {
	case cost > highCostPerAgent:
		return finding{kind: KindHighCostPerAgent, severity: SeverityWarning, params: []Param{
			money("costPerAgent", cost),
			money("reduction", (cost-targetCostPerAgent)*float64(max(headcount, 0))),
			money("target", targetCostPerAgent),
		}}, true
	case cost < lowCostPerAgent:
		return finding{kind: KindEfficientAgentCost, severity: SeveritySuccess, params: []Param{
			money("costPerAgent", cost),
			money("headroom", (lowCostPerAgent-cost)*float64(max(headcount, 0))),
			money("ceiling", lowCostPerAgent),
		}}, true
	}
	return finding{}, false
}

func conversion(deals model.DealCounts) []finding {
	total := deals.Total()
	rate := mathutil.CalculatePercentage(float64(deals.Contracted), float64(total))
	cancellation := mathutil.CalculatePercentage(float64(deals.Cancelled), float64(total))

	var findings []finding
	switch {
	case rate > highConversion:
		findings = append(findings, finding{kind: KindExcellentConversion, severity: SeveritySuccess, params: []Param{
			percent("conversionRate", rate),
		}})
	case rate < lowConversion:
		toConvert := mathutil.ApplyPercentage(float64(total), lowConversion) - float64(deals.Contracted)
		findings = append(findings, finding{kind: KindLowConversion, severity: SeverityWarning, params: []Param{
			percent("conversionRate", rate),
			count("dealsToConvert", mathutil.CeilCount(toConvert)),
		}})
	}
	if cancellation > highCancellation {
		toRetain := float64(deals.Cancelled) - mathutil.ApplyPercentage(float64(total), targetCancel)
		findings = append(findings, finding{kind: KindHighCancellation, severity: SeverityDanger, params: []Param{
			percent("cancellationRate", cancellation),
			count("dealsToRetain", mathutil.CeilCount(toRetain)),
		}})
	}
	return findings
}

func revenuePerAgent(a *model.FranchiseAnalytics, headcount int, avgCommission float64) (finding, bool) {
	revenue := mathutil.SafeDivideInt(a.GrossRevenue, headcount)
	switch {
	case revenue > highRevenuePerAgent:
		return finding{kind: KindHighRevenuePerAgent, severity: SeveritySuccess, params: []Param{
			money("revenuePerAgent", revenue),
		}}, true
	case revenue < lowRevenuePerAgent && headcount > 0:
		gap := targetRevenuePerAgent - revenue
		fd := finding{kind: KindLowRevenuePerAgent, severity: SeverityWarning, params: []Param{
			money("revenuePerAgent", revenue),
			money("gap", gap),
			money("target", targetRevenuePerAgent),
		}}
		if avgCommission <= 0 {
			fd.omit = []int{2}
			return fd, true
		}
		fd.params = append(fd.params, count("dealsNeeded", mathutil.CeilCount(float64(headcount)*gap/avgCommission)))
		return fd, true
	}
	return finding{}, false
}

func pipeline(a *model.FranchiseAnalytics) (finding, bool) {
	switch {
	case a.ExpectedRevenue > 2*a.NetRevenue:
		return finding{kind: KindStrongPipeline, severity: SeveritySuccess, params: []Param{
			money("expectedRevenue", a.ExpectedRevenue),
		}}, true
	case a.ExpectedRevenue < a.TotalExpenses:
		return finding{kind: KindWeakPipeline, severity: SeverityWarning, params: []Param{
			money("expectedRevenue", a.ExpectedRevenue),
			money("gap", a.TotalExpenses-a.ExpectedRevenue),
		}}, true
	}
	return finding{}, false
}

func expenseRatio(a *model.FranchiseAnalytics) (finding, bool) {
	ratio := mathutil.CalculatePercentage(a.TotalExpenses, a.GrossRevenue)
	switch {
	case ratio > excessiveExpenseRatio:
		return finding{kind: KindExcessiveExpenses, severity: SeverityDanger, params: []Param{
			percent("expenseRatio", ratio),
			money("cut", a.TotalExpenses-mathutil.ApplyPercentage(a.GrossRevenue, excessiveExpenseRatio)),
		}}, true
	case ratio < leanExpenseRatio:
		return finding{kind: KindLeanOperations, severity: SeveritySuccess, params: []Param{
			percent("expenseRatio", ratio),
		}}, true
	}
	return finding{}, false
}

func dealVolume(deals model.DealCounts) (finding, bool) {
	total := deals.Total()
	if total >= minimumDeals {
		return finding{}, false
	}
	return finding{kind: KindBuildDealVolume, severity: SeverityInfo, params: []Param{
		count("totalDeals", total),
		count("dealsToAdd", minimumDeals-total),
	}}, true
}

// GenerateForecast evaluates the cash-flow and break-even rules of a
// projection: negative cash flow, break-even gap, cash-flow health and sales
// velocity.
func (e *Engine) GenerateForecast(p forecast.Projection) []Insight {
	var findings []finding
	b := p.Breakeven

	for _, month := range p.Cashflow {
		if month.IsNegative || month.Net < 0 {
			findings = append(findings, finding{kind: KindNegativeCashflow, severity: SeverityDanger, params: []Param{
				{Name: "month", Kind: ParamMonth, Text: month.Month},
				money("breakevenVolume", b.BreakevenVolume),
			}})
			break
		}
	}

	if b.BreakevenVolume > b.CurrentMonthlySales {
		findings = append(findings, finding{kind: KindBelowBreakeven, severity: SeverityWarning, params: []Param{
			money("gap", b.BreakevenVolume-b.CurrentMonthlySales),
			money("current", b.CurrentMonthlySales),
			money("target", b.BreakevenVolume),
		}})
	} else {
		findings = append(findings, finding{kind: KindAboveBreakeven, severity: SeveritySuccess, params: []Param{
			money("surplus", b.CurrentMonthlySales-b.BreakevenVolume),
		}})
	}

	positive := 0
	for _, month := range p.Cashflow {
		if month.Net > 0 {
			positive++
		}
	}
	switch {
	case positive >= strongCashflowMonths:
		findings = append(findings, finding{kind: KindStrongCashflow, severity: SeveritySuccess, params: []Param{count("positiveMonths", positive)}})
	case positive < weakCashflowMonths:
		findings = append(findings, finding{kind: KindWeakCashflow, severity: SeverityDanger, params: []Param{count("positiveMonths", positive)}})
	}

	if b.MonthsToBreakeven > slowBreakevenMonths {
		findings = append(findings, finding{kind: KindAccelerateSales, severity: SeverityWarning, params: []Param{
			{Name: "monthsToBreakeven", Kind: ParamDecimal, Value: b.MonthsToBreakeven},
		}})
	}

	insights := e.build(findings)
	e.logger.Debug("generated forecast insights",
		zap.String("op", "insight.GenerateForecast"),
		zap.Int("count", len(insights)),
	)
	return insights
}
