package model

// DealCounts tallies deals by lifecycle bucket.
type DealCounts struct {
	Contracted int `json:"contracted"`
	Pending    int `json:"pending"`
	Cancelled  int `json:"cancelled"`
}

// Total returns the number of deals across all buckets.
func (c DealCounts) Total() int {
	return c.Contracted + c.Pending + c.Cancelled
}

// PayoutBucket is the commission expected to be paid out in a calendar month.
type PayoutBucket struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// FranchiseAnalytics is the financial snapshot of a franchise over a window
// or over all time.
type FranchiseAnalytics struct {
	GrossRevenue           float64        `json:"grossRevenue"`
	NetRevenue             float64        `json:"netRevenue"`
	ExpectedRevenue        float64        `json:"expectedRevenue"`
	TotalExpenses          float64        `json:"totalExpenses"`
	FixedExpenses          float64        `json:"fixedExpenses"`
	VariableExpenses       float64        `json:"variableExpenses"`
	CommissionCutsTotal    float64        `json:"commissionCutsTotal"`
	TotalSalesVolume       float64        `json:"totalSalesVolume"`
	Deals                  DealCounts     `json:"deals"`
	CostPerAgent           float64        `json:"costPerAgent"`
	RevenuePerAgent        float64        `json:"revenuePerAgent"`
	Headcount              int            `json:"headcount"`
	ExpectedPayoutTimeline []PayoutBucket `json:"expectedPayoutTimeline"`
}

// CashflowMonth is one month of a cash-flow projection.
type CashflowMonth struct {
	Month      string  `json:"month"`
	Inflow     float64 `json:"inflow"`
	Expenses   float64 `json:"expenses"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
	IsNegative bool    `json:"isNegative"`
}

// BreakevenAnalysis compares the sales volume needed to cover monthly costs
// with the franchise's current sales velocity.
type BreakevenAnalysis struct {
	MonthlyExpenses             float64 `json:"monthlyExpenses"`
	CommissionRate              float64 `json:"commissionRate"`
	EffectiveRate               float64 `json:"effectiveRate"`
	BreakevenVolume             float64 `json:"breakevenVolume"`
	BreakevenVolumePerAgent     float64 `json:"breakevenVolumePerAgent"`
	CurrentMonthlySales         float64 `json:"currentMonthlySales"`
	CurrentMonthlySalesPerAgent float64 `json:"currentMonthlySalesPerAgent"`
	MonthsToBreakeven           float64 `json:"monthsToBreakeven"`
	IsProfitable                bool    `json:"isProfitable"`
	// Degenerate is set when role cuts consume the whole commission rate, so
	// no sales volume can cover expenses.
	Degenerate bool `json:"degenerate"`
}
