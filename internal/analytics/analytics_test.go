package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func contracted(id string, amount, commission float64, at time.Time, payout *time.Time) model.Transaction {
	return model.Transaction{
		ID:                 id,
		TransactionAmount:  amount,
		Stage:              model.StageContracted,
		StageUpdatedAt:     at,
		ContractedAt:       ptr(at),
		ExpectedPayoutDate: payout,
		NetCommission:      ptr(commission),
	}
}

func sampleInput() Input {
	return Input{
		Franchise: &model.Franchise{ID: "f1", Name: "Cairo East", Headcount: 4, IsActive: true},
		Transactions: []model.Transaction{
			contracted("t1", 2_000_000, 53_900, day(2025, 3, 10), ptr(day(2025, 8, 1))),
			contracted("t2", 1_000_000, 26_950, day(2025, 5, 20), ptr(day(2025, 5, 30))),
			{ID: "t3", TransactionAmount: 3_000_000, Stage: model.StageReservation, StageUpdatedAt: day(2025, 6, 1)},
			{ID: "t4", TransactionAmount: 1_500_000, Stage: model.StageCancelled, StageUpdatedAt: day(2025, 1, 5)},
			{ID: "t5", TransactionAmount: 500_000, Stage: model.StageEOI, StageUpdatedAt: day(2025, 6, 2)},
		},
		Expenses: []model.Expense{
			{Type: model.ExpenseFixed, Category: model.CategoryRent, Amount: 20_000, Date: day(2025, 3, 1)},
			{Type: model.ExpenseVariable, Category: model.CategoryMarketing, Amount: 8_000, Date: day(2025, 5, 5)},
			{Type: model.ExpenseFixed, Category: model.CategorySalaries, Amount: 12_000, Date: day(2025, 5, 28)},
		},
		CommissionCuts: []model.CommissionCut{
			{Role: model.RoleSalesAgent, CutPerMillion: 3_000},
			{Role: model.RoleRoyalty, CutPerMillion: 1_000},
		},
	}
}

func TestOverview(t *testing.T) {
	agg := NewAggregator(nil)

	result, err := agg.OverviewAt(sampleInput(), now)
	require.NoError(t, err)

	assert.InDelta(t, 80_850.0, result.GrossRevenue, 1e-6)
	assert.InDelta(t, 3_000_000.0, result.TotalSalesVolume, 1e-6)
	assert.InDelta(t, 40_000.0, result.TotalExpenses, 1e-6)
	assert.InDelta(t, 32_000.0, result.FixedExpenses, 1e-6)
	assert.InDelta(t, 8_000.0, result.VariableExpenses, 1e-6)
	assert.InDelta(t, 12_000.0, result.CommissionCutsTotal, 1e-6)
	assert.InDelta(t, 28_850.0, result.NetRevenue, 1e-6)
	assert.InDelta(t, 53_900.0, result.ExpectedRevenue, 1e-6)
	assert.InDelta(t, 10_000.0, result.CostPerAgent, 1e-6)
	assert.InDelta(t, 20_212.5, result.RevenuePerAgent, 1e-6)
	assert.Equal(t, 4, result.Headcount)
	assert.Equal(t, model.DealCounts{Contracted: 2, Pending: 2, Cancelled: 1}, result.Deals)
	assert.Equal(t, []model.PayoutBucket{
		{Month: "2025-05", Amount: 26_950, Count: 1},
		{Month: "2025-08", Amount: 53_900, Count: 1},
	}, result.ExpectedPayoutTimeline)
}

func TestWindowed(t *testing.T) {
	agg := NewAggregator(nil)
	w := model.Window{Start: day(2025, 5, 1), End: now}

	result, err := agg.WindowedAt(sampleInput(), w, now)
	require.NoError(t, err)

	assert.InDelta(t, 26_950.0, result.GrossRevenue, 1e-6)
	assert.InDelta(t, 1_000_000.0, result.TotalSalesVolume, 1e-6)
	assert.InDelta(t, 20_000.0, result.TotalExpenses, 1e-6)
	assert.InDelta(t, 4_000.0, result.CommissionCutsTotal, 1e-6)
	assert.InDelta(t, 2_950.0, result.NetRevenue, 1e-6)
	assert.Equal(t, 0.0, result.ExpectedRevenue)
	assert.Equal(t, model.DealCounts{Contracted: 1, Pending: 2, Cancelled: 0}, result.Deals)
}

func TestAggregateDispatch(t *testing.T) {
	agg := NewAggregator(nil)
	in := sampleInput()

	overview, err := agg.AggregateAt(in, nil, now)
	require.NoError(t, err)
	windowed, err := agg.AggregateAt(in, &model.Window{Start: day(2025, 5, 1), End: now}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.Deals.Contracted)
	assert.Equal(t, 1, windowed.Deals.Contracted)
}

func TestZeroHeadcount(t *testing.T) {
	in := sampleInput()
	in.Franchise.Headcount = 0

	result, err := NewAggregator(nil).OverviewAt(in, now)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.CostPerAgent)
	assert.Equal(t, 0.0, result.RevenuePerAgent)
}

func TestPayoutTimelineBucket(t *testing.T) {
	payout := day(2025, 9, 14)
	in := Input{
		Franchise: &model.Franchise{ID: "f1", Headcount: 2},
		Transactions: []model.Transaction{
			contracted("a", 1_000_000, 10_000, day(2025, 4, 1), ptr(payout)),
			contracted("b", 1_000_000, 20_000, day(2025, 4, 2), ptr(payout.AddDate(0, 0, 5))),
			contracted("c", 1_000_000, 5_000, day(2025, 4, 3), ptr(payout.AddDate(0, 0, -10))),
		},
		Expenses:       []model.Expense{},
		CommissionCuts: []model.CommissionCut{},
	}

	result, err := NewAggregator(nil).OverviewAt(in, now)
	require.NoError(t, err)

	assert.Equal(t, []model.PayoutBucket{{Month: "2025-09", Amount: 35_000, Count: 3}}, result.ExpectedPayoutTimeline)
}

func TestLegacyCommissionAlias(t *testing.T) {
	in := Input{
		Franchise: &model.Franchise{ID: "f1"},
		Transactions: []model.Transaction{
			{Stage: model.StageContracted, TransactionAmount: 1_000_000, CommissionAmount: ptr(25_000.0)},
		},
		Expenses:       []model.Expense{},
		CommissionCuts: []model.CommissionCut{},
	}

	result, err := NewAggregator(nil).OverviewAt(in, now)
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, result.GrossRevenue)
}

func TestContractedWithoutDate(t *testing.T) {
	in := Input{
		Franchise: &model.Franchise{ID: "f1"},
		Transactions: []model.Transaction{
			{Stage: model.StageContracted, TransactionAmount: 1_000_000, NetCommission: ptr(26_950.0)},
		},
		Expenses:       []model.Expense{},
		CommissionCuts: []model.CommissionCut{},
	}
	agg := NewAggregator(nil)

	overview, err := agg.OverviewAt(in, now)
	require.NoError(t, err)
	assert.Equal(t, 26_950.0, overview.GrossRevenue)
	assert.Equal(t, 1, overview.Deals.Contracted)

	windowed, err := agg.WindowedAt(in, model.Window{Start: time.Time{}, End: now}, now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, windowed.GrossRevenue)
	assert.Equal(t, 0, windowed.Deals.Contracted)
}

func TestMissingData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"No franchise", func(in *Input) { in.Franchise = nil }},
		{"No transactions", func(in *Input) { in.Transactions = nil }},
		{"No expenses", func(in *Input) { in.Expenses = nil }},
		{"No commission cuts", func(in *Input) { in.CommissionCuts = nil }},
	}

	agg := NewAggregator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)

			result, err := agg.OverviewAt(in, now)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrMissingData))

			result, err = agg.WindowedAt(in, model.Window{Start: day(2025, 1, 1), End: now}, now)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrMissingData))
		})
	}
}

func TestEmptyInputIsValid(t *testing.T) {
	in := Input{
		Franchise:      &model.Franchise{ID: "f1"},
		Transactions:   []model.Transaction{},
		Expenses:       []model.Expense{},
		CommissionCuts: []model.CommissionCut{},
	}

	result, err := NewAggregator(nil).OverviewAt(in, now)
	require.NoError(t, err)
	assert.Equal(t, model.FranchiseAnalytics{ExpectedPayoutTimeline: []model.PayoutBucket{}}, *result)
}

func TestWindowedCounts(t *testing.T) {
	w := model.Window{Start: day(2025, 2, 1), End: day(2025, 2, 28)}
	txs := []model.Transaction{
		contracted("in", 1, 1, day(2025, 2, 10), nil),
		contracted("out", 1, 1, day(2025, 3, 10), nil),
		{Stage: model.StageEOI, StageUpdatedAt: day(2025, 2, 3)},
		{Stage: model.StageReservation, StageUpdatedAt: day(2025, 1, 3)},
		{Stage: model.StageCancelled, StageUpdatedAt: day(2025, 2, 28)},
		{Stage: model.StageContracted},
	}

	assert.Equal(t, model.DealCounts{Contracted: 1, Pending: 1, Cancelled: 1}, WindowedCounts(txs, w))
	assert.Equal(t, model.DealCounts{Contracted: 3, Pending: 2, Cancelled: 1}, OverviewCounts(txs))
}

func TestVolumeWeightedCuts(t *testing.T) {
	cuts := model.CutTable{model.RoleSalesAgent: 6_000, model.RoleTeamLeader: 2_000}
	assert.InDelta(t, 40_000.0, VolumeWeightedCuts(cuts, 5_000_000), 1e-9)
	assert.Equal(t, 0.0, VolumeWeightedCuts(cuts, 0))
}

func TestWindowAdditivityProperty(t *testing.T) {
	faker := gofakeit.New(3)
	start := day(2024, 1, 1)
	end := day(2024, 12, 31)
	agg := NewAggregator(nil)

	for round := 0; round < 50; round++ {
		in := Input{
			Franchise:      &model.Franchise{ID: "f", Headcount: faker.IntRange(0, 20)},
			Transactions:   []model.Transaction{},
			Expenses:       []model.Expense{},
			CommissionCuts: []model.CommissionCut{{Role: model.RoleSalesAgent, CutPerMillion: 5_000}},
		}
		for i := 0; i < faker.IntRange(0, 30); i++ {
			at := faker.DateRange(start, end).UTC()
			in.Transactions = append(in.Transactions,
				contracted(faker.UUID(), faker.Float64Range(100_000, 10_000_000), faker.Float64Range(1_000, 200_000), at, nil))
		}
		for i := 0; i < faker.IntRange(0, 30); i++ {
			in.Expenses = append(in.Expenses, model.Expense{
				Type:   model.ExpenseVariable,
				Amount: faker.Float64Range(100, 50_000),
				Date:   faker.DateRange(start, end).UTC(),
			})
		}

		split := faker.DateRange(start, end).UTC()
		first, err := agg.WindowedAt(in, model.Window{Start: start, End: split}, end)
		require.NoError(t, err)
		second, err := agg.WindowedAt(in, model.Window{Start: split.Add(time.Nanosecond), End: end}, end)
		require.NoError(t, err)
		union, err := agg.WindowedAt(in, model.Window{Start: start, End: end}, end)
		require.NoError(t, err)

		assert.InDelta(t, union.GrossRevenue, first.GrossRevenue+second.GrossRevenue, 1e-6)
		assert.InDelta(t, union.TotalExpenses, first.TotalExpenses+second.TotalExpenses, 1e-6)
		assert.Equal(t, union.Deals.Contracted, first.Deals.Contracted+second.Deals.Contracted)
	}
}
