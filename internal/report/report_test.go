package report

import (
	"context"
	"testing"
	"time"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/metrics"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/internal/store"
	"github.com/salemate/franchise-performance/pkg/format"
	fixtures "github.com/salemate/franchise-performance/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func cairoWest() analytics.Input {
	return analytics.Input{
		Franchise: &model.Franchise{ID: "cairo-west", Name: "Cairo West", Headcount: 4, IsActive: true},
		Transactions: []model.Transaction{
			fixtures.Contracted("t-1", 3_000_000, 80_000, now.AddDate(0, 0, -10), now.AddDate(0, 2, 0)),
			fixtures.Contracted("t-2", 2_000_000, 50_000, now.AddDate(0, -4, 0), now.AddDate(0, -1, 0)),
			fixtures.Pending("t-3", model.StageEOI, 1_500_000, now.AddDate(0, 0, -3)),
			fixtures.Pending("t-4", model.StageCancelled, 900_000, now.AddDate(0, -5, 0)),
		},
		Expenses: []model.Expense{
			{ID: "rent", Type: model.ExpenseFixed, Category: model.CategoryRent, Amount: 20_000, Date: now.AddDate(0, 0, -5)},
			{ID: "ads", Type: model.ExpenseVariable, Category: model.CategoryMarketing, Amount: 8_000, Date: now.AddDate(0, -3, 0)},
		},
		CommissionCuts: []model.CommissionCut{
			{Role: model.RoleTeamLeader, CutPerMillion: 2_000},
		},
	}
}

// counterSum adds up every series of a counter whose labels include want.
func counterSum(t *testing.T, m *metrics.Metrics, name string, want map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue series
				}
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func newBuilder(t *testing.T, src store.Source, m *metrics.Metrics) *Builder {
	t.Helper()
	engine := insight.NewEngine(nil, format.NewLocaleFormatter("EGP"), language.English, language.Arabic)
	return NewBuilder(nil, model.DefaultRates(), src, engine, m)
}

func TestFranchiseOverview(t *testing.T) {
	m := metrics.New()
	b := newBuilder(t, fixtures.NewMemorySource(cairoWest()), m)

	rep, err := b.FranchiseAt(context.Background(), "cairo-west", "", now)
	require.NoError(t, err)

	assert.Equal(t, CountsOverview, rep.Counts)
	assert.Nil(t, rep.Window)
	assert.Equal(t, "Cairo West", rep.Franchise.Name)
	assert.Equal(t, model.DealCounts{Contracted: 2, Pending: 1, Cancelled: 1}, rep.Analytics.Deals)
	assert.InDelta(t, 130_000, rep.Analytics.GrossRevenue, 0.01)
	assert.Len(t, rep.Trailing, 12)
	assert.Len(t, rep.Projection.Cashflow, 12)
	assert.NotEmpty(t, rep.Statement.Rows)
	assert.InDelta(t, rep.Analytics.NetRevenue, rep.Statement.NetProfit, 0.01)
	assert.NotEmpty(t, rep.Insights)
	assert.NotNil(t, rep.ForecastInsights)

	emitted := counterSum(t, m, "franchise_performance_insights_emitted_total", nil)
	assert.Equal(t, float64(len(rep.Insights)+len(rep.ForecastInsights)), emitted)
}

func TestFranchiseWindowed(t *testing.T) {
	in := cairoWest()
	in.Transactions[0].TaxAmount = fixtures.Float(11_200)
	in.Transactions[1].TaxAmount = fixtures.Float(7_000)
	b := newBuilder(t, fixtures.NewMemorySource(in), nil)

	rep, err := b.FranchiseAt(context.Background(), "cairo-west", comparison.Monthly, now)
	require.NoError(t, err)

	assert.Equal(t, CountsWindowed, rep.Counts)
	require.NotNil(t, rep.Window)
	assert.Equal(t, now.AddDate(0, -1, 0), rep.Window.Start)
	assert.Equal(t, model.DealCounts{Contracted: 1, Pending: 1, Cancelled: 0}, rep.Analytics.Deals)
	assert.InDelta(t, 80_000, rep.Analytics.GrossRevenue, 0.01)
	assert.InDelta(t, 20_000, rep.Analytics.TotalExpenses, 0.01)
	assert.InDelta(t, 11_200, rep.Statement.TotalTaxes, 0.01)

	overview, err := b.FranchiseAt(context.Background(), "cairo-west", "", now)
	require.NoError(t, err)
	assert.InDelta(t, 18_200, overview.Statement.TotalTaxes, 0.01)
}

func TestFranchiseWindowedWithoutActivity(t *testing.T) {
	in := cairoWest()
	old := fixtures.Contracted("t-old", 5_000_000, 134_750, now.AddDate(-1, 0, 0), now.AddDate(-1, 2, 0))
	old.TaxAmount = fixtures.Float(24_500)
	old.WithholdingTax = fixtures.Float(8_750)
	old.IncomeTax = fixtures.Float(7_000)
	in.Transactions = []model.Transaction{old}
	in.Expenses = []model.Expense{}
	b := newBuilder(t, fixtures.NewMemorySource(in), nil)

	rep, err := b.FranchiseAt(context.Background(), "cairo-west", comparison.Monthly, now)
	require.NoError(t, err)

	assert.Zero(t, rep.Analytics.GrossRevenue)
	assert.Zero(t, rep.Statement.TotalTaxes)
	assert.Zero(t, rep.Statement.NetProfit)
}

func TestFranchiseWarnings(t *testing.T) {
	in := cairoWest()
	in.Transactions = append(in.Transactions, model.Transaction{
		ID: "legacy", TransactionAmount: 1_000_000, Stage: model.StageContracted, StageUpdatedAt: now,
	})
	b := newBuilder(t, fixtures.NewMemorySource(in), nil)

	rep, err := b.FranchiseAt(context.Background(), "cairo-west", "", now)
	require.NoError(t, err)
	assert.Len(t, rep.Warnings, 3)
}

func TestFranchiseErrors(t *testing.T) {
	missing := cairoWest()
	missing.Franchise = &model.Franchise{ID: "sparse", Name: "Sparse", Headcount: 1}
	missing.Expenses = nil

	m := metrics.New()
	b := newBuilder(t, fixtures.NewMemorySource(cairoWest(), missing), m)

	_, err := b.FranchiseAt(context.Background(), "ghost", "", now)
	assert.ErrorIs(t, err, store.ErrFranchiseNotFound)

	_, err = b.FranchiseAt(context.Background(), "sparse", "", now)
	assert.ErrorIs(t, err, analytics.ErrMissingData)

	_, err = b.FranchiseAt(context.Background(), "cairo-west", "fortnightly", now)
	assert.ErrorIs(t, err, comparison.ErrUnknownTimeFrame)

	for _, reason := range []string{"not_found", "missing_data", "bad_timeframe"} {
		labels := map[string]string{"kind": "franchise", "reason": reason}
		assert.Equal(t, 1.0, counterSum(t, m, "franchise_performance_report_failures_total", labels), reason)
	}
}

func TestCompareEligibleFranchises(t *testing.T) {
	empty := analytics.Input{
		Franchise:      &model.Franchise{ID: "no-agents", Name: "No Agents", IsActive: true},
		Transactions:   []model.Transaction{},
		Expenses:       []model.Expense{},
		CommissionCuts: []model.CommissionCut{},
	}
	other := cairoWest()
	other.Franchise = &model.Franchise{ID: "heliopolis", Name: "Heliopolis", Headcount: 2, IsActive: true}
	other.Transactions = other.Transactions[:1]

	b := newBuilder(t, fixtures.NewMemorySource(cairoWest(), empty, other), nil).WithComparisonWorkers(2)

	result, err := b.CompareAt(context.Background(), nil, comparison.Quarterly, now)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Nil(t, fixtures.FindEntry(result.Entries, "no-agents"))
	assert.Equal(t, "heliopolis", result.BestID(comparison.MetricRevenuePerAgent))
	assert.Equal(t, "cairo-west", result.BestID(comparison.MetricCostPerAgent))
}

func TestCompareExplicitIDs(t *testing.T) {
	b := newBuilder(t, fixtures.NewMemorySource(cairoWest()), nil)

	result, err := b.CompareAt(context.Background(), []string{"cairo-west"}, comparison.AllTime, now)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "cairo-west", result.BestID(comparison.MetricGrossRevenue))

	_, err = b.CompareAt(context.Background(), []string{"cairo-west", "ghost"}, comparison.AllTime, now)
	assert.ErrorIs(t, err, store.ErrFranchiseNotFound)
}
