package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/model"
	fixtures "github.com/salemate/franchise-performance/pkg/testutil"
)

// syntheticSource generates franchises with a year of random deals and
// expenses ending at now.
func syntheticSource(seed uint64, franchises, dealsPerFranchise int) *fixtures.MemorySource {
	faker := gofakeit.New(seed)
	start := now.AddDate(-1, 0, 0)
	src := fixtures.NewMemorySource()

	stages := []model.Stage{model.StageEOI, model.StageReservation, model.StageCancelled}
	for i := 0; i < franchises; i++ {
		f := &model.Franchise{
			ID:        fmt.Sprintf("f-%03d", i),
			Name:      faker.City(),
			Headcount: faker.IntRange(1, 25),
			IsActive:  true,
		}
		in := analytics.Input{
			Franchise:      f,
			Transactions:   make([]model.Transaction, 0, dealsPerFranchise),
			Expenses:       []model.Expense{},
			CommissionCuts: []model.CommissionCut{{Role: model.RoleTeamLeader, CutPerMillion: faker.Float64Range(500, 3_000)}},
		}
		for d := 0; d < dealsPerFranchise; d++ {
			at := faker.DateRange(start, now).UTC()
			amount := faker.Float64Range(500_000, 15_000_000)
			if faker.Bool() {
				in.Transactions = append(in.Transactions,
					fixtures.Contracted(faker.UUID(), amount, amount*0.035*0.77, at, at.AddDate(0, 3, 0)))
				continue
			}
			in.Transactions = append(in.Transactions,
				fixtures.Pending(faker.UUID(), stages[faker.IntRange(0, len(stages)-1)], amount, at))
		}
		for month := 0; month < 12; month++ {
			in.Expenses = append(in.Expenses, model.Expense{
				ID:       faker.UUID(),
				Type:     model.ExpenseFixed,
				Category: model.CategoryRent,
				Amount:   faker.Float64Range(10_000, 60_000),
				Date:     start.AddDate(0, month, 0),
			})
		}
		src.Add(in)
	}
	return src
}

// TestPerformance checks that a report and a full comparison stay fast on a
// realistically sized portfolio.
func TestPerformance(t *testing.T) {
	src := syntheticSource(42, 40, 250)
	b := newBuilder(t, src)
	ctx := context.Background()

	start := time.Now()
	if _, err := b.FranchiseAt(ctx, "f-000", comparison.Yearly, now); err != nil {
		t.Fatalf("FranchiseAt() error = %v", err)
	}
	reportTime := time.Since(start)

	start = time.Now()
	result, err := b.CompareAt(ctx, nil, comparison.Quarterly, now)
	if err != nil {
		t.Fatalf("CompareAt() error = %v", err)
	}
	compareTime := time.Since(start)

	if len(result.Entries) != 40 {
		t.Errorf("expected 40 entries, got %d", len(result.Entries))
	}
	for _, m := range comparison.Metrics {
		if result.BestID(m) == "" {
			t.Errorf("no best performer for %s", m)
		}
	}

	t.Logf("Performance metrics:")
	t.Logf("  Franchise report: %v", reportTime)
	t.Logf("  Comparison of %d franchises: %v", len(result.Entries), compareTime)

	if reportTime > 2*time.Second {
		t.Errorf("franchise report took too long: %v", reportTime)
	}
	if compareTime > 5*time.Second {
		t.Errorf("comparison took too long: %v", compareTime)
	}
}

func BenchmarkFranchiseReport(b *testing.B) {
	builder := newBuilder(b, syntheticSource(7, 1, 500))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.FranchiseAt(ctx, "f-000", "", now); err != nil {
			b.Fatalf("FranchiseAt() error = %v", err)
		}
	}
}

func BenchmarkComparison(b *testing.B) {
	for _, workers := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			builder := newBuilder(b, syntheticSource(7, 50, 200)).WithComparisonWorkers(workers)
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := builder.CompareAt(ctx, nil, comparison.HalfYear, now); err != nil {
					b.Fatalf("CompareAt() error = %v", err)
				}
			}
		})
	}
}
