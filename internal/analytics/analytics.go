// Package analytics aggregates a franchise's deals, expenses and commission
// cuts into a FranchiseAnalytics snapshot, either over all time or over a
// time window.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/datetime"
	"github.com/salemate/franchise-performance/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrMissingData is returned when one of the record sets of an Input is absent.
var ErrMissingData = errors.New("missing franchise data")

// Input holds every record of a single franchise. A nil field means the
// record set was not loaded; an empty non-nil slice means it has no records.
type Input struct {
	Franchise      *model.Franchise
	Transactions   []model.Transaction
	Expenses       []model.Expense
	CommissionCuts []model.CommissionCut
}

// Validate reports which record sets are missing.
func (in Input) Validate() error {
	var missing []string
	if in.Franchise == nil {
		missing = append(missing, "franchise")
	}
	if in.Transactions == nil {
		missing = append(missing, "transactions")
	}
	if in.Expenses == nil {
		missing = append(missing, "expenses")
	}
	if in.CommissionCuts == nil {
		missing = append(missing, "commission cuts")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingData, missing)
	}
	return nil
}

// Aggregator builds FranchiseAnalytics snapshots.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate dispatches to Windowed when w is set and to Overview otherwise.
func (a *Aggregator) Aggregate(in Input, w *model.Window) (*model.FranchiseAnalytics, error) {
	return a.AggregateAt(in, w, time.Now())
}

// AggregateAt is Aggregate with a fixed clock.
func (a *Aggregator) AggregateAt(in Input, w *model.Window, now time.Time) (*model.FranchiseAnalytics, error) {
	if w == nil {
		return a.OverviewAt(in, now)
	}
	return a.WindowedAt(in, *w, now)
}

// Overview aggregates every record of the franchise.
func (a *Aggregator) Overview(in Input) (*model.FranchiseAnalytics, error) {
	return a.OverviewAt(in, time.Now())
}

// OverviewAt is Overview with a fixed clock. Deal counts cover every
// transaction regardless of stage dates.
func (a *Aggregator) OverviewAt(in Input, now time.Time) (*model.FranchiseAnalytics, error) {
	if err := in.Validate(); err != nil {
		a.logger.Warn("cannot aggregate franchise overview",
			zap.String("op", "analytics.OverviewAt"),
			zap.Error(err),
		)
		return nil, err
	}

	contracted := make([]model.Transaction, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		if tx.IsContracted() {
			contracted = append(contracted, tx)
		}
	}

	result := compute(*in.Franchise, contracted, in.Expenses, model.NewCutTable(in.CommissionCuts), now)
	result.Deals = OverviewCounts(in.Transactions)

	a.logger.Debug("aggregated franchise overview",
		zap.String("op", "analytics.OverviewAt"),
		zap.String("franchise", in.Franchise.ID),
		zap.Int("contracted", len(contracted)),
		zap.Int("expenses", len(in.Expenses)),
	)
	return result, nil
}

// Windowed aggregates the contracted deals and expenses that fall within w.
func (a *Aggregator) Windowed(in Input, w model.Window) (*model.FranchiseAnalytics, error) {
	return a.WindowedAt(in, w, time.Now())
}

// WindowedAt is Windowed with a fixed clock. Contracted deals without a
// contract date never fall within a window.
func (a *Aggregator) WindowedAt(in Input, w model.Window, now time.Time) (*model.FranchiseAnalytics, error) {
	if err := in.Validate(); err != nil {
		a.logger.Warn("cannot aggregate windowed franchise analytics",
			zap.String("op", "analytics.WindowedAt"),
			zap.Error(err),
		)
		return nil, err
	}

	contracted := make([]model.Transaction, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		if tx.IsContracted() && tx.ContractedAt != nil && w.Contains(*tx.ContractedAt) {
			contracted = append(contracted, tx)
		}
	}
	expenses := make([]model.Expense, 0, len(in.Expenses))
	for _, e := range in.Expenses {
		if w.Contains(e.Date) {
			expenses = append(expenses, e)
		}
	}

	result := compute(*in.Franchise, contracted, expenses, model.NewCutTable(in.CommissionCuts), now)
	result.Deals = WindowedCounts(in.Transactions, w)

	a.logger.Debug("aggregated windowed franchise analytics",
		zap.String("op", "analytics.WindowedAt"),
		zap.String("franchise", in.Franchise.ID),
		zap.Time("start", w.Start),
		zap.Time("end", w.End),
		zap.Int("contracted", len(contracted)),
		zap.Int("expenses", len(expenses)),
	)
	return result, nil
}

// OverviewCounts tallies every transaction by stage.
func OverviewCounts(txs []model.Transaction) model.DealCounts {
	var counts model.DealCounts
	for _, tx := range txs {
		switch {
		case tx.Stage == model.StageContracted:
			counts.Contracted++
		case tx.Stage.IsPending():
			counts.Pending++
		case tx.Stage == model.StageCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// WindowedCounts tallies the transactions that moved within w: contracted
// deals by contract date, pending and cancelled deals by their last stage
// change.
func WindowedCounts(txs []model.Transaction, w model.Window) model.DealCounts {
	var counts model.DealCounts
	for _, tx := range txs {
		switch {
		case tx.Stage == model.StageContracted:
			if tx.ContractedAt != nil && w.Contains(*tx.ContractedAt) {
				counts.Contracted++
			}
		case tx.Stage.IsPending():
			if w.Contains(tx.StageUpdatedAt) {
				counts.Pending++
			}
		case tx.Stage == model.StageCancelled:
			if w.Contains(tx.StageUpdatedAt) {
				counts.Cancelled++
			}
		}
	}
	return counts
}

// compute derives the monetary metrics from an already filtered record set.
func compute(f model.Franchise, contracted []model.Transaction, expenses []model.Expense, cuts model.CutTable, now time.Time) *model.FranchiseAnalytics {
	result := &model.FranchiseAnalytics{
		Headcount:              f.Headcount,
		ExpectedPayoutTimeline: []model.PayoutBucket{},
	}

	buckets := make(map[string]*model.PayoutBucket)
	for _, tx := range contracted {
		commission := tx.Commission()
		result.GrossRevenue += commission
		result.TotalSalesVolume += tx.TransactionAmount

		if tx.ExpectedPayoutDate == nil {
			continue
		}
		if tx.ExpectedPayoutDate.After(now) {
			result.ExpectedRevenue += commission
		}
		month := datetime.MonthKey(*tx.ExpectedPayoutDate)
		bucket, ok := buckets[month]
		if !ok {
			bucket = &model.PayoutBucket{Month: month}
			buckets[month] = bucket
		}
		bucket.Amount += commission
		bucket.Count++
	}

	for _, e := range expenses {
		result.TotalExpenses += e.Amount
		switch e.Type {
		case model.ExpenseFixed:
			result.FixedExpenses += e.Amount
		case model.ExpenseVariable:
			result.VariableExpenses += e.Amount
		}
	}

	result.CommissionCutsTotal = VolumeWeightedCuts(cuts, result.TotalSalesVolume)
	result.NetRevenue = result.GrossRevenue - result.TotalExpenses - result.CommissionCutsTotal
	result.CostPerAgent = mathutil.SafeDivideInt(result.TotalExpenses, f.Headcount)
	result.RevenuePerAgent = mathutil.SafeDivideInt(result.GrossRevenue, f.Headcount)

	for _, bucket := range buckets {
		result.ExpectedPayoutTimeline = append(result.ExpectedPayoutTimeline, *bucket)
	}
	sort.Slice(result.ExpectedPayoutTimeline, func(i, j int) bool {
		return result.ExpectedPayoutTimeline[i].Month < result.ExpectedPayoutTimeline[j].Month
	})
	return result
}

// VolumeWeightedCuts approximates the role cuts owed on a sales volume by
// applying every role's per-million rate to the whole volume.
func VolumeWeightedCuts(cuts model.CutTable, volume float64) float64 {
	return cuts.Total() * mathutil.PerMillion(volume)
}
