// Package comparison aggregates several franchises over a shared window and
// picks the best performer for each headline metric.
package comparison

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Metric names a compared figure.
type Metric string

const (
	MetricGrossRevenue    Metric = "gross_revenue"
	MetricNetRevenue      Metric = "net_revenue"
	MetricCostPerAgent    Metric = "cost_per_agent"
	MetricRevenuePerAgent Metric = "revenue_per_agent"
)

// Metrics lists the compared metrics in display order.
var Metrics = []Metric{MetricGrossRevenue, MetricNetRevenue, MetricCostPerAgent, MetricRevenuePerAgent}

// Entry is one franchise's snapshot within a comparison. Err is set when the
// franchise could not be aggregated; such entries carry no Analytics.
type Entry struct {
	Franchise       model.Franchise           `json:"franchise"`
	Analytics       *model.FranchiseAnalytics `json:"analytics,omitempty"`
	LoadedExpenses  float64                   `json:"loadedExpenses"`
	RevenuePerAgent float64                   `json:"revenuePerAgent"`
	Err             error                     `json:"-"`
	Error           string                    `json:"error,omitempty"`
}

// Valid reports whether the entry holds a snapshot.
func (e *Entry) Valid() bool {
	return e.Err == nil && e.Analytics != nil
}

// Value returns the entry's figure for m.
func (e *Entry) Value(m Metric) float64 {
	if e.Analytics == nil {
		return 0
	}
	switch m {
	case MetricGrossRevenue:
		return e.Analytics.GrossRevenue
	case MetricNetRevenue:
		return e.Analytics.NetRevenue
	case MetricCostPerAgent:
		return e.Analytics.CostPerAgent
	case MetricRevenuePerAgent:
		return e.RevenuePerAgent
	}
	return 0
}

// Result is a full comparison.
type Result struct {
	TimeFrame TimeFrame         `json:"timeFrame"`
	Window    model.Window      `json:"window"`
	Entries   []Entry           `json:"entries"`
	Best      map[Metric]*Entry `json:"-"`
	Leaders   map[Metric]string `json:"best"`
}

// BestID returns the franchise ID of the best performer for m, or "" when no
// entry is valid.
func (r *Result) BestID(m Metric) string {
	if best := r.Best[m]; best != nil {
		return best.Franchise.ID
	}
	return ""
}

// Engine runs comparisons.
type Engine struct {
	logger     *zap.Logger
	aggregator *analytics.Aggregator
	workers    int
}

// NewEngine creates a comparison engine aggregating up to workers
// franchises at a time.
func NewEngine(logger *zap.Logger, aggregator *analytics.Aggregator, workers int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = analytics.NewAggregator(logger)
	}
	if workers <= 0 {
		workers = constants.DefaultComparisonWorkers
	}
	return &Engine{logger: logger, aggregator: aggregator, workers: workers}
}

// Compare aggregates every input over tf's window ending now.
func (e *Engine) Compare(ctx context.Context, inputs []analytics.Input, tf TimeFrame) (*Result, error) {
	return e.CompareAt(ctx, inputs, tf, time.Now())
}

// CompareAt is Compare with a fixed clock. Entries keep the order of inputs.
func (e *Engine) CompareAt(ctx context.Context, inputs []analytics.Input, tf TimeFrame, now time.Time) (*Result, error) {
	window, err := WindowFor(tf, now)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = e.entry(in, window, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare franchises: %w", err)
	}

	result := &Result{
		TimeFrame: tf,
		Window:    window,
		Entries:   entries,
		Best:      BestPerformers(entries),
		Leaders:   make(map[Metric]string, len(Metrics)),
	}
	for m, best := range result.Best {
		result.Leaders[m] = best.Franchise.ID
	}
	e.logger.Info("compared franchises",
		zap.String("op", "comparison.CompareAt"),
		zap.String("timeFrame", string(tf)),
		zap.Int("franchises", len(entries)),
		zap.String("bestGrossRevenue", result.BestID(MetricGrossRevenue)),
	)
	return result, nil
}

func (e *Engine) entry(in analytics.Input, window model.Window, now time.Time) Entry {
	var entry Entry
	if in.Franchise != nil {
		entry.Franchise = *in.Franchise
	}
	snapshot, err := e.aggregator.WindowedAt(in, window, now)
	if err != nil {
		entry.Err = err
		entry.Error = err.Error()
		e.logger.Warn("excluding franchise from comparison",
			zap.String("op", "comparison.CompareAt"),
			zap.String("franchise", entry.Franchise.ID),
			zap.Error(err),
		)
		return entry
	}
	entry.Analytics = snapshot
	entry.LoadedExpenses = snapshot.TotalExpenses + snapshot.CommissionCutsTotal
	entry.RevenuePerAgent = mathutil.SafeDivideInt(snapshot.GrossRevenue, snapshot.Headcount)
	return entry
}

// BestPerformers picks, for each metric, the first valid entry with the
// highest value, or the lowest for cost per agent.
func BestPerformers(entries []Entry) map[Metric]*Entry {
	best := make(map[Metric]*Entry, len(Metrics))
	for i := range entries {
		current := &entries[i]
		if !current.Valid() {
			continue
		}
		for _, m := range Metrics {
			leader, ok := best[m]
			if !ok || better(m, current.Value(m), leader.Value(m)) {
				best[m] = current
			}
		}
	}
	return best
}

func better(m Metric, candidate, leader float64) bool {
	if m == MetricCostPerAgent {
		return candidate < leader
	}
	return candidate > leader
}

// Eligible returns the franchises that can take part in a comparison, those
// with at least one agent.
func Eligible(franchises []model.Franchise) []model.Franchise {
	eligible := make([]model.Franchise, 0, len(franchises))
	for _, f := range franchises {
		if f.Headcount > 0 {
			eligible = append(eligible, f)
		}
	}
	return eligible
}

// ParseIDs splits a comma-separated list of franchise IDs or slugs, trimming
// blanks and dropping empty entries. An empty list yields nil.
func ParseIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
