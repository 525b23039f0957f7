// Package report assembles the full performance report of a franchise, and
// multi-franchise comparisons, from a record source.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/forecast"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/metrics"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/internal/pnl"
	"github.com/salemate/franchise-performance/internal/store"
	"github.com/salemate/franchise-performance/pkg/validation"
	"go.uber.org/zap"
)

// CountsMode tells how the deal counts of a report were tallied.
type CountsMode string

const (
	CountsOverview CountsMode = "overview"
	CountsWindowed CountsMode = "windowed"
)

// Report is everything known about one franchise.
type Report struct {
	Franchise        model.Franchise           `json:"franchise"`
	TimeFrame        comparison.TimeFrame      `json:"timeFrame,omitempty"`
	Window           *model.Window             `json:"window,omitempty"`
	GeneratedAt      time.Time                 `json:"generatedAt"`
	Analytics        *model.FranchiseAnalytics `json:"analytics"`
	Counts           CountsMode                `json:"counts"`
	Projection       forecast.Projection       `json:"projection"`
	Insights         []insight.Insight         `json:"insights"`
	ForecastInsights []insight.Insight         `json:"forecastInsights"`
	Statement        pnl.Statement             `json:"statement"`
	Trailing         []pnl.Month               `json:"trailing"`
	Warnings         []string                  `json:"warnings,omitempty"`
}

// Builder wires the engines together.
type Builder struct {
	logger     *zap.Logger
	rates      model.Rates
	source     store.Source
	aggregator *analytics.Aggregator
	forecast   *forecast.Engine
	insights   *insight.Engine
	comparison *comparison.Engine
	metrics    *metrics.Metrics
}

// NewBuilder creates a report builder. A nil metrics value disables
// instrumentation.
func NewBuilder(logger *zap.Logger, rates model.Rates, source store.Source, insights *insight.Engine, m *metrics.Metrics) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	aggregator := analytics.NewAggregator(logger)
	return &Builder{
		logger:     logger,
		rates:      rates,
		source:     source,
		aggregator: aggregator,
		forecast:   forecast.NewEngine(logger, rates),
		insights:   insights,
		comparison: comparison.NewEngine(logger, aggregator, 0),
		metrics:    m,
	}
}

// WithComparisonWorkers bounds how many franchises a comparison aggregates
// concurrently.
func (b *Builder) WithComparisonWorkers(workers int) *Builder {
	b.comparison = comparison.NewEngine(b.logger, b.aggregator, workers)
	return b
}

// Rates returns the rates every engine was built with.
func (b *Builder) Rates() model.Rates {
	return b.rates
}

// Source returns the record source.
func (b *Builder) Source() store.Source {
	return b.source
}

// Franchise builds the report of one franchise. An empty time frame selects
// the all-records overview; any other frame restricts the analytics to its
// window.
func (b *Builder) Franchise(ctx context.Context, id string, tf comparison.TimeFrame) (*Report, error) {
	return b.FranchiseAt(ctx, id, tf, time.Now())
}

// FranchiseAt is Franchise with a fixed clock.
func (b *Builder) FranchiseAt(ctx context.Context, id string, tf comparison.TimeFrame, now time.Time) (*Report, error) {
	start := time.Now()

	in, err := b.source.Load(ctx, id)
	if err != nil {
		b.metrics.ReportFailed("franchise", reason(err))
		return nil, fmt.Errorf("load franchise %q: %w", id, err)
	}

	rep := &Report{GeneratedAt: now, TimeFrame: tf, Counts: CountsOverview}
	if tf != "" {
		window, err := comparison.WindowFor(tf, now)
		if err != nil {
			b.metrics.ReportFailed("franchise", reason(err))
			return nil, err
		}
		rep.Window = &window
		rep.Counts = CountsWindowed
	}

	snapshot, err := b.aggregator.AggregateAt(in, rep.Window, now)
	if err != nil {
		b.metrics.ReportFailed("franchise", reason(err))
		return nil, fmt.Errorf("aggregate franchise %q: %w", id, err)
	}

	f := *in.Franchise
	rep.Franchise = f
	rep.Analytics = snapshot
	rep.Warnings = validation.ValidateRecords(f, in.Transactions, in.Expenses, in.CommissionCuts)
	rep.Projection = b.forecast.ProjectAt(snapshot, &f, in.Transactions, in.Expenses, now)
	rep.Statement = pnl.Build(snapshot, in.Transactions, rep.Window)
	rep.Trailing = pnl.Trailing(in.Transactions, in.Expenses, snapshot, now)
	rep.Insights = []insight.Insight{}
	rep.ForecastInsights = []insight.Insight{}
	if b.insights != nil {
		rep.Insights = b.insights.Generate(snapshot, &f)
		rep.ForecastInsights = b.insights.GenerateForecast(rep.Projection)
	}

	for _, ins := range rep.Insights {
		b.metrics.InsightEmitted(string(ins.Severity))
	}
	for _, ins := range rep.ForecastInsights {
		b.metrics.InsightEmitted(string(ins.Severity))
	}
	for _, w := range rep.Warnings {
		b.logger.Warn(w, zap.String("op", "report.FranchiseAt"), zap.String("franchise", f.ID))
	}

	elapsed := time.Since(start)
	b.metrics.ObserveReport("franchise", elapsed)
	b.logger.Info("built franchise report",
		zap.String("op", "report.FranchiseAt"),
		zap.String("franchise", f.ID),
		zap.String("counts", string(rep.Counts)),
		zap.Int("insights", len(rep.Insights)+len(rep.ForecastInsights)),
		zap.Duration("elapsed", elapsed),
	)
	return rep, nil
}

// Compare compares the named franchises over tf. Without IDs, every franchise
// with a positive headcount is compared.
func (b *Builder) Compare(ctx context.Context, ids []string, tf comparison.TimeFrame) (*comparison.Result, error) {
	return b.CompareAt(ctx, ids, tf, time.Now())
}

// CompareAt is Compare with a fixed clock. A franchise whose records cannot be
// loaded fails the comparison; one whose records are incomplete is kept as an
// entry with an error.
func (b *Builder) CompareAt(ctx context.Context, ids []string, tf comparison.TimeFrame, now time.Time) (*comparison.Result, error) {
	start := time.Now()

	if len(ids) == 0 {
		franchises, err := b.source.Franchises(ctx)
		if err != nil {
			b.metrics.ReportFailed("comparison", reason(err))
			return nil, fmt.Errorf("list franchises: %w", err)
		}
		for _, f := range comparison.Eligible(franchises) {
			ids = append(ids, f.ID)
		}
	}

	inputs := make([]analytics.Input, 0, len(ids))
	for _, id := range ids {
		in, err := b.source.Load(ctx, id)
		if err != nil {
			b.metrics.ReportFailed("comparison", reason(err))
			return nil, fmt.Errorf("load franchise %q: %w", id, err)
		}
		inputs = append(inputs, in)
	}

	result, err := b.comparison.CompareAt(ctx, inputs, tf, now)
	if err != nil {
		b.metrics.ReportFailed("comparison", reason(err))
		return nil, err
	}
	b.metrics.ObserveReport("comparison", time.Since(start))
	return result, nil
}

// reason classifies a build failure for the failure counter.
func reason(err error) string {
	switch {
	case errors.Is(err, store.ErrFranchiseNotFound):
		return "not_found"
	case errors.Is(err, analytics.ErrMissingData):
		return "missing_data"
	case errors.Is(err, comparison.ErrUnknownTimeFrame):
		return "bad_timeframe"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unknown"
}
