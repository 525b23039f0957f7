// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/internal/store"
)

// FindEntry finds a comparison entry by franchise ID.
// Returns a pointer to the entry if found, nil otherwise.
func FindEntry(entries []comparison.Entry, id string) *comparison.Entry {
	for i := range entries {
		if entries[i].Franchise.ID == id {
			return &entries[i]
		}
	}
	return nil
}

// FindInsight finds the first insight of the given kind.
func FindInsight(insights []insight.Insight, kind insight.Kind) *insight.Insight {
	for i := range insights {
		if insights[i].Kind == kind {
			return &insights[i]
		}
	}
	return nil
}

// Kinds lists the kinds of insights in order.
func Kinds(insights []insight.Insight) []insight.Kind {
	kinds := make([]insight.Kind, 0, len(insights))
	for _, ins := range insights {
		kinds = append(kinds, ins.Kind)
	}
	return kinds
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }

// Contracted builds a contracted deal with a stored net commission.
func Contracted(id string, amount, net float64, contractedAt, payout time.Time) model.Transaction {
	return model.Transaction{
		ID:                 id,
		TransactionAmount:  amount,
		Stage:              model.StageContracted,
		StageUpdatedAt:     contractedAt,
		ContractedAt:       Time(contractedAt),
		ExpectedPayoutDate: Time(payout),
		NetCommission:      Float(net),
	}
}

// Pending builds a deal in the given stage.
func Pending(id string, stage model.Stage, amount float64, updatedAt time.Time) model.Transaction {
	return model.Transaction{
		ID:                id,
		TransactionAmount: amount,
		Stage:             stage,
		StageUpdatedAt:    updatedAt,
	}
}

// MemorySource is an in-memory store.Source keyed by franchise ID, listing
// franchises in insertion order.
type MemorySource struct {
	order  []string
	inputs map[string]analytics.Input
}

var _ store.Source = (*MemorySource)(nil)

// NewMemorySource indexes the inputs by their franchise ID.
func NewMemorySource(inputs ...analytics.Input) *MemorySource {
	s := &MemorySource{inputs: make(map[string]analytics.Input, len(inputs))}
	for _, in := range inputs {
		s.Add(in)
	}
	return s
}

// Add stores or replaces a franchise's records.
func (s *MemorySource) Add(in analytics.Input) {
	id := in.Franchise.ID
	if _, ok := s.inputs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.inputs[id] = in
}

// Franchises implements store.Source.
func (s *MemorySource) Franchises(ctx context.Context) ([]model.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Franchise, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.inputs[id].Franchise)
	}
	return out, nil
}

// Load implements store.Source.
func (s *MemorySource) Load(ctx context.Context, franchiseID string) (analytics.Input, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Input{}, err
	}
	in, ok := s.inputs[franchiseID]
	if !ok {
		return analytics.Input{}, fmt.Errorf("%w: %q", store.ErrFranchiseNotFound, franchiseID)
	}
	return in, nil
}
