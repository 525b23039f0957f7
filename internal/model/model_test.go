package model

import (
	"math"
	"testing"
	"time"
)

func ptr(v float64) *float64 { return &v }

func TestTransactionCommission(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		expected float64
	}{
		{"Net commission wins", Transaction{NetCommission: ptr(134750), CommissionAmount: ptr(1)}, 134750},
		{"Falls back to legacy alias", Transaction{CommissionAmount: ptr(20000)}, 20000},
		{"Neither set", Transaction{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.tx.Commission(); result != tt.expected {
				t.Errorf("Commission() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestTransactionTaxes(t *testing.T) {
	tx := Transaction{TaxAmount: ptr(24500), WithholdingTax: ptr(8750)}
	if result := tx.Taxes(); result != 33250 {
		t.Errorf("Taxes() = %v, expected 33250", result)
	}
}

func TestStage(t *testing.T) {
	tests := []struct {
		stage   Stage
		pending bool
		valid   bool
	}{
		{StageEOI, true, true},
		{StageReservation, true, true},
		{StageContracted, false, true},
		{StageCancelled, false, true},
		{Stage("lost"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if tt.stage.IsPending() != tt.pending {
				t.Errorf("IsPending() = %v, expected %v", tt.stage.IsPending(), tt.pending)
			}
			if tt.stage.Valid() != tt.valid {
				t.Errorf("Valid() = %v, expected %v", tt.stage.Valid(), tt.valid)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("head_of_sales")
	if err != nil || role != RoleHeadOfSales {
		t.Errorf("ParseRole() = %v, %v", role, err)
	}
	if _, err := ParseRole("janitor"); err == nil {
		t.Errorf("expected error for unknown role")
	}
}

func TestNewCutTable(t *testing.T) {
	table := NewCutTable([]CommissionCut{
		{Role: RoleSalesAgent, CutPerMillion: 5000},
		{Role: RoleTeamLeader, CutPerMillion: 2000},
		{Role: RoleSalesAgent, CutPerMillion: 6000},
	})
	if table[RoleSalesAgent] != 6000 {
		t.Errorf("expected later cut to replace earlier, got %v", table[RoleSalesAgent])
	}
	if table.Total() != 8000 {
		t.Errorf("Total() = %v, expected 8000", table.Total())
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"Start is inclusive", w.Start, true},
		{"End is inclusive", w.End, true},
		{"Inside", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"Before", w.Start.Add(-time.Second), false},
		{"After", w.End.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := w.Contains(tt.at); result != tt.expected {
				t.Errorf("Contains() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestRates(t *testing.T) {
	rates := DefaultRates()
	if math.Abs(rates.CombinedTax()-0.23) > 1e-12 {
		t.Errorf("CombinedTax() = %v, expected 0.23", rates.CombinedTax())
	}
	if math.Abs(rates.CommissionPercent()-3.5) > 1e-12 {
		t.Errorf("CommissionPercent() = %v, expected 3.5", rates.CommissionPercent())
	}
}

func TestDealCountsTotal(t *testing.T) {
	if total := (DealCounts{Contracted: 3, Pending: 2, Cancelled: 1}).Total(); total != 6 {
		t.Errorf("Total() = %d, expected 6", total)
	}
}
