// Package model defines the franchise performance records consumed by the
// analytics engines and the snapshots they derive from them.
package model

import (
	"fmt"
	"time"
)

// Stage is the lifecycle state of a deal.
type Stage string

const (
	StageEOI         Stage = "eoi"
	StageReservation Stage = "reservation"
	StageContracted  Stage = "contracted"
	StageCancelled   Stage = "cancelled"
)

// IsPending reports whether the deal is still in the pipeline.
func (s Stage) IsPending() bool {
	return s == StageEOI || s == StageReservation
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageEOI, StageReservation, StageContracted, StageCancelled:
		return true
	}
	return false
}

// Role is a managerial role that takes a cut of every deal it is involved in.
type Role string

const (
	RoleSalesAgent    Role = "sales_agent"
	RoleTeamLeader    Role = "team_leader"
	RoleSalesDirector Role = "sales_director"
	RoleHeadOfSales   Role = "head_of_sales"
	RoleRoyalty       Role = "royalty"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleSalesAgent, RoleTeamLeader, RoleSalesDirector, RoleHeadOfSales, RoleRoyalty}

// ParseRole converts a raw role tag into a Role.
func ParseRole(raw string) (Role, error) {
	for _, role := range Roles {
		if string(role) == raw {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown commission role %q", raw)
}

// ExpenseType separates recurring fixed costs from variable spend.
type ExpenseType string

const (
	ExpenseFixed    ExpenseType = "fixed"
	ExpenseVariable ExpenseType = "variable"
)

// ExpenseCategory classifies an expense.
type ExpenseCategory string

const (
	CategoryRent       ExpenseCategory = "rent"
	CategorySalaries   ExpenseCategory = "salaries"
	CategoryMarketing  ExpenseCategory = "marketing"
	CategoryPhoneBills ExpenseCategory = "phone_bills"
	CategoryOther      ExpenseCategory = "other"
)

// Franchise is a brokerage branch tracked independently for P&L.
type Franchise struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Slug      string `json:"slug" yaml:"slug"`
	Headcount int    `json:"headcount" yaml:"headcount"`
	IsActive  bool   `json:"isActive" yaml:"isActive"`
}

// Transaction is a single deal. The commission fields are populated when the
// deal is created and may be nil for legacy rows.
type Transaction struct {
	ID                 string     `json:"id"`
	FranchiseID        string     `json:"franchiseId"`
	ProjectID          int64      `json:"projectId"`
	ProjectName        string     `json:"projectName,omitempty"`
	TransactionAmount  float64    `json:"transactionAmount"`
	Stage              Stage      `json:"stage"`
	StageUpdatedAt     time.Time  `json:"stageUpdatedAt"`
	ContractedAt       *time.Time `json:"contractedAt,omitempty"`
	ExpectedPayoutDate *time.Time `json:"expectedPayoutDate,omitempty"`
	CommissionAmount   *float64   `json:"commissionAmount,omitempty"`
	GrossCommission    *float64   `json:"grossCommission,omitempty"`
	TaxAmount          *float64   `json:"taxAmount,omitempty"`
	WithholdingTax     *float64   `json:"withholdingTax,omitempty"`
	IncomeTax          *float64   `json:"incomeTax,omitempty"`
	NetCommission      *float64   `json:"netCommission,omitempty"`
	ManagerialRoles    []Role     `json:"managerialRoles,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// IsContracted reports whether the deal reached the contracted stage.
func (t Transaction) IsContracted() bool {
	return t.Stage == StageContracted
}

// Commission returns the net commission of the deal, falling back to the
// legacy commission_amount field, or 0 when neither is set.
func (t Transaction) Commission() float64 {
	if t.NetCommission != nil {
		return *t.NetCommission
	}
	if t.CommissionAmount != nil {
		return *t.CommissionAmount
	}
	return 0
}

// Taxes returns the sum of the three stored tax components.
func (t Transaction) Taxes() float64 {
	return deref(t.TaxAmount) + deref(t.WithholdingTax) + deref(t.IncomeTax)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Expense is a single franchise cost entry.
type Expense struct {
	ID          string          `json:"id"`
	FranchiseID string          `json:"franchiseId"`
	Type        ExpenseType     `json:"expenseType"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
}

// CommissionCut is the per-million rate a role is paid on sales volume.
type CommissionCut struct {
	FranchiseID   string  `json:"franchiseId"`
	Role          Role    `json:"role"`
	CutPerMillion float64 `json:"cutPerMillion"`
}

// CutTable maps roles to their cut per million of sales volume.
type CutTable map[Role]float64

// NewCutTable indexes a franchise's commission cuts by role. A later entry for
// the same role replaces an earlier one, matching upsert semantics.
func NewCutTable(cuts []CommissionCut) CutTable {
	table := make(CutTable, len(cuts))
	for _, cut := range cuts {
		table[cut.Role] = cut.CutPerMillion
	}
	return table
}

// Total returns the sum of all per-million rates.
func (c CutTable) Total() float64 {
	total := 0.0
	for _, role := range Roles {
		total += c[role]
	}
	return total
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
