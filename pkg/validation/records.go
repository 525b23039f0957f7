package validation

import (
	"fmt"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/mathutil"
)

// ValidateTransaction checks a single deal for inconsistencies that silently
// change the analytics, such as a contracted deal without a contract date.
func ValidateTransaction(tx model.Transaction) []string {
	var warnings []string

	if tx.TransactionAmount <= 0 {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' has non-positive amount %.2f",
			tx.ID, tx.TransactionAmount))
	}

	if !tx.Stage.Valid() {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' has unknown stage '%s'", tx.ID, tx.Stage))
	}

	if !tx.IsContracted() {
		return warnings
	}

	if tx.ContractedAt == nil {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' is contracted but has no contract date - excluded from windowed analytics",
			tx.ID))
	}

	if tx.NetCommission == nil && tx.CommissionAmount == nil {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' is contracted but has no commission - counted as zero revenue",
			tx.ID))
	}

	if tx.ExpectedPayoutDate == nil {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' has no expected payout date - missing from the payout timeline",
			tx.ID))
	} else if tx.ContractedAt != nil && tx.ExpectedPayoutDate.Before(*tx.ContractedAt) {
		warnings = append(warnings, fmt.Sprintf("Transaction '%s' expects payout before it was contracted (%s < %s)",
			tx.ID, tx.ExpectedPayoutDate.Format(constants.DateLayout), tx.ContractedAt.Format(constants.DateLayout)))
	}

	if tx.GrossCommission != nil && tx.NetCommission != nil && tx.TaxAmount != nil &&
		tx.WithholdingTax != nil && tx.IncomeTax != nil {
		expected := *tx.GrossCommission - tx.Taxes()
		if !mathutil.WithinTolerance(expected, *tx.NetCommission, constants.CurrencyTolerance) {
			warnings = append(warnings, fmt.Sprintf("Transaction '%s' net commission %.2f does not equal gross minus taxes %.2f",
				tx.ID, *tx.NetCommission, expected))
		}
	}

	return warnings
}

// ValidateExpense checks a single expense entry.
func ValidateExpense(e model.Expense) []string {
	var warnings []string

	if e.Amount < 0 {
		warnings = append(warnings, fmt.Sprintf("Expense '%s' has negative amount %.2f", e.ID, e.Amount))
	}

	if e.Date.IsZero() {
		warnings = append(warnings, fmt.Sprintf("Expense '%s' has no date - excluded from windowed and monthly views", e.ID))
	}

	if e.Type != model.ExpenseFixed && e.Type != model.ExpenseVariable {
		warnings = append(warnings, fmt.Sprintf("Expense '%s' has unknown type '%s'", e.ID, e.Type))
	}

	return warnings
}

// RecordValidator validates every record of a franchise.
type RecordValidator struct {
	Franchise      model.Franchise
	Transactions   []model.Transaction
	Expenses       []model.Expense
	CommissionCuts []model.CommissionCut
}

// ValidateAll validates the franchise's records and returns warnings. Records
// are never rejected; the analytics compute over whatever they are given.
func (rv *RecordValidator) ValidateAll() []string {
	var warnings []string

	if rv.Franchise.Headcount <= 0 {
		warnings = append(warnings, fmt.Sprintf("Franchise '%s' has no headcount - per-agent metrics resolve to 0",
			rv.Franchise.Name))
	}

	for _, tx := range rv.Transactions {
		if tx.FranchiseID != "" && tx.FranchiseID != rv.Franchise.ID {
			warnings = append(warnings, fmt.Sprintf("Transaction '%s' belongs to franchise '%s'", tx.ID, tx.FranchiseID))
		}
		warnings = append(warnings, ValidateTransaction(tx)...)
	}

	for _, e := range rv.Expenses {
		warnings = append(warnings, ValidateExpense(e)...)
	}

	seen := make(map[model.Role]bool)
	for _, cut := range rv.CommissionCuts {
		if cut.CutPerMillion < 0 {
			warnings = append(warnings, fmt.Sprintf("Commission cut for role '%s' is negative (%.2f per million)",
				cut.Role, cut.CutPerMillion))
		}
		if seen[cut.Role] {
			warnings = append(warnings, fmt.Sprintf("Commission cut for role '%s' is defined more than once - the last entry wins",
				cut.Role))
		}
		seen[cut.Role] = true
	}

	return warnings
}

// ValidateRecords is a convenience wrapper around RecordValidator.ValidateAll.
func ValidateRecords(f model.Franchise, txs []model.Transaction, expenses []model.Expense, cuts []model.CommissionCut) []string {
	rv := RecordValidator{
		Franchise:      f,
		Transactions:   txs,
		Expenses:       expenses,
		CommissionCuts: cuts,
	}
	return rv.ValidateAll()
}
