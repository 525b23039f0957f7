// Package commission decomposes a deal amount into gross commission, taxes,
// net commission and the cuts owed to managerial roles.
package commission

import (
	"errors"
	"fmt"
	"math"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidAmount is returned when a deal amount is not a positive number.
var ErrInvalidAmount = errors.New("invalid transaction amount")

var million = decimal.NewFromInt(1_000_000)

// RoleCut is the share of a deal paid to one managerial role.
type RoleCut struct {
	Role          model.Role `json:"role"`
	CutPerMillion float64    `json:"cutPerMillion"`
	Millions      float64    `json:"millions"`
	Total         float64    `json:"total"`
}

// Breakdown is the full commission decomposition of a single deal.
type Breakdown struct {
	TransactionAmount  float64   `json:"transactionAmount"`
	GrossCommission    float64   `json:"grossCommission"`
	Tax                float64   `json:"taxAmount"`
	WithholdingTax     float64   `json:"withholdingTax"`
	IncomeTax          float64   `json:"incomeTax"`
	TotalTax           float64   `json:"totalTax"`
	NetCommission      float64   `json:"netCommission"`
	RoleCuts           []RoleCut `json:"roleCuts"`
	TotalCuts          float64   `json:"totalCuts"`
	FinalNetCommission float64   `json:"finalNetCommission"`
}

// Apply stamps the write-time commission fields onto tx. Role cuts are not
// stored on the transaction.
func (b *Breakdown) Apply(tx *model.Transaction) {
	gross := b.GrossCommission
	tax := b.Tax
	withholding := b.WithholdingTax
	income := b.IncomeTax
	net := b.NetCommission
	alias := b.NetCommission

	tx.TransactionAmount = b.TransactionAmount
	tx.GrossCommission = &gross
	tx.TaxAmount = &tax
	tx.WithholdingTax = &withholding
	tx.IncomeTax = &income
	tx.NetCommission = &net
	tx.CommissionAmount = &alias
}

// Calculator computes commission breakdowns for a fixed set of rates.
type Calculator struct {
	logger *zap.Logger
	rates  model.Rates
}

// NewCalculator creates a calculator using the given rates.
func NewCalculator(logger *zap.Logger, rates model.Rates) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, rates: rates}
}

// Rates returns the rates the calculator was built with.
func (c *Calculator) Rates() model.Rates {
	return c.rates
}

// Compute decomposes amount into commission, taxes and the cuts of every
// involved role found in cuts. Roles listed more than once are cut once.
func (c *Calculator) Compute(amount float64, roles []model.Role, cuts model.CutTable) (*Breakdown, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("compute commission for amount %v: %w", amount, ErrInvalidAmount)
	}

	dAmount := decimal.NewFromFloat(amount)
	gross := dAmount.Mul(decimal.NewFromFloat(c.rates.Commission))
	tax := gross.Mul(decimal.NewFromFloat(c.rates.GeneralTax))
	withholding := gross.Mul(decimal.NewFromFloat(c.rates.WithholdingTax))
	income := gross.Mul(decimal.NewFromFloat(c.rates.IncomeTax))

	combined := decimal.NewFromFloat(c.rates.GeneralTax).
		Add(decimal.NewFromFloat(c.rates.WithholdingTax)).
		Add(decimal.NewFromFloat(c.rates.IncomeTax))
	net := gross.Mul(decimal.NewFromInt(1).Sub(combined))

	millions := dAmount.Div(million)
	seen := make(map[model.Role]struct{}, len(roles))
	roleCuts := make([]RoleCut, 0, len(roles))
	totalCuts := decimal.Zero
	for _, role := range roles {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}

		rate, ok := cuts[role]
		if !ok {
			continue
		}
		cut := decimal.NewFromFloat(rate).Mul(dAmount).Div(million)
		totalCuts = totalCuts.Add(cut)
		roleCuts = append(roleCuts, RoleCut{
			Role:          role,
			CutPerMillion: rate,
			Millions:      millions.InexactFloat64(),
			Total:         cut.InexactFloat64(),
		})
	}

	breakdown := &Breakdown{
		TransactionAmount:  amount,
		GrossCommission:    gross.InexactFloat64(),
		Tax:                tax.InexactFloat64(),
		WithholdingTax:     withholding.InexactFloat64(),
		IncomeTax:          income.InexactFloat64(),
		TotalTax:           tax.Add(withholding).Add(income).InexactFloat64(),
		NetCommission:      net.InexactFloat64(),
		RoleCuts:           roleCuts,
		TotalCuts:          totalCuts.InexactFloat64(),
		FinalNetCommission: net.Sub(totalCuts).InexactFloat64(),
	}

	c.logger.Debug("computed commission breakdown",
		zap.String("op", "commission.Compute"),
		zap.Float64("amount", amount),
		zap.Float64("net", breakdown.NetCommission),
		zap.Int("roleCuts", len(roleCuts)),
	)
	return breakdown, nil
}
