package model

import "github.com/salemate/franchise-performance/pkg/constants"

// Rates holds the commission and tax rates applied to every deal. Each value
// is a fraction, so 0.035 means 3.5%.
type Rates struct {
	Commission     float64 `json:"commission"`
	GeneralTax     float64 `json:"generalTax"`
	WithholdingTax float64 `json:"withholdingTax"`
	IncomeTax      float64 `json:"incomeTax"`
}

// DefaultRates returns the standard brokerage rates: 3.5% commission taxed at
// 14% general, 5% withholding and 4% income tax.
func DefaultRates() Rates {
	return Rates{
		Commission:     constants.DefaultCommissionRate,
		GeneralTax:     constants.DefaultGeneralTaxRate,
		WithholdingTax: constants.DefaultWithholdingTaxRate,
		IncomeTax:      constants.DefaultIncomeTaxRate,
	}
}

// CombinedTax returns the sum of the three tax rates.
func (r Rates) CombinedTax() float64 {
	return r.GeneralTax + r.WithholdingTax + r.IncomeTax
}

// CommissionPercent returns the commission rate as a percentage.
func (r Rates) CommissionPercent() float64 {
	return r.Commission * constants.PercentageMultiplier
}
