// Package constants provides shared constants for the franchise-performance application.
package constants

import "time"

// DateTimeLayout is the month key format used for payout timelines, cash-flow
// projections and P&L buckets.
const DateTimeLayout = "2006-01"

// DateLayout is the day format accepted for record dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// ForecastMonths is the length of the cash-flow projection horizon
	ForecastMonths = 12

	// Million is the divisor used by per-million commission cut rates
	Million = 1_000_000.0

	// DaysPerMonth approximates a month when measuring sales velocity
	DaysPerMonth = 30

	// VelocityMonths is the trailing window used for current monthly sales
	VelocityMonths = 3
)

// Default commission and tax rates (fractions, not percentages).
const (
	DefaultCommissionRate     = 0.035
	DefaultGeneralTaxRate     = 0.14
	DefaultWithholdingTaxRate = 0.05
	DefaultIncomeTaxRate      = 0.04
)

// DefaultCurrency is the currency code used in formatted recommendations.
const DefaultCurrency = "EGP"

// AllTimeEpoch is the start of the "all-time" comparison window.
var AllTimeEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable report format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultDataFile is the default record dataset file name
	DefaultDataFile = "data.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. FRANCHISE_RATES_COMMISSION
	EnvPrefix = "FRANCHISE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Comparison defaults
const (
	// DefaultComparisonWorkers bounds concurrent per-franchise aggregation
	DefaultComparisonWorkers = 4
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 piaster)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
