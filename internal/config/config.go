// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Data source kinds.
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Configuration holds all configuration for franchise-performance.
type Configuration struct {
	Rates      RatesConfig      `mapstructure:"rates"`
	Data       DataConfig       `mapstructure:"data"`
	Comparison ComparisonConfig `mapstructure:"comparison"`
	Insights   InsightsConfig   `mapstructure:"insights"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

// RatesConfig holds the commission and tax rates as fractions.
type RatesConfig struct {
	Commission     float64 `mapstructure:"commission" validate:"gt=0,lt=1"`
	GeneralTax     float64 `mapstructure:"generalTax" validate:"gte=0,lt=1"`
	WithholdingTax float64 `mapstructure:"withholdingTax" validate:"gte=0,lt=1"`
	IncomeTax      float64 `mapstructure:"incomeTax" validate:"gte=0,lt=1"`
}

// DataConfig selects where franchise records are read from.
type DataConfig struct {
	Source string `mapstructure:"source" validate:"oneof=file database"`
	File   string `mapstructure:"file" validate:"required_if=Source file"`
	DSN    string `mapstructure:"dsn" validate:"required_if=Source database"`
}

// ComparisonConfig tunes multi-franchise comparisons.
type ComparisonConfig struct {
	Workers          int    `mapstructure:"workers" validate:"gte=1,lte=64"`
	DefaultTimeFrame string `mapstructure:"defaultTimeFrame" validate:"oneof=weekly monthly quarterly half-year yearly all-time"`
}

// InsightsConfig selects the two languages insights are rendered in.
type InsightsConfig struct {
	PrimaryLanguage   string `mapstructure:"primaryLanguage" validate:"required,bcp47_language_tag"`
	SecondaryLanguage string `mapstructure:"secondaryLanguage" validate:"required,bcp47_language_tag"`
	Currency          string `mapstructure:"currency" validate:"required,len=3,alpha"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" validate:"oneof=debug info warn error"` // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty" validate:"oneof=json console"`        // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"`                              // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=pretty csv json"`
}

// Model converts the configured rates for the engines.
func (r RatesConfig) Model() model.Rates {
	return model.Rates{
		Commission:     r.Commission,
		GeneralTax:     r.GeneralTax,
		WithholdingTax: r.WithholdingTax,
		IncomeTax:      r.IncomeTax,
	}
}

// Tags parses the configured insight languages.
func (i InsightsConfig) Tags() (primary, secondary language.Tag, err error) {
	if primary, err = language.Parse(i.PrimaryLanguage); err != nil {
		return language.Und, language.Und, fmt.Errorf("primary language: %w", err)
	}
	if secondary, err = language.Parse(i.SecondaryLanguage); err != nil {
		return language.Und, language.Und, fmt.Errorf("secondary language: %w", err)
	}
	return primary, secondary, nil
}

// TimeFrame returns the configured default comparison time frame.
func (c ComparisonConfig) TimeFrame() comparison.TimeFrame {
	tf, err := comparison.ParseTimeFrame(c.DefaultTimeFrame)
	if err != nil {
		return comparison.Monthly
	}
	return tf
}

// setDefaults registers every key so that environment overrides apply even
// when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("rates.commission", constants.DefaultCommissionRate)
	v.SetDefault("rates.generalTax", constants.DefaultGeneralTaxRate)
	v.SetDefault("rates.withholdingTax", constants.DefaultWithholdingTaxRate)
	v.SetDefault("rates.incomeTax", constants.DefaultIncomeTaxRate)

	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.file", constants.DefaultDataFile)
	v.SetDefault("data.dsn", "")

	v.SetDefault("comparison.workers", constants.DefaultComparisonWorkers)
	v.SetDefault("comparison.defaultTimeFrame", string(comparison.Monthly))

	v.SetDefault("insights.primaryLanguage", "en")
	v.SetDefault("insights.secondaryLanguage", "ar")
	v.SetDefault("insights.currency", constants.DefaultCurrency)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path loads defaults and environment
// overrides only. Environment variables use the FRANCHISE_ prefix, e.g.
// FRANCHISE_RATES_COMMISSION.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations at once.
func (c *Configuration) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// ValidateConfiguration returns non-fatal warnings about the configuration.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	combined := c.Rates.Model().CombinedTax()
	if combined >= 1 {
		warnings = append(warnings, fmt.Sprintf("Combined tax rate %.2f leaves no net commission", combined))
	}

	if c.Insights.PrimaryLanguage == c.Insights.SecondaryLanguage {
		warnings = append(warnings, fmt.Sprintf("Primary and secondary insight languages are both '%s'",
			c.Insights.PrimaryLanguage))
	}

	if c.Data.Source == SourceDatabase && strings.HasPrefix(c.Data.DSN, "postgres") && !strings.Contains(c.Data.DSN, "sslmode") {
		warnings = append(warnings, "Database DSN does not set sslmode")
	}

	return warnings
}
