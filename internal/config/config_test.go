package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/model"
	"golang.org/x/text/language"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Rates.Model() != model.DefaultRates() {
		t.Errorf("default rates = %+v, expected %+v", conf.Rates.Model(), model.DefaultRates())
	}
	if conf.Data.Source != SourceFile || conf.Data.File != "data.yaml" {
		t.Errorf("default data = %+v", conf.Data)
	}
	if conf.Comparison.Workers != 4 || conf.Comparison.TimeFrame() != comparison.Monthly {
		t.Errorf("default comparison = %+v", conf.Comparison)
	}
	if conf.Output.Format != "pretty" || conf.Logging.Level != "info" {
		t.Errorf("default output/logging = %+v / %+v", conf.Output, conf.Logging)
	}

	primary, secondary, err := conf.Insights.Tags()
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if primary != language.English || secondary != language.Arabic {
		t.Errorf("Tags() = %v, %v", primary, secondary)
	}
}

func TestLoadConfigurationFile(t *testing.T) {
	path := writeConfig(t, `
rates:
  commission: 0.03
  generalTax: 0.14
data:
  source: database
  dsn: postgres://salemate@localhost:5432/performance?sslmode=disable
comparison:
  workers: 8
  defaultTimeFrame: quarterly
insights:
  primaryLanguage: ar
  secondaryLanguage: en
logging:
  level: debug
  format: console
output:
  format: json
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Rates.Commission != 0.03 || conf.Rates.WithholdingTax != 0.05 {
		t.Errorf("rates = %+v", conf.Rates)
	}
	if conf.Data.Source != SourceDatabase || !strings.HasPrefix(conf.Data.DSN, "postgres://") {
		t.Errorf("data = %+v", conf.Data)
	}
	if conf.Comparison.Workers != 8 || conf.Comparison.TimeFrame() != comparison.Quarterly {
		t.Errorf("comparison = %+v", conf.Comparison)
	}
	if conf.Output.Format != "json" || conf.Logging.Format != "console" {
		t.Errorf("output/logging = %+v / %+v", conf.Output, conf.Logging)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("FRANCHISE_RATES_COMMISSION", "0.04")
	t.Setenv("FRANCHISE_OUTPUT_FORMAT", "csv")

	path := writeConfig(t, "rates:\n  commission: 0.03\n")
	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Rates.Commission != 0.04 {
		t.Errorf("commission = %v, expected environment override 0.04", conf.Rates.Commission)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("output format = %s, expected csv", conf.Output.Format)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"Commission rate above one", "rates:\n  commission: 1.5\n", "Rates.Commission"},
		{"Zero commission rate", "rates:\n  commission: 0\n", "Rates.Commission"},
		{"Database without DSN", "data:\n  source: database\n", "Data.DSN"},
		{"Unknown data source", "data:\n  source: s3\n", "Data.Source"},
		{"Unknown time frame", "comparison:\n  defaultTimeFrame: decade\n", "Comparison.DefaultTimeFrame"},
		{"Zero workers", "comparison:\n  workers: 0\n", "Comparison.Workers"},
		{"Bad language", "insights:\n  primaryLanguage: not_a_language!\n", "Insights.PrimaryLanguage"},
		{"Unknown output format", "output:\n  format: xml\n", "Output.Format"},
		{"Unknown log level", "logging:\n  level: verbose\n", "Logging.Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("LoadConfiguration() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err.Error(), tt.want)
			}
		})
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Errorf("LoadConfiguration() expected error for missing file")
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := Configuration{
		Rates:    RatesConfig{Commission: 0.03, GeneralTax: 0.5, WithholdingTax: 0.3, IncomeTax: 0.3},
		Data:     DataConfig{Source: SourceDatabase, DSN: "postgres://localhost/performance"},
		Insights: InsightsConfig{PrimaryLanguage: "en", SecondaryLanguage: "en"},
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Fatalf("ValidateConfiguration() = %v, expected 3 warnings", warnings)
	}
}
