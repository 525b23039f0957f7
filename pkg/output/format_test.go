package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/forecast"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/internal/pnl"
	"github.com/salemate/franchise-performance/internal/report"
	"golang.org/x/text/language"
)

func sampleReport() *report.Report {
	a := &model.FranchiseAnalytics{
		GrossRevenue:     130000,
		NetRevenue:       96000,
		TotalExpenses:    28000,
		TotalSalesVolume: 5_000_000,
		CostPerAgent:     7000,
		RevenuePerAgent:  32500,
		Headcount:        4,
		Deals:            model.DealCounts{Contracted: 2, Pending: 1, Cancelled: 1},
	}
	return &report.Report{
		Franchise: model.Franchise{ID: "cairo-west", Name: "Cairo West"},
		Analytics: a,
		Counts:    report.CountsOverview,
		Projection: forecast.Projection{
			MonthlyExpenses: 28000,
			Breakeven:       model.BreakevenAnalysis{MonthlyExpenses: 28000, EffectiveRate: 2.8, BreakevenVolume: 1_000_000},
			Cashflow: []model.CashflowMonth{
				{Month: "2025-06", Inflow: 0, Expenses: 28000, Net: -28000, Cumulative: 68000},
				{Month: "2025-07", Inflow: 80000, Expenses: 28000, Net: 52000, Cumulative: 120000},
			},
		},
		Insights: []insight.Insight{{
			Kind:      insight.KindExcellentMargin,
			Severity:  insight.SeveritySuccess,
			Primary:   insight.Text{Language: "en", Title: "Excellent Profit Margin", Description: "Margin is 73.8%", Recommendations: []string{"Reinvest"}},
			Secondary: insight.Text{Language: "ar", Title: "هامش ربح ممتاز", Description: "الهامش 73.8%"},
		}},
		ForecastInsights: []insight.Insight{},
		Statement:        pnl.Build(a, nil, nil),
		Trailing:         []pnl.Month{{Month: "2025-06", Revenue: 80000, Expenses: 28000, Profit: 52000}},
		Warnings:         []string{"Transaction 'legacy' has no commission"},
		GeneratedAt:      time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleReport(), language.English); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"--- Performance of Cairo West ---",
		"Window: all records",
		"Deals: 2 contracted | 1 pending | 1 cancelled",
		"EGP 130,000.00",
		"NET PROFIT / (LOSS)",
		"-EGP 28,000.00",
		"[success] Excellent Profit Margin",
		"    - Reinvest",
		"! Transaction 'legacy' has no commission",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrettyFormat output missing %q", want)
		}
	}
}

func TestPrettyFormatSecondaryLanguage(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleReport(), language.Arabic); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "هامش ربح ممتاز") {
		t.Errorf("PrettyFormat did not render the Arabic insight")
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if got := strings.Join(records[0], ","); got != "section,name,value" {
		t.Errorf("header = %s", got)
	}

	values := make(map[string]string)
	for _, r := range records[1:] {
		values[r[0]+"/"+r[1]] = r[2]
	}
	expected := map[string]string{
		"analytics/gross_revenue":       "130000.00",
		"analytics/cancelled_deals":     "1",
		"statement/NET PROFIT / (LOSS)": "102000.00",
		"cashflow/2025-07 cumulative":   "120000.00",
		"trailing/2025-06 profit":       "52000.00",
	}
	for key, want := range expected {
		if values[key] != want {
			t.Errorf("%s = %q, expected %q", key, values[key], want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["counts"] != "overview" {
		t.Errorf("counts = %v", decoded["counts"])
	}
	if _, ok := decoded["projection"].(map[string]any)["cashflow"]; !ok {
		t.Errorf("projection cash flow missing")
	}
}

func sampleComparison() *comparison.Result {
	entries := []comparison.Entry{
		{
			Franchise:       model.Franchise{ID: "a", Name: "Alpha"},
			Analytics:       &model.FranchiseAnalytics{GrossRevenue: 100000, NetRevenue: 40000, CostPerAgent: 5000},
			RevenuePerAgent: 25000,
		},
		{
			Franchise: model.Franchise{ID: "b", Name: "Beta"},
			Err:       errors.New("missing franchise data: [expenses]"),
			Error:     "missing franchise data: [expenses]",
		},
	}
	return &comparison.Result{
		TimeFrame: comparison.Monthly,
		Entries:   entries,
		Best:      comparison.BestPerformers(entries),
	}
}

func TestPrettyComparison(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyComparison(&buf, sampleComparison()); err != nil {
		t.Fatalf("PrettyComparison() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"--- Comparison (monthly) ---", "EGP 100,000.00", "excluded: missing franchise data", "gross_revenue      Alpha"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrettyComparison output missing %q", want)
		}
	}
}

func TestCsvComparison(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvComparison(&buf, sampleComparison()); err != nil {
		t.Fatalf("CsvComparison() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][2] != "100000.00" || records[2][6] == "" {
		t.Errorf("unexpected rows %v", records[1:])
	}
}

func TestWriteDispatch(t *testing.T) {
	for _, f := range []string{"pretty", "csv", "json"} {
		var buf bytes.Buffer
		if err := WriteReport(&buf, f, sampleReport(), language.English); err != nil {
			t.Errorf("WriteReport(%s) error = %v", f, err)
		}
		if err := WriteComparison(&buf, f, sampleComparison()); err != nil {
			t.Errorf("WriteComparison(%s) error = %v", f, err)
		}
	}
	if err := WriteReport(&bytes.Buffer{}, "xml", sampleReport(), language.English); err == nil {
		t.Errorf("WriteReport(xml) expected error")
	}
	if err := WriteComparison(&bytes.Buffer{}, "xml", sampleComparison()); err == nil {
		t.Errorf("WriteComparison(xml) expected error")
	}
}
