// Package output provides utilities for formatting and displaying franchise
// reports and comparisons.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/pnl"
	"github.com/salemate/franchise-performance/internal/report"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteReport renders a franchise report in the given output format. Pretty
// output shows insights in the language closest to tag.
func WriteReport(w io.Writer, outputFormat string, rep *report.Report, tag language.Tag) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, rep, tag)
	case constants.OutputFormatCSV:
		return CsvFormat(w, rep)
	case constants.OutputFormatJSON:
		return JSONFormat(w, rep)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// WriteComparison renders a comparison in the given output format.
func WriteComparison(w io.Writer, outputFormat string, result *comparison.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyComparison(w, result)
	case constants.OutputFormatCSV:
		return CsvComparison(w, result)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, rep *report.Report, tag language.Tag) error {
	p := message.NewPrinter(language.English)
	a := rep.Analytics

	_, _ = fmt.Fprintf(w, "--- Performance of %s ---\n", rep.Franchise.Name)
	if rep.Window != nil {
		_, _ = fmt.Fprintf(w, "Window: %s to %s (%s)\n",
			rep.Window.Start.Format(constants.DateLayout), rep.Window.End.Format(constants.DateLayout), rep.TimeFrame)
	} else {
		_, _ = fmt.Fprintf(w, "Window: all records\n")
	}
	_, _ = p.Fprintf(w, "Deals: %d contracted | %d pending | %d cancelled\n",
		a.Deals.Contracted, a.Deals.Pending, a.Deals.Cancelled)
	_, _ = fmt.Fprintf(w, "Gross revenue:     %s\n", format.Currency(a.GrossRevenue))
	_, _ = fmt.Fprintf(w, "Net revenue:       %s\n", format.Currency(a.NetRevenue))
	_, _ = fmt.Fprintf(w, "Expected revenue:  %s\n", format.Currency(a.ExpectedRevenue))
	_, _ = fmt.Fprintf(w, "Sales volume:      %s\n", format.Currency(a.TotalSalesVolume))
	_, _ = fmt.Fprintf(w, "Cost per agent:    %s\n", format.Currency(a.CostPerAgent))
	_, _ = fmt.Fprintf(w, "Revenue per agent: %s\n", format.Currency(a.RevenuePerAgent))

	_, _ = fmt.Fprintf(w, "\n--- Profit & loss ---\n")
	for _, row := range rep.Statement.Rows {
		if row.Type == pnl.RowSection {
			_, _ = fmt.Fprintf(w, "%s\n", row.Label)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-30s %s\n", row.Label, format.Currency(row.Amount))
	}

	be := rep.Projection.Breakeven
	_, _ = fmt.Fprintf(w, "\n--- Break-even ---\n")
	_, _ = fmt.Fprintf(w, "Monthly expenses:      %s\n", format.Currency(be.MonthlyExpenses))
	_, _ = p.Fprintf(w, "Effective rate:        %.2f%%\n", be.EffectiveRate)
	_, _ = fmt.Fprintf(w, "Break-even volume:     %s\n", format.Currency(be.BreakevenVolume))
	_, _ = fmt.Fprintf(w, "Current monthly sales: %s\n", format.Currency(be.CurrentMonthlySales))
	_, _ = p.Fprintf(w, "Months to break-even:  %.1f\n", be.MonthsToBreakeven)

	_, _ = fmt.Fprintf(w, "\n--- Cash flow ---\n")
	_, _ = fmt.Fprintf(w, "Month   | Inflow           | Expenses         | Net              | Cumulative\n")
	_, _ = fmt.Fprintf(w, "_____   | ________________ | ________________ | ________________ | __________\n")
	for _, m := range rep.Projection.Cashflow {
		_, _ = fmt.Fprintf(w, "%s | %16s | %16s | %16s | %s\n", m.Month,
			format.Currency(m.Inflow), format.Currency(m.Expenses), format.Currency(m.Net), format.Currency(m.Cumulative))
	}

	insights := append(append([]insight.Insight{}, rep.Insights...), rep.ForecastInsights...)
	if len(insights) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Insights ---\n")
	}
	for _, ins := range insights {
		text := ins.Text(tag)
		_, _ = fmt.Fprintf(w, "[%s] %s\n    %s\n", ins.Severity, text.Title, text.Description)
		for _, rec := range text.Recommendations {
			_, _ = fmt.Fprintf(w, "    - %s\n", rec)
		}
	}

	if len(rep.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Warnings ---\n")
		for _, warning := range rep.Warnings {
			_, _ = fmt.Fprintf(w, "! %s\n", warning)
		}
	}
	return nil
}

// CsvFormat outputs the report's headline metrics, P&L statement and cash
// flow as comma-separated sections.
func CsvFormat(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	a := rep.Analytics

	records := [][]string{
		{"section", "name", "value"},
		{"analytics", "gross_revenue", money(a.GrossRevenue)},
		{"analytics", "net_revenue", money(a.NetRevenue)},
		{"analytics", "expected_revenue", money(a.ExpectedRevenue)},
		{"analytics", "total_expenses", money(a.TotalExpenses)},
		{"analytics", "commission_cuts", money(a.CommissionCutsTotal)},
		{"analytics", "sales_volume", money(a.TotalSalesVolume)},
		{"analytics", "cost_per_agent", money(a.CostPerAgent)},
		{"analytics", "revenue_per_agent", money(a.RevenuePerAgent)},
		{"analytics", "contracted_deals", strconv.Itoa(a.Deals.Contracted)},
		{"analytics", "pending_deals", strconv.Itoa(a.Deals.Pending)},
		{"analytics", "cancelled_deals", strconv.Itoa(a.Deals.Cancelled)},
	}
	for _, row := range rep.Statement.Rows {
		if row.Type == pnl.RowSection {
			continue
		}
		records = append(records, []string{"statement", row.Label, money(row.Amount)})
	}
	for _, m := range rep.Projection.Cashflow {
		records = append(records,
			[]string{"cashflow", m.Month + " net", money(m.Net)},
			[]string{"cashflow", m.Month + " cumulative", money(m.Cumulative)},
		)
	}
	for _, m := range rep.Trailing {
		records = append(records, []string{"trailing", m.Month + " profit", money(m.Profit)})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// PrettyComparison outputs a comparison as a table followed by the best
// performer of each metric.
func PrettyComparison(w io.Writer, result *comparison.Result) error {
	_, _ = fmt.Fprintf(w, "--- Comparison (%s) ---\n", result.TimeFrame)
	_, _ = fmt.Fprintf(w, "%-24s | %16s | %16s | %16s | %16s\n", "Franchise", "Gross", "Net", "Cost/agent", "Revenue/agent")
	for _, e := range result.Entries {
		if !e.Valid() {
			_, _ = fmt.Fprintf(w, "%-24s | excluded: %s\n", e.Franchise.Name, e.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "%-24s | %16s | %16s | %16s | %16s\n", e.Franchise.Name,
			format.Currency(e.Analytics.GrossRevenue), format.Currency(e.Analytics.NetRevenue),
			format.Currency(e.Analytics.CostPerAgent), format.Currency(e.RevenuePerAgent))
	}
	_, _ = fmt.Fprintf(w, "\nBest performers:\n")
	for _, m := range comparison.Metrics {
		if best := result.Best[m]; best != nil {
			_, _ = fmt.Fprintf(w, "  %-18s %s\n", m, best.Franchise.Name)
		}
	}
	return nil
}

// CsvComparison outputs one row per compared franchise.
func CsvComparison(w io.Writer, result *comparison.Result) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"franchise_id", "name", "gross_revenue", "net_revenue", "cost_per_agent", "revenue_per_agent", "error"}}
	for _, e := range result.Entries {
		if !e.Valid() {
			records = append(records, []string{e.Franchise.ID, e.Franchise.Name, "", "", "", "", e.Error})
			continue
		}
		records = append(records, []string{
			e.Franchise.ID, e.Franchise.Name,
			money(e.Analytics.GrossRevenue), money(e.Analytics.NetRevenue),
			money(e.Analytics.CostPerAgent), money(e.RevenuePerAgent), "",
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
