package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
)

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

var recommendations = map[contracts.Rating]string{
	contracts.RatingStrongBuy: "High conviction setup across components. Candidate for a full position.",
	contracts.RatingBuy:       "Favourable setup. Candidate for a starter position.",
	contracts.RatingHold:      "Mixed signals. Keep on the watchlist.",
	contracts.RatingPass:      "Setup does not qualify.",
}

// RenderReport writes the single-ticker analysis report
func RenderReport(w io.Writer, r *contracts.ScreeningResult, weights selection.Weights) error {
	p := &printer{w: w}

	p.line("")
	p.line(doubleRule)
	p.linef("  STOCK ANALYSIS REPORT: %s", r.Ticker)
	p.line(singleRule)
	p.linef("  Company    : %s", orDash(r.CompanyName))
	p.linef("  Sector     : %s / %s", orDash(r.Sector), orDash(r.Industry))
	p.linef("  Market Cap : %s", FormatMarketCap(r.MarketCap))
	p.linef("  Price      : $%.2f", r.CurrentPrice)
	p.line(singleRule)
	p.linef("  FINAL SCORE: %.1f/100 - %s", r.FinalScore, r.Rating)
	p.line("")
	p.line("  Component Scores:")
	for _, c := range contracts.AllComponents() {
		p.linef("   %-12s %6.1f/100  (weight %2.0f%%)", componentTitle(c), r.Component(c).Score, weights.Of(c)*100)
	}

	for _, c := range contracts.AllComponents() {
		renderComponent(p, c, r.Component(c))
	}

	p.line("")
	p.line(singleRule)
	p.linef("  Recommendation: %s", recommendations[r.Rating])
	p.line(doubleRule)
	return p.err
}

func renderComponent(p *printer, c contracts.Component, cs contracts.ComponentScore) {
	p.line("")
	p.linef("  [%s]", strings.ToUpper(componentTitle(c)))

	for _, cr := range cs.Criteria {
		suffix := ""
		if cr.Unmeasured {
			suffix = "  (fixed default)"
		} else if cr.Note != "" {
			suffix = "  " + cr.Note
		}
		p.linef("   %-22s %5.1f/%-4.0f%s", cr.Name, cr.Points, cr.Max, suffix)
	}

	if len(cs.Indicators) > 0 {
		keys := make([]string, 0, len(cs.Indicators))
		for k := range cs.Indicators {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p.linef("   · %-20s %s", k, formatIndicator(cs.Indicators[k]))
		}
	}

	for _, note := range cs.Notes {
		p.linef("   • %s", note)
	}
}

// RenderTopTable writes the ranked table printed after a screening run
func RenderTopTable(w io.Writer, report *TopReport) error {
	p := &printer{w: w}

	p.line("")
	p.line(doubleRule)
	p.linef("  TOP %d (universe: %s%s)", len(report.TopN), report.UniverseSource, degradedTag(report.Degraded))
	p.linef("  Analyzed %d · Qualified %d · Failed %d", report.TotalAnalyzed, report.QualifiedCount, report.FailedCount)
	p.line(doubleRule)

	widths := []int{4, 7, 24, 22, 7, 10}
	p.row([]string{"#", "Ticker", "Company", "Sector", "Score", "Rating"}, widths)
	p.line(strings.Repeat("─", sumWidths(widths)))
	for _, rec := range report.TopN {
		p.row([]string{
			fmt.Sprintf("%d", rec.Rank),
			rec.Ticker,
			truncate(rec.CompanyName, widths[2]),
			truncate(orDash(rec.Sector), widths[3]),
			fmt.Sprintf("%.1f", rec.FinalScore),
			string(rec.Rating),
		}, widths)
	}
	return p.err
}

// FormatMarketCap renders a dollar market cap as $1.23T / $4.5B / $678M
func FormatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.0fM", v/1e6)
	case v > 0:
		return fmt.Sprintf("$%.0f", v)
	default:
		return "-"
	}
}

// printer keeps the first write error so renderers stay linear
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...interface{}) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) row(values []string, widths []int) {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], v)
	}
	p.line(strings.TrimRight(strings.Join(cells, "  "), " "))
}

func sumWidths(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + 2*(len(widths)-1)
}

func componentTitle(c contracts.Component) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatIndicator(v float64) string {
	if v >= 1e6 || v <= -1e6 {
		return fmt.Sprintf("%.3g", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func degradedTag(degraded bool) string {
	if degraded {
		return ", degraded"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
