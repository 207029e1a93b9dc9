package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"mt103perf/internal/tui/styles"
)

const rule = "============================================================"

// Render writes the text report to w in a fixed order: header, page-load
// block, API block, scenario breakdown, error table, verdicts and
// recommendations. Empty blocks are skipped.
func (r *Report) Render(w io.Writer) error {
	re := lipgloss.NewRenderer(w)
	verdictStyle := map[Verdict]lipgloss.Style{
		VerdictExcellent: re.NewStyle().Foreground(styles.ColorSecondary).Bold(true),
		VerdictGood:      re.NewStyle().Foreground(styles.ColorWarning),
		VerdictSlow:      re.NewStyle().Foreground(styles.ColorError).Bold(true),
	}
	title := re.NewStyle().Foreground(styles.ColorPrimary).Bold(true)

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "%s\n", title.Render("📊 PERFORMANCE REPORT"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "Run ID   : %s\n", r.Meta.RunID)
	fmt.Fprintf(w, "Target   : %s\n", r.Meta.Target)
	if r.Meta.Protocol != "" {
		fmt.Fprintf(w, "Protocol : %s\n", r.Meta.Protocol)
	}
	if r.Meta.Duration > 0 {
		fmt.Fprintf(w, "Duration : %s\n", r.Meta.Duration.Round(time.Millisecond))
	}
	if r.HealthMillis != nil {
		fmt.Fprintf(w, "Health   : %.2fms\n", *r.HealthMillis)
	} else {
		fmt.Fprintf(w, "Health   : unavailable\n")
	}

	for _, b := range []struct {
		icon  string
		block *Block
	}{{"📄", r.PageLoad}, {"🔌", r.APICalls}} {
		if b.block == nil {
			continue
		}
		renderBlock(w, b.icon, b.block)
	}

	if len(r.Scenarios) > 0 {
		fmt.Fprintf(w, "\n🧭 By scenario:\n")
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Scenario", "OK", "Errors", "Mean(ms)", "Median(ms)", "Max(ms)"}),
		)
		for _, s := range r.Scenarios {
			table.Append([]string{
				string(s.Scenario),
				fmt.Sprintf("%d", s.Stats.Count),
				fmt.Sprintf("%d", s.Errors),
				fmt.Sprintf("%.2f", s.Stats.Mean),
				fmt.Sprintf("%.2f", s.Stats.Median),
				fmt.Sprintf("%.2f", s.Stats.Max),
			})
		}
		table.Render()
	}

	if r.TotalErrors > 0 {
		fmt.Fprintf(w, "\n❌ Errors (%d):\n", r.TotalErrors)
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Error", "Count"}),
		)
		for _, e := range r.Errors {
			table.Append([]string{e.Description, fmt.Sprintf("%d", e.Count)})
		}
		table.Render()
	}

	fmt.Fprintf(w, "\n🎯 Verdict:\n")
	for _, b := range []struct {
		label string
		block *Block
	}{{"Page load", r.PageLoad}, {"API", r.APICalls}} {
		if b.block == nil {
			continue
		}
		v := b.block.Verdict
		fmt.Fprintf(w, "  %s %s: %s (%.2fms)\n",
			verdictIcon(v), b.label, verdictStyle[v].Render(string(v)), b.block.Stats.Mean)
	}

	fmt.Fprintf(w, "\n💡 Recommendations:\n")
	if len(r.Recommendations) == 0 {
		fmt.Fprintf(w, "  none\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	_, err := fmt.Fprintf(w, "%s\n", rule)
	return err
}

func renderBlock(w io.Writer, icon string, b *Block) {
	s := b.Stats
	fmt.Fprintf(w, "\n%s %s:\n", icon, b.Title)
	fmt.Fprintf(w, "  Count  : %d\n", s.Count)
	fmt.Fprintf(w, "  Min    : %.2fms\n", s.Min)
	fmt.Fprintf(w, "  Max    : %.2fms\n", s.Max)
	fmt.Fprintf(w, "  Mean   : %.2fms\n", s.Mean)
	fmt.Fprintf(w, "  Median : %.2fms\n", s.Median)
	fmt.Fprintf(w, "  StdDev : %.2fms\n", s.StdDev)
	if b.Quantiles.P99 > 0 {
		fmt.Fprintf(w, "  P90    : %.2fms\n", b.Quantiles.P90)
		fmt.Fprintf(w, "  P99    : %.2fms\n", b.Quantiles.P99)
	}
}

func verdictIcon(v Verdict) string {
	switch v {
	case VerdictExcellent:
		return "✅"
	case VerdictGood:
		return "⚠️ "
	default:
		return "❌"
	}
}

// String renders the report without colour.
func (r *Report) String() string {
	var sb strings.Builder
	_ = r.Render(&sb)
	return sb.String()
}
