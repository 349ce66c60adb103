package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// PerformanceMarkdown renders a sampled performance series.
func PerformanceMarkdown(points []portfolio.Point, mode portfolio.Mode, covered date.Range) string {
	var b strings.Builder

	title := "Gross Profit"
	if mode == portfolio.PercentReturn {
		title = "Percent Return"
	}
	fmt.Fprintf(&b, "# Performance: %s\n\n", title)
	if len(points) == 0 {
		fmt.Fprintln(&b, "No data in the requested range.")
		return b.String()
	}
	fmt.Fprintf(&b, "From %s to %s, %d points.\n\n", covered.From, covered.To, len(points))

	fmt.Fprintln(&b, "| Date | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, p := range points {
		v := SignedDollars(p.Value)
		if mode == portfolio.PercentReturn {
			v = SignedPercent(p.Value)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date.Format("1/2/06"), v)
	}
	return b.String()
}
