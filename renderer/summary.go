package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// SummaryMarkdown renders the headline portfolio figures.
func SummaryMarkdown(s portfolio.Summary) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Portfolio\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Value | %s |\n", Dollars(s.Value))
	fmt.Fprintf(&b, "| Invested | %s |\n", Dollars(s.Invested))
	fmt.Fprintf(&b, "| Total Profit | %s |\n", SignedDollars(s.Profit))
	fmt.Fprintf(&b, "| Total Return | %s |\n", SignedPercent(s.Return))
	if !s.LastUpdate.IsZero() {
		fmt.Fprintf(&b, "\nLast update: %s\n", s.LastUpdate.Format("1/2/2006 3:04 PM"))
	}
	return b.String()
}
