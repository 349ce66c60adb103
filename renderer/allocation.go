package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// AllocationsMarkdown renders the allocation table. Only long positions
// carry a percentage: each is the share of total invested capital its
// committed dollars represent. Short positions are listed below with
// their negative balances.
func AllocationsMarkdown(allocations portfolio.Allocations) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Allocations\n\n")
	if len(allocations) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}

	total := allocations.Invested()
	var shorts []string

	fmt.Fprintln(&b, "| Ticker | Invested | Shares | % |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, ticker := range allocations.Tickers() {
		a := allocations[ticker]
		if a.Shares <= 0 {
			shorts = append(shorts, ticker)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			ticker, Dollars(a.Invested), Shares(a.Shares), Percent(a.Invested/total*100))
	}

	if len(shorts) > 0 {
		fmt.Fprint(&b, "\n## Short Positions\n\n")
		fmt.Fprintln(&b, "| Ticker | Invested | Shares |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, ticker := range shorts {
			a := allocations[ticker]
			fmt.Fprintf(&b, "| %s | %s | %s |\n", ticker, Dollars(a.Invested), Shares(a.Shares))
		}
	}
	return b.String()
}
