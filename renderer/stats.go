package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// GainLossRow is one line of the gain/loss table.
type GainLossRow struct {
	Name  string
	Value float64
	Stats portfolio.GainLoss
}

// Week52Row is one line of the 52-week table. Rows are only built for
// assets whose history is long enough to fill the window.
type Week52Row struct {
	Ticker string
	Stats  portfolio.Week52
}

// StatsMarkdown renders the gain/loss table and, when any asset has
// enough history, the 52-week table.
func StatsMarkdown(gains []GainLossRow, weeks []Week52Row) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Statistics\n\n")
	fmt.Fprintln(&b, "| | Value | Day G/L | Month G/L | Year G/L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, row := range gains {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Name,
			Dollars(row.Value),
			SignedPercent(row.Stats.Day),
			SignedPercent(row.Stats.Month),
			SignedPercent(row.Stats.Year),
		)
	}

	if len(weeks) > 0 {
		fmt.Fprint(&b, "\n## 52 Week\n\n")
		fmt.Fprintln(&b, "| Ticker | High | Low | Average | Current SD |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
		for _, row := range weeks {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f |\n",
				row.Ticker,
				Dollars(row.Stats.High),
				Dollars(row.Stats.Low),
				Dollars(row.Stats.Average),
				row.Stats.SD,
			)
		}
	}
	return b.String()
}
