// Package renderer turns ledger state into markdown reports.
package renderer

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// Dollars formats v as a USD amount, "$1,234.56".
func Dollars(v float64) string {
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// SignedDollars formats v like Dollars but with an explicit plus sign on
// gains.
func SignedDollars(v float64) string {
	if v > 0 {
		return "+" + Dollars(v)
	}
	return Dollars(v)
}

// Percent formats v as a percentage with two decimals. The Unavailable
// sentinel renders as a dash.
func Percent(v float64) string {
	if v == portfolio.Unavailable || math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// SignedPercent formats v like Percent but with an explicit plus sign on
// gains.
func SignedPercent(v float64) string {
	s := Percent(v)
	if v > 0 && s != "-" {
		return "+" + s
	}
	return s
}

// Shares formats a share count trimmed to four decimals.
func Shares(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
