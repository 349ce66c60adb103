package renderer

import (
	"strings"
	"testing"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
	"github.com/JScottR45/PortfolioAnalyzer/date"
)

func TestDollars(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, "$0.00"},
		{1234.56, "$1,234.56"},
		{-42.5, "-$42.50"},
		{0.004, "$0.00"},
	}
	for _, c := range cases {
		if got := Dollars(c.v); got != c.want {
			t.Errorf("Dollars(%g) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{4, "4.00%"},
		{-2.345, "-2.35%"},
		{portfolio.Unavailable, "-"},
	}
	for _, c := range cases {
		if got := Percent(c.v); got != c.want {
			t.Errorf("Percent(%g) = %q, want %q", c.v, got, c.want)
		}
	}
	if got := SignedPercent(4); got != "+4.00%" {
		t.Errorf("SignedPercent(4) = %q", got)
	}
	if got := SignedPercent(portfolio.Unavailable); got != "-" {
		t.Errorf("SignedPercent(Unavailable) = %q", got)
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	d := date.New(2026, 3, 2)
	txs := []portfolio.Transaction{
		portfolio.NewDividend(d.Add(1), "KO", 0.42, 25),
		portfolio.NewBuy(d, "AAPL", 10, 50),
	}
	md := TransactionsMarkdown(txs)

	for _, want := range []string{
		"| 0 | 2026-03-03 | Div. Reinvestment | KO | $25.00 | 0.4200 |",
		"| 1 | 2026-03-02 | Buy | AAPL | $500.00 | 10.0000 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestAllocationsMarkdownSplitsShorts(t *testing.T) {
	allocations := portfolio.Allocations{
		"AAPL": {Invested: 750, Shares: 15},
		"MSFT": {Invested: 250, Shares: 2},
		"TSLA": {Invested: -500, Shares: -3},
	}
	md := AllocationsMarkdown(allocations)

	// Percentages are shares of total invested capital, long rows only.
	if !strings.Contains(md, "| AAPL | $750.00 | 15.0000 | 150.00% |") {
		t.Errorf("AAPL row wrong:\n%s", md)
	}
	if !strings.Contains(md, "## Short Positions") {
		t.Errorf("missing short section:\n%s", md)
	}
	if !strings.Contains(md, "| TSLA | -$500.00 | -3.0000 |") {
		t.Errorf("TSLA short row wrong:\n%s", md)
	}
}

func TestSummaryMarkdownUnavailableReturn(t *testing.T) {
	md := SummaryMarkdown(portfolio.Summary{Value: 300, Invested: 0, Profit: 500, Return: portfolio.Unavailable})
	if !strings.Contains(md, "| Total Return | - |") {
		t.Errorf("unavailable return not dashed:\n%s", md)
	}
	if !strings.Contains(md, "| Total Profit | +$500.00 |") {
		t.Errorf("profit row wrong:\n%s", md)
	}
}
