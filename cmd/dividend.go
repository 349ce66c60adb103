package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
	"github.com/JScottR45/PortfolioAnalyzer/date"
)

type dividendCmd struct {
	date   string
	ticker string
	shares float64
	payout string
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a reinvested dividend payout" }
func (*dividendCmd) Usage() string {
	return `pa dividend -t <ticker> -n <shares> -a <payout> [-d <date>]

  Records a dividend payout reinvested into fractional shares. The payout
  is the whole dollar amount received; the invested capital grows by the
  payout, not by shares times price.
`
}

func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Payout date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.Float64Var(&c.shares, "n", 0, "Fractional shares the payout bought")
	f.StringVar(&c.payout, "a", "", "Dividend payout in dollars")
}

func (c *dividendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.shares <= 0 || c.payout == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	ticker, err := normalizeTicker(c.ticker)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	payout, err := parseAmount(c.payout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summary, err := ledger.Apply(ctx, portfolio.NewDividend(day, ticker, c.shares, payout))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Reinvested %s of %s into %g shares, %d trading days updated.\n",
		c.payout, ticker, c.shares, summary.Days)
	return saveLedger(store, ledger)
}
