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

type buyCmd struct {
	date   string
	ticker string
	shares float64
	price  string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `pa buy -t <ticker> -n <shares> -p <price> [-d <date>]

  Purchases shares of an asset at a price per share. The transaction is
  committed against every trading day from its date to the present.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.Float64Var(&c.shares, "n", 0, "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.shares <= 0 || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	ticker, err := normalizeTicker(c.ticker)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	price, err := parseAmount(c.price)
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

	summary, err := ledger.Apply(ctx, portfolio.NewBuy(day, ticker, c.shares, price))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Bought %g %s at %g, %d trading days updated.\n", c.shares, ticker, price, summary.Days)
	return saveLedger(store, ledger)
}
