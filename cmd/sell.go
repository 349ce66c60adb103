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

type sellCmd struct {
	date   string
	ticker string
	shares float64
	price  string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares to reduce or close a position" }
func (*sellCmd) Usage() string {
	return `pa sell -t <ticker> -n <shares> -p <price> [-d <date>]

  Sells shares of an asset at a price per share. Selling more shares than
  held opens a short position. The ticker must already be on the books.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.Float64Var(&c.shares, "n", 0, "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if ledger.Asset(ticker) == nil {
		fmt.Fprintf(os.Stderr, "Cannot sell %s: never traded. Buy it first.\n", ticker)
		return subcommands.ExitUsageError
	}

	summary, err := ledger.Apply(ctx, portfolio.NewSell(day, ticker, c.shares, price))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Sold %g %s at %g, %d trading days updated.\n", c.shares, ticker, price, summary.Days)
	return saveLedger(store, ledger)
}
