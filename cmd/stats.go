package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
	"github.com/JScottR45/PortfolioAnalyzer/renderer"
)

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show gain/loss and 52-week statistics" }
func (*statsCmd) Usage() string {
	return `pa stats

  Shows day, month and year gain/loss for the portfolio and every held
  asset, plus 52-week quote statistics for assets with enough history.
`
}

func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	port := ledger.Portfolio()
	gains := []renderer.GainLossRow{{
		Name:  "Portfolio",
		Value: lastClose(port),
		Stats: portfolio.GainLossStats(port),
	}}

	var weeks []renderer.Week52Row
	for _, ticker := range ledger.CurrentAllocations().Tickers() {
		asset := ledger.Asset(ticker)
		if asset == nil {
			continue
		}
		gains = append(gains, renderer.GainLossRow{
			Name:  ticker,
			Value: lastClose(asset),
			Stats: portfolio.GainLossStats(asset),
		})
		if w, ok := portfolio.Week52Stats(asset); ok {
			weeks = append(weeks, renderer.Week52Row{Ticker: ticker, Stats: w})
		}
	}

	printMarkdown(renderer.StatsMarkdown(gains, weeks))
	return saveLedger(store, ledger)
}

func lastClose(s *portfolio.TimeSeries) float64 {
	if s.Empty() {
		return 0
	}
	return s.Last().Close
}
