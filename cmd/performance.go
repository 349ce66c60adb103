package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
	"github.com/JScottR45/PortfolioAnalyzer/date"
	"github.com/JScottR45/PortfolioAnalyzer/renderer"
)

type performanceCmd struct {
	start string
	end   string
	mode  string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "chart portfolio performance over a date range" }
func (*performanceCmd) Usage() string {
	return `pa performance [-s <start>] [-e <end>] [-mode profit|return]

  Samples the portfolio's performance between two dates. Bounds outside
  the recorded history clamp to the nearest recorded day.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date (YYYY-MM-DD), default is the oldest record")
	f.StringVar(&c.end, "e", date.Today().String(), "End date (YYYY-MM-DD)")
	f.StringVar(&c.mode, "mode", "profit", "What to chart: profit (dollars made) or return (percent)")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var mode portfolio.Mode
	switch c.mode {
	case "profit":
		mode = portfolio.GrossProfit
	case "return":
		mode = portfolio.PercentReturn
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q, want profit or return.\n", c.mode)
		return subcommands.ExitUsageError
	}

	end, err := date.Parse(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	port := ledger.Portfolio()
	start := port.Bounds().From
	if c.start != "" {
		if start, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	points, covered := portfolio.ExtractRange(port, date.Range{From: start, To: end}, mode)
	printMarkdown(renderer.PerformanceMarkdown(points, mode, covered))
	return saveLedger(store, ledger)
}
