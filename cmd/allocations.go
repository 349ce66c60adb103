package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/JScottR45/PortfolioAnalyzer/renderer"
)

type allocationsCmd struct{}

func (*allocationsCmd) Name() string     { return "allocations" }
func (*allocationsCmd) Synopsis() string { return "show capital committed per asset" }
func (*allocationsCmd) Usage() string {
	return `pa allocations

  Shows the open positions with the dollars invested, shares held and the
  share of total invested capital each position represents.
`
}

func (*allocationsCmd) SetFlags(*flag.FlagSet) {}

func (c *allocationsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AllocationsMarkdown(ledger.CurrentAllocations()))
	return saveLedger(store, ledger)
}
