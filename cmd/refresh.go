package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "force a market data refresh" }
func (*refreshCmd) Usage() string {
	return `pa refresh

  Fetches the latest quotes for every held asset and extends the
  portfolio history, even when the data is not yet stale.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := logger()
	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	changed, err := ledger.Refresh(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("refresh failed")
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if changed {
		fmt.Println("Market data refreshed.")
	} else {
		fmt.Println("Already up to date.")
	}
	return saveLedger(store, ledger)
}
