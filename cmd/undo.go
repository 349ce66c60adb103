package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type undoCmd struct {
	index int
}

func (*undoCmd) Name() string     { return "undo" }
func (*undoCmd) Synopsis() string { return "reverse a committed transaction" }
func (*undoCmd) Usage() string {
	return `pa undo [-i <index>]

  Reverses a committed transaction and removes it from the log. The index
  refers to the listing of 'pa tx', newest first; the default reverses
  the most recent transaction.
`
}

func (c *undoCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.index, "i", 0, "Index of the transaction to reverse, as listed by 'pa tx'")
}

func (c *undoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	txs := ledger.Transactions()
	if len(txs) == 0 {
		fmt.Fprintln(os.Stderr, "No transactions to undo.")
		return subcommands.ExitFailure
	}
	if c.index < 0 || c.index >= len(txs) {
		fmt.Fprintf(os.Stderr, "Index %d out of range, %d transactions on the books.\n", c.index, len(txs))
		return subcommands.ExitUsageError
	}

	tx := txs[c.index]
	if err := ledger.Undo(ctx, tx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Undid %s of %s on %s.\n", tx.Type(), tx.Ticker, tx.Date)
	return saveLedger(store, ledger)
}
