package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/JScottR45/PortfolioAnalyzer/renderer"
)

type txCmd struct {
	head int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list committed transactions, newest first" }
func (*txCmd) Usage() string {
	return `pa tx [-head <n>]

  Lists committed transactions in date-descending order.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, ledger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	txs := ledger.Transactions()
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}

	printMarkdown(renderer.TransactionsMarkdown(txs))
	return saveLedger(store, ledger)
}
