package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// TransactionsMarkdown renders the transaction log, newest first.
func TransactionsMarkdown(txs []portfolio.Transaction) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions on the books.")
		return b.String()
	}

	fmt.Fprintln(&b, "| # | Date | Type | Ticker | Amount | Shares |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|---:|---:|")
	for i, tx := range txs {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			i,
			tx.Date,
			tx.Type(),
			tx.Ticker,
			Dollars(tx.MoneyAmount()),
			Shares(tx.Shares),
		)
	}
	return b.String()
}
