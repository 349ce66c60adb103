package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Allocation is the current position in one asset: the capital committed
// to it and the shares held. Either can be negative while a position is
// short.
type Allocation struct {
	Invested float64 `json:"invested"`
	Shares   float64 `json:"shares"`
}

// Allocations maps ticker symbols to current positions. A ticker with no
// entry has no open position.
type Allocations map[string]Allocation

// collapsed reports whether shares rounds to zero at four decimal places.
// Share counts accumulate float error across buys and sells, so a
// position closed by an exactly offsetting trade can end up at 1e-7
// shares instead of zero. Truncating toward zero at four places treats
// those residues, positive or negative, as a closed position.
func collapsed(shares float64) bool {
	return decimal.NewFromFloat(shares).RoundDown(4).IsZero()
}

// Add folds the buy side of tx into the table. An offsetting buy that
// brings a short position back to (near) zero shares deletes the entry.
func (a Allocations) Add(tx Transaction) {
	curr, ok := a[tx.Ticker]
	if !ok {
		a[tx.Ticker] = Allocation{Invested: tx.MoneyAmount(), Shares: tx.Shares}
		return
	}
	shares := curr.Shares + tx.Shares
	if collapsed(shares) {
		delete(a, tx.Ticker)
		return
	}
	a[tx.Ticker] = Allocation{Invested: curr.Invested + tx.MoneyAmount(), Shares: shares}
}

// Remove folds the sell side of tx into the table. Selling an asset with
// no entry opens a short position; selling the whole position deletes the
// entry.
func (a Allocations) Remove(tx Transaction) {
	curr, ok := a[tx.Ticker]
	if !ok {
		a[tx.Ticker] = Allocation{Invested: -tx.MoneyAmount(), Shares: -tx.Shares}
		return
	}
	shares := curr.Shares - tx.Shares
	if collapsed(shares) {
		delete(a, tx.Ticker)
		return
	}
	a[tx.Ticker] = Allocation{Invested: curr.Invested - tx.MoneyAmount(), Shares: shares}
}

// Apply folds tx into the table according to its side.
func (a Allocations) Apply(tx Transaction) {
	if tx.Side == Buy {
		a.Add(tx)
	} else {
		a.Remove(tx)
	}
}

// Tickers returns the allocated tickers in lexical order.
func (a Allocations) Tickers() []string {
	tickers := make([]string, 0, len(a))
	for t := range a {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Invested is the total capital currently committed across all positions.
func (a Allocations) Invested() float64 {
	var sum float64
	for _, alloc := range a {
		sum += alloc.Invested
	}
	return sum
}
