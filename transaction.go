package portfolio

import (
	"fmt"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// Side is the direction of a transaction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ParseSide converts a wire or CLI token into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown transaction side %q", s)
}

// Transaction is one committed operation against the ledger.
//
// For an ordinary trade the money moved is Price times Shares. A dividend
// reinvestment is special: Price holds the whole payout, Shares the
// fractional shares it bought, and the money moved is the payout alone.
// The Dividend marker survives inversion so an undo reverses exactly the
// amount the reinvestment committed.
type Transaction struct {
	Side     Side
	Dividend bool
	Date     date.Date
	Ticker   string
	Shares   float64
	Price    float64
}

// NewBuy returns a buy of shares of ticker at price per share on day d.
func NewBuy(d date.Date, ticker string, shares, price float64) Transaction {
	return Transaction{Side: Buy, Date: d, Ticker: ticker, Shares: shares, Price: price}
}

// NewSell returns a sale of shares of ticker at price per share on day d.
func NewSell(d date.Date, ticker string, shares, price float64) Transaction {
	return Transaction{Side: Sell, Date: d, Ticker: ticker, Shares: shares, Price: price}
}

// NewDividend returns a reinvestment of a payout of ticker on day d.
// payout is the dividend amount in dollars, shares the fractional shares
// it purchased.
func NewDividend(d date.Date, ticker string, shares, payout float64) Transaction {
	return Transaction{Side: Buy, Dividend: true, Date: d, Ticker: ticker, Shares: shares, Price: payout}
}

// Inverse returns the transaction that exactly reverses t. Only the side
// flips; the dividend marker, shares and price carry over so applying
// t.Inverse() after t restores every patched record.
func (t Transaction) Inverse() Transaction {
	if t.Side == Buy {
		t.Side = Sell
	} else {
		t.Side = Buy
	}
	return t
}

// MoneyAmount is the capital the transaction moves: the full payout for a
// dividend reinvestment, price times shares otherwise.
func (t Transaction) MoneyAmount() float64 {
	if t.Dividend {
		return t.Price
	}
	return t.Price * t.Shares
}

// Type renders the transaction kind for display.
func (t Transaction) Type() string {
	if t.Dividend {
		return "Div. Reinvestment"
	}
	if t.Side == Buy {
		return "Buy"
	}
	return "Sell"
}

// Before orders transactions newest first, which is how the ledger keeps
// its log.
func (t Transaction) Before(o Transaction) bool {
	return o.Date.Before(t.Date)
}
