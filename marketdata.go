package portfolio

import (
	"context"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// Gateway fetches daily market history.
type Gateway interface {
	// Fetch returns one date-ascending slice of asset records per
	// requested ticker, covering the trading days inside r. The fetch
	// fails fast: the first ticker that errors aborts the whole request
	// and no partial result is returned.
	Fetch(ctx context.Context, tickers []string, r date.Range) (map[string][]DailyRecord, error)
}
