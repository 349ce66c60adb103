package portfolio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// yahooChartURL is the public Yahoo Finance v8 chart endpoint.
const yahooChartURL = "https://query2.finance.yahoo.com/v8/finance/chart"

// YahooGateway fetches daily quotes from Yahoo Finance. Responses are
// cached on disk for the rest of the day, so repeated fetches for the
// same ticker and range are free.
type YahooGateway struct {
	client *http.Client
	base   string
	log    zerolog.Logger
}

// NewYahooGateway returns a gateway backed by the public Yahoo endpoint.
func NewYahooGateway(log zerolog.Logger) *YahooGateway {
	return &YahooGateway{
		client: daily(),
		base:   yahooChartURL,
		log:    log.With().Str("component", "yahoo").Logger(),
	}
}

// Fetch requests every ticker concurrently and joins the results. The
// first failure cancels the remaining requests and becomes the error of
// the whole fetch.
func (y *YahooGateway) Fetch(ctx context.Context, tickers []string, r date.Range) (map[string][]DailyRecord, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string][]DailyRecord, len(tickers))

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			records, err := y.fetchOne(ctx, ticker, r)
			if err != nil {
				return err
			}
			mu.Lock()
			out[ticker] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// chartResponse is the part of the Yahoo v8 chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open []float64 `json:"open"`
					High []float64 `json:"high"`
					Low  []float64 `json:"low"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooGateway) fetchOne(ctx context.Context, ticker string, r date.Range) ([]DailyRecord, error) {
	// period2 is exclusive, so push it past the end of the last day.
	addr := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		y.base, url.PathEscape(ticker), r.From.Unix(), r.To.Add(1).Unix())

	var resp chartResponse
	if err := jwget(ctx, y.client, addr, &resp); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestCancelled, ctx.Err())
		}
		return nil, &TransportError{Op: "fetch " + ticker, Err: err}
	}

	if e := resp.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, &TransportError{Op: "fetch " + ticker, Err: fmt.Errorf("%s: %s", e.Code, e.Description)}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 || len(result.Indicators.Adjclose) == 0 {
		return nil, fmt.Errorf("%w: %s between %s and %s", ErrNoDataForRange, ticker, r.From, r.To)
	}

	quote := result.Indicators.Quote[0]
	closes := result.Indicators.Adjclose[0].Adjclose
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(closes) != n {
		return nil, &TransportError{
			Op:  "decode " + ticker,
			Err: fmt.Errorf("ragged arrays: %d timestamps, %d open, %d high, %d low, %d close",
				n, len(quote.Open), len(quote.High), len(quote.Low), len(closes)),
		}
	}

	records := make([]DailyRecord, n)
	for i, ts := range result.Timestamp {
		records[i] = DailyRecord{
			Kind:  AssetRecord,
			Date:  date.FromUnix(ts),
			Open:  quote.Open[i],
			High:  quote.High[i],
			Low:   quote.Low[i],
			Close: closes[i],
		}
	}
	y.log.Debug().Str("ticker", ticker).Int("days", n).Msg("history fetched")
	return records, nil
}
