package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// StaleAfter is how long fetched market data stays current before a
// refresh is due.
const StaleAfter = 10 * time.Minute

// Unavailable marks a figure that cannot be computed from the data on
// hand, such as a percentage return on zero invested capital.
const Unavailable = math.MaxFloat64

// Ledger holds the portfolio state: the merged daily series, one series
// per traded asset, the allocation table and the transaction log. All
// methods are safe for concurrent use. Mutations are serialized through a
// single-writer gate with room for exactly one waiter; a request arriving
// while both slots are taken fails fast with ErrLedgerBusy.
type Ledger struct {
	gateway Gateway
	log     zerolog.Logger

	gate    chan struct{}
	waiting atomic.Bool

	mu          sync.Mutex
	allocations Allocations
	portfolio   *TimeSeries
	assets      map[string]*TimeSeries
	txs         []Transaction // newest first
	lastUpdate  time.Time
	dirty       bool
}

// NewLedger returns an empty ledger fetching market data through gw.
func NewLedger(gw Gateway, log zerolog.Logger) *Ledger {
	return &Ledger{
		gateway:     gw,
		log:         log.With().Str("component", "ledger").Logger(),
		gate:        make(chan struct{}, 1),
		allocations: make(Allocations),
		portfolio:   NewTimeSeries(nil),
		assets:      make(map[string]*TimeSeries),
	}
}

// PatchSummary describes the effect of a committed transaction.
type PatchSummary struct {
	Ticker    string
	Patched   date.Range // span of trading days rewritten
	Days      int        // trading days patched
	NewTicker bool       // the asset's history was fetched for this transaction
}

// acquire admits one mutation. A second request parks in the single
// waiting slot until the gate frees or ctx is cancelled; any further
// request is turned away immediately.
func (l *Ledger) acquire(ctx context.Context) error {
	select {
	case l.gate <- struct{}{}:
		return nil
	default:
	}
	if !l.waiting.CompareAndSwap(false, true) {
		return ErrLedgerBusy
	}
	defer l.waiting.Store(false)
	select {
	case l.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrRequestCancelled, ctx.Err())
	}
}

func (l *Ledger) release() { <-l.gate }

// Apply commits tx. The asset's history is fetched first if the ticker
// has never been traded, then the suffix of both the asset and portfolio
// series from the transaction date onward is patched in place and the
// transaction is appended to the log. On any error the ledger state is
// unchanged.
func (l *Ledger) Apply(ctx context.Context, tx Transaction) (*PatchSummary, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()

	l.mu.Lock()
	_, known := l.assets[tx.Ticker]
	l.mu.Unlock()

	var fetched *TimeSeries
	if known {
		if err := l.alignAsset(ctx, tx.Ticker); err != nil {
			return nil, err
		}
	} else {
		var err error
		if fetched, err = l.fetchAsset(ctx, tx.Ticker); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if fetched != nil {
		l.assets[tx.Ticker] = fetched
	}
	summary, err := l.patch(tx)
	if err != nil {
		if fetched != nil {
			delete(l.assets, tx.Ticker)
		}
		return nil, err
	}
	summary.NewTicker = fetched != nil

	l.txs = append(l.txs, tx)
	sort.SliceStable(l.txs, func(i, j int) bool { return l.txs[i].Before(l.txs[j]) })
	l.dirty = true

	l.log.Info().
		Str("ticker", tx.Ticker).
		Str("type", tx.Type()).
		Stringer("date", tx.Date).
		Int("days", summary.Days).
		Msg("transaction committed")
	return summary, nil
}

// Undo reverses a previously committed transaction by applying its
// inverse, removes it from the log and drops portfolio records older than
// the earliest transaction still on the books. No market data is fetched.
func (l *Ledger) Undo(ctx context.Context, tx Transaction) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.txs, tx)
	if i < 0 {
		return fmt.Errorf("transaction not found in log: %s %s on %s", tx.Type(), tx.Ticker, tx.Date)
	}
	l.txs = append(l.txs[:i], l.txs[i+1:]...)

	if _, err := l.patch(tx.Inverse()); err != nil {
		l.txs = append(l.txs, tx)
		sort.SliceStable(l.txs, func(i, j int) bool { return l.txs[i].Before(l.txs[j]) })
		return err
	}

	if len(l.txs) == 0 {
		l.portfolio.Truncate(date.Date{})
		l.allocations = make(Allocations)
	} else {
		l.portfolio.Truncate(l.txs[len(l.txs)-1].Date)
	}
	l.dirty = true

	l.log.Info().
		Str("ticker", tx.Ticker).
		Str("type", tx.Type()).
		Stringer("date", tx.Date).
		Msg("transaction undone")
	return nil
}

// indexOf finds tx in the log, or -1.
func indexOf(txs []Transaction, tx Transaction) int {
	for i, t := range txs {
		if t == tx {
			return i
		}
	}
	return -1
}

// patch rewrites the last records of the asset and portfolio series to
// fold in tx, aligned by position from the end. When the portfolio series
// is younger than the patched span, the leading deltas become raw new
// records so the portfolio history grows backwards to the transaction
// date. Caller holds l.mu.
func (l *Ledger) patch(tx Transaction) (*PatchSummary, error) {
	asset := l.assets[tx.Ticker]
	suffix, ok := asset.SuffixFrom(tx.Date)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidTransactionDate, tx.Ticker, tx.Date)
	}

	portIdx := l.portfolio.Len() - len(suffix)
	if !l.portfolio.Empty() {
		// The last-k alignment pairs records by position from the end, so
		// both series must end on the same trading day and the patched
		// span must anchor on the same date in both.
		if l.portfolio.Last().Date != asset.Last().Date {
			return nil, fmt.Errorf("series misaligned: portfolio ends %s, %s ends %s",
				l.portfolio.Last().Date, tx.Ticker, asset.Last().Date)
		}
		if portIdx >= 0 && l.portfolio.At(portIdx).Date != suffix[0].Date {
			return nil, fmt.Errorf("series misaligned: portfolio holds %s where %s holds %s",
				l.portfolio.At(portIdx).Date, tx.Ticker, suffix[0].Date)
		}
	}

	assetIdx := asset.Len() - len(suffix)
	sign := 1.0
	if tx.Side == Sell {
		sign = -1
	}

	updatedPort := make([]DailyRecord, 0, len(suffix))
	updatedAsset := make([]DailyRecord, 0, len(suffix))
	for j, day := range suffix {
		openDelta := sign * day.Open * tx.Shares
		closeDelta := sign * day.Close * tx.Shares
		moneyDelta := sign * tx.MoneyAmount()

		port := DailyRecord{Kind: PortfolioRecord, Date: day.Date}
		if i := portIdx + j; i >= 0 {
			curr := l.portfolio.At(i)
			port.Open = curr.Open + openDelta
			port.Close = curr.Close + closeDelta
			port.Invested = curr.Invested + moneyDelta
		} else {
			port.Open = openDelta
			port.Close = closeDelta
			port.Invested = moneyDelta
		}

		day.Invested += moneyDelta
		day.Shares += sign * tx.Shares

		updatedPort = append(updatedPort, port)
		updatedAsset = append(updatedAsset, day)
	}

	l.allocations.Apply(tx)
	l.portfolio.Patch(updatedPort, portIdx)
	asset.Patch(updatedAsset, assetIdx)

	return &PatchSummary{
		Ticker:  tx.Ticker,
		Patched: date.Range{From: tx.Date, To: asset.Last().Date},
		Days:    len(suffix),
	}, nil
}

// fetchAsset pulls the full available history for ticker, with zero
// position fields. The caller registers the returned series only once the
// transaction is validated, so a rejected transaction leaves no trace.
func (l *Ledger) fetchAsset(ctx context.Context, ticker string) (*TimeSeries, error) {
	r := date.Range{From: date.Today().AddWeeks(-52 * 10), To: date.Today()}
	histories, err := l.gateway.Fetch(ctx, []string{ticker}, r)
	if err != nil {
		return nil, err
	}
	series := NewTimeSeries(histories[ticker])
	series.Cap(MaxAssetRecords)

	l.log.Debug().Str("ticker", ticker).Int("records", series.Len()).Msg("fetched asset history")
	return series, nil
}

// alignAsset extends an asset series that has fallen behind the portfolio
// series. A series retained after its position collapsed is skipped by
// Refresh, so it misses the trading days later refreshes appended to the
// portfolio; patching against it would pair records from different days.
func (l *Ledger) alignAsset(ctx context.Context, ticker string) error {
	l.mu.Lock()
	asset := l.assets[ticker]
	var from date.Date
	stale := false
	if !asset.Empty() && !l.portfolio.Empty() && asset.Last().Date.Before(l.portfolio.Last().Date) {
		from = asset.Last().Date
		stale = true
	}
	l.mu.Unlock()
	if !stale {
		return nil
	}

	histories, err := l.gateway.Fetch(ctx, []string{ticker}, date.Range{From: from, To: date.Today()})
	if err != nil {
		return err
	}

	l.mu.Lock()
	asset.Splice(histories[ticker])
	asset.Cap(MaxAssetRecords)
	l.mu.Unlock()

	l.log.Debug().Str("ticker", ticker).Stringer("from", from).Msg("realigned stale asset history")
	return nil
}

// Refresh brings every held asset's series up to date and extends the
// portfolio series with the merged value of the new trading days. It is a
// no-op while the last fetch is newer than StaleAfter, unless force is
// set. A fetch that yields no new trading days counts as already current.
// The returned bool reports whether anything changed.
func (l *Ledger) Refresh(ctx context.Context, force bool) (bool, error) {
	if err := l.acquire(ctx); err != nil {
		return false, err
	}
	defer l.release()

	l.mu.Lock()
	stale := time.Since(l.lastUpdate) > StaleAfter && len(l.allocations) > 0
	tickers := l.allocations.Tickers()
	from := date.FromTime(l.lastUpdate)
	l.mu.Unlock()

	if !force && !stale {
		return false, nil
	}
	if len(tickers) == 0 {
		return false, nil
	}

	histories, err := l.gateway.Fetch(ctx, tickers, date.Range{From: from, To: date.Today()})
	if errors.Is(err, ErrNoDataForRange) {
		l.mu.Lock()
		l.lastUpdate = time.Now()
		l.dirty = true
		l.mu.Unlock()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	base := histories[tickers[0]]
	for _, t := range tickers {
		if len(histories[t]) != len(base) {
			return false, &TransportError{
				Op:  "align refresh data",
				Err: fmt.Errorf("%s returned %d days, %s returned %d", tickers[0], len(base), t, len(histories[t])),
			}
		}
	}

	for _, t := range tickers {
		asset, ok := l.assets[t]
		if !ok {
			asset = NewTimeSeries(nil)
			l.assets[t] = asset
		}
		asset.Splice(histories[t])
		asset.Cap(MaxAssetRecords)
	}

	invested := 0.0
	if !l.portfolio.Empty() {
		invested = l.portfolio.Last().Invested
	}
	merged := make([]DailyRecord, len(base))
	for i := range base {
		var open, close float64
		for _, t := range tickers {
			day := histories[t][i]
			shares := l.allocations[t].Shares
			open += day.Open * shares
			close += day.Close * shares
		}
		merged[i] = DailyRecord{Kind: PortfolioRecord, Date: base[i].Date, Open: open, Close: close, Invested: invested}
	}
	l.portfolio.Splice(merged)

	l.lastUpdate = time.Now()
	l.dirty = true

	l.log.Info().Int("tickers", len(tickers)).Int("days", len(base)).Msg("market data refreshed")
	return true, nil
}

// Summary holds the headline portfolio figures. While net invested
// capital is zero or negative (the portfolio is net short or fully
// offset), Invested is reported as zero, Profit counts any freed capital
// as gain and Return is Unavailable.
type Summary struct {
	Value      float64
	Invested   float64
	Profit     float64
	Return     float64
	LastUpdate time.Time
}

// Summarize computes the headline figures from the latest portfolio
// record.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{LastUpdate: l.lastUpdate}
	if l.portfolio.Empty() {
		return s
	}
	last := l.portfolio.Last()
	s.Value = last.Close
	if last.Invested <= 0 {
		s.Invested = 0
		s.Profit = s.Value + math.Abs(last.Invested)
		s.Return = Unavailable
	} else {
		s.Invested = last.Invested
		s.Profit = s.Value - s.Invested
		s.Return = (s.Value - s.Invested) / s.Invested * 100
	}
	return s
}

// Transactions returns a copy of the log, newest first.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transaction(nil), l.txs...)
}

// CurrentAllocations returns a copy of the allocation table.
func (l *Ledger) CurrentAllocations() Allocations {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(Allocations, len(l.allocations))
	for t, a := range l.allocations {
		out[t] = a
	}
	return out
}

// Portfolio returns a snapshot of the merged portfolio series.
func (l *Ledger) Portfolio() *TimeSeries {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewTimeSeries(append([]DailyRecord(nil), l.portfolio.Records()...))
}

// Asset returns a snapshot of one asset's series, or nil if the ticker
// was never traded.
func (l *Ledger) Asset(ticker string) *TimeSeries {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.assets[ticker]
	if !ok {
		return nil
	}
	return NewTimeSeries(append([]DailyRecord(nil), s.Records()...))
}

// Dirty reports whether the ledger holds changes not yet persisted.
func (l *Ledger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// LastUpdate is the time of the most recent market data fetch.
func (l *Ledger) LastUpdate() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastUpdate
}

// restore installs persisted state into a freshly built ledger. Used by
// the store when loading.
func (l *Ledger) restore(allocations Allocations, portfolio *TimeSeries, assets map[string]*TimeSeries, txs []Transaction, lastUpdate time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if allocations != nil {
		l.allocations = allocations
	}
	if portfolio != nil {
		l.portfolio = portfolio
	}
	if assets != nil {
		l.assets = assets
	}
	l.txs = append([]Transaction(nil), txs...)
	sort.SliceStable(l.txs, func(i, j int) bool { return l.txs[i].Before(l.txs[j]) })
	l.lastUpdate = lastUpdate
	l.dirty = false
}
