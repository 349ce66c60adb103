package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// fakeGateway serves canned histories and counts fetches.
type fakeGateway struct {
	histories map[string][]DailyRecord
	err       error
	calls     int
}

func (g *fakeGateway) Fetch(_ context.Context, tickers []string, _ date.Range) (map[string][]DailyRecord, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make(map[string][]DailyRecord, len(tickers))
	for _, t := range tickers {
		h, ok := g.histories[t]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, t)
		}
		out[t] = append([]DailyRecord(nil), h...)
	}
	return out, nil
}

func testLedger(histories map[string][]DailyRecord) (*Ledger, *fakeGateway) {
	gw := &fakeGateway{histories: histories}
	return NewLedger(gw, zerolog.Nop()), gw
}

// checkMergeInvariant verifies that every portfolio record's close equals
// the sum over assets of shares held that day times that day's close.
func checkMergeInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	port := l.Portfolio()
	for _, day := range port.Records() {
		var want float64
		for ticker := range l.assets {
			asset := l.Asset(ticker)
			for _, ad := range asset.Records() {
				if ad.Date == day.Date {
					want += ad.Shares * ad.Close
				}
			}
		}
		if math.Abs(day.Close-want) > 1e-6 {
			t.Errorf("portfolio close on %s = %g, asset merge = %g", day.Date, day.Close, want)
		}
	}
}

func TestApplyBuyPatchesBothSeries(t *testing.T) {
	start := day(2026, time.March, 2)
	l, gw := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53}, start),
	})
	ctx := context.Background()

	summary, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if summary.Days != 3 || !summary.NewTicker {
		t.Errorf("summary = %+v, want 3 days patched on a new ticker", summary)
	}
	if gw.calls != 1 {
		t.Errorf("gateway fetched %d times, want 1", gw.calls)
	}

	port := l.Portfolio()
	if port.Len() != 3 {
		t.Fatalf("portfolio length = %d, want 3", port.Len())
	}
	wantCloses := []float64{500, 520, 530}
	for i, want := range wantCloses {
		if got := port.At(i).Close; math.Abs(got-want) > 1e-9 {
			t.Errorf("portfolio close[%d] = %g, want %g", i, got, want)
		}
		if got := port.At(i).Invested; got != 500 {
			t.Errorf("portfolio invested[%d] = %g, want 500", i, got)
		}
	}

	asset := l.Asset("AAPL")
	for i := 0; i < asset.Len(); i++ {
		if got := asset.At(i).Shares; got != 10 {
			t.Errorf("asset shares[%d] = %g, want 10", i, got)
		}
		if got := asset.At(i).Invested; got != 500 {
			t.Errorf("asset invested[%d] = %g, want 500", i, got)
		}
	}
	checkMergeInvariant(t, l)
}

func TestApplyMidHistoryLeavesOlderDaysAlone(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53, 54}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	if _, err := l.Apply(ctx, NewBuy(start.Add(2), "AAPL", 5, 53)); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	port := l.Portfolio()
	if got := port.At(1).Close; math.Abs(got-520) > 1e-9 {
		t.Errorf("day before second buy changed, close = %g, want 520", got)
	}
	if got := port.At(2).Close; math.Abs(got-(530+5*53)) > 1e-9 {
		t.Errorf("close on second buy date = %g, want %g", got, 530+5*53.0)
	}
	asset := l.Asset("AAPL")
	if got := asset.At(1).Shares; got != 10 {
		t.Errorf("asset shares before second buy = %g, want 10", got)
	}
	if got := asset.At(2).Shares; got != 15 {
		t.Errorf("asset shares on second buy date = %g, want 15", got)
	}
	checkMergeInvariant(t, l)
}

func TestApplyGrowsPortfolioBackwards(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53, 54, 55}, start),
		"MSFT": assetDays([]float64{100, 101, 102, 103, 104}, start),
	})
	ctx := context.Background()

	// AAPL bought on day 3: portfolio covers days 3..4.
	if _, err := l.Apply(ctx, NewBuy(start.Add(3), "AAPL", 10, 54)); err != nil {
		t.Fatalf("AAPL buy: %v", err)
	}
	if got := l.Portfolio().Len(); got != 2 {
		t.Fatalf("portfolio length = %d, want 2", got)
	}

	// MSFT bought on day 1 reaches further back: days 1..2 become raw
	// MSFT-only records, days 3..4 merge both.
	if _, err := l.Apply(ctx, NewBuy(start.Add(1), "MSFT", 2, 101)); err != nil {
		t.Fatalf("MSFT buy: %v", err)
	}

	port := l.Portfolio()
	if port.Len() != 4 {
		t.Fatalf("portfolio length = %d, want 4", port.Len())
	}
	if port.First().Date != start.Add(1) {
		t.Errorf("portfolio now starts at %s, want %s", port.First().Date, start.Add(1))
	}
	if got := port.At(0).Close; math.Abs(got-202) > 1e-9 {
		t.Errorf("backfilled close = %g, want 202 (MSFT only)", got)
	}
	if got := port.At(2).Close; math.Abs(got-(540+206)) > 1e-9 {
		t.Errorf("merged close = %g, want 746", got)
	}
	checkMergeInvariant(t, l)
}

func TestApplyAfterRefreshRealignsCollapsedTicker(t *testing.T) {
	start := day(2026, time.March, 2)
	l, gw := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
		"MSFT": assetDays([]float64{100, 101}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "MSFT", 2, 100)); err != nil {
		t.Fatalf("MSFT buy: %v", err)
	}
	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("AAPL buy: %v", err)
	}
	// Close the whole AAPL position: the allocation collapses but the
	// series stays registered.
	if _, err := l.Apply(ctx, NewSell(start.Add(1), "AAPL", 10, 52)); err != nil {
		t.Fatalf("AAPL sell: %v", err)
	}

	// The refresh covers held tickers only, so MSFT and the portfolio
	// gain two trading days that the retained AAPL series never sees.
	gw.histories["MSFT"] = []DailyRecord{
		{Kind: AssetRecord, Date: start.Add(1), Open: 100, High: 102, Low: 99, Close: 101},
		{Kind: AssetRecord, Date: start.Add(2), Open: 101, High: 103, Low: 100, Close: 102},
		{Kind: AssetRecord, Date: start.Add(3), Open: 102, High: 104, Low: 101, Close: 103},
	}
	if _, err := l.Refresh(ctx, true); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := l.Portfolio().Last().Date; got != start.Add(3) {
		t.Fatalf("portfolio ends %s, want %s", got, start.Add(3))
	}

	// Re-buying the collapsed ticker must first bring its series up to
	// the portfolio's last day, then patch date-aligned records.
	gw.histories["AAPL"] = []DailyRecord{
		{Kind: AssetRecord, Date: start.Add(1), Open: 51, High: 53, Low: 50, Close: 52},
		{Kind: AssetRecord, Date: start.Add(2), Open: 52, High: 54, Low: 51, Close: 53},
		{Kind: AssetRecord, Date: start.Add(3), Open: 53, High: 55, Low: 52, Close: 54},
	}
	fetches := gw.calls
	if _, err := l.Apply(ctx, NewBuy(start.Add(1), "AAPL", 5, 52)); err != nil {
		t.Fatalf("re-buy: %v", err)
	}
	if gw.calls != fetches+1 {
		t.Errorf("re-buy fetched %d times, want 1 realignment fetch", gw.calls-fetches)
	}

	port := l.Portfolio()
	if port.Len() != 4 {
		t.Fatalf("portfolio length = %d, want 4", port.Len())
	}
	for i := 1; i < port.Len(); i++ {
		if !port.At(i - 1).Date.Before(port.At(i).Date) {
			t.Fatalf("portfolio dates not ascending: %s then %s", port.At(i-1).Date, port.At(i).Date)
		}
	}
	wantCloses := []float64{700, 202 + 5*52, 204 + 5*53, 206 + 5*54}
	for i, want := range wantCloses {
		if got := port.At(i).Close; math.Abs(got-want) > 1e-9 {
			t.Errorf("portfolio close[%d] = %g, want %g", i, got, want)
		}
	}
	if got := port.Last().Invested; math.Abs(got-440) > 1e-9 {
		t.Errorf("portfolio invested = %g, want 440", got)
	}

	asset := l.Asset("AAPL")
	if asset.Len() != 4 || asset.Last().Date != start.Add(3) {
		t.Fatalf("AAPL series length %d ending %s, want 4 ending %s", asset.Len(), asset.Last().Date, start.Add(3))
	}
	if got := asset.Last().Shares; got != 5 {
		t.Errorf("AAPL shares on last day = %g, want 5", got)
	}
	if got := l.CurrentAllocations()["AAPL"].Shares; got != 5 {
		t.Errorf("AAPL allocation = %g shares, want 5", got)
	}
}

func TestApplyInvalidDateLeavesLedgerUnchanged(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
	})
	ctx := context.Background()

	_, err := l.Apply(ctx, NewBuy(start.Add(10), "AAPL", 10, 50))
	if !errors.Is(err, ErrInvalidTransactionDate) {
		t.Fatalf("err = %v, want ErrInvalidTransactionDate", err)
	}
	if !l.Portfolio().Empty() {
		t.Errorf("portfolio not empty after failed transaction")
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("transaction log not empty after failed transaction")
	}
	if len(l.CurrentAllocations()) != 0 {
		t.Errorf("allocations not empty after failed transaction")
	}
	if l.Asset("AAPL") != nil {
		t.Errorf("asset history registered for a rejected transaction")
	}
}

func TestApplyUnknownTicker(t *testing.T) {
	l, _ := testLedger(map[string][]DailyRecord{})
	_, err := l.Apply(context.Background(), NewBuy(date.Today(), "NOPE", 1, 1))
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("err = %v, want ErrTickerNotFound", err)
	}
}

func TestUndoRestoresState(t *testing.T) {
	start := day(2026, time.March, 2)
	l, gw := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	before := l.Portfolio()
	beforeAllocs := l.CurrentAllocations()

	sell := NewSell(start.Add(1), "AAPL", 4, 52)
	if _, err := l.Apply(ctx, sell); err != nil {
		t.Fatalf("sell: %v", err)
	}
	fetches := gw.calls
	if err := l.Undo(ctx, sell); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if gw.calls != fetches {
		t.Errorf("undo fetched market data, %d extra calls", gw.calls-fetches)
	}

	after := l.Portfolio()
	if after.Len() != before.Len() {
		t.Fatalf("portfolio length = %d, want %d", after.Len(), before.Len())
	}
	for i := 0; i < after.Len(); i++ {
		a, b := after.At(i), before.At(i)
		if math.Abs(a.Close-b.Close) > 1e-9 || math.Abs(a.Invested-b.Invested) > 1e-9 {
			t.Errorf("record %d = %+v, want %+v", i, a, b)
		}
	}
	if got := l.CurrentAllocations()["AAPL"]; math.Abs(got.Shares-beforeAllocs["AAPL"].Shares) > 1e-9 {
		t.Errorf("allocation shares = %g, want %g", got.Shares, beforeAllocs["AAPL"].Shares)
	}
	if len(l.Transactions()) != 1 {
		t.Errorf("transaction log holds %d entries, want 1", len(l.Transactions()))
	}
	checkMergeInvariant(t, l)
}

func TestUndoLastTransactionClearsPortfolio(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
	})
	ctx := context.Background()

	buy := NewBuy(start, "AAPL", 10, 50)
	if _, err := l.Apply(ctx, buy); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := l.Undo(ctx, buy); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if !l.Portfolio().Empty() {
		t.Errorf("portfolio not cleared after undoing the only transaction")
	}
	if len(l.CurrentAllocations()) != 0 {
		t.Errorf("allocations not cleared after undoing the only transaction")
	}
	if l.Asset("AAPL") == nil {
		t.Errorf("asset history should be retained for future transactions")
	}
}

func TestUndoTruncatesToEarliestRemaining(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53, 54}, start),
	})
	ctx := context.Background()

	early := NewBuy(start, "AAPL", 10, 50)
	late := NewBuy(start.Add(2), "AAPL", 5, 53)
	if _, err := l.Apply(ctx, early); err != nil {
		t.Fatalf("early buy: %v", err)
	}
	if _, err := l.Apply(ctx, late); err != nil {
		t.Fatalf("late buy: %v", err)
	}

	if err := l.Undo(ctx, early); err != nil {
		t.Fatalf("undo: %v", err)
	}
	port := l.Portfolio()
	if port.First().Date != late.Date {
		t.Errorf("portfolio starts at %s, want %s after truncation", port.First().Date, late.Date)
	}
	checkMergeInvariant(t, l)
}

func TestUndoDividendReversesPayoutExactly(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"KO": assetDays([]float64{60, 61}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "KO", 100, 60)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	div := NewDividend(start.Add(1), "KO", 0.42, 25)
	if _, err := l.Apply(ctx, div); err != nil {
		t.Fatalf("dividend: %v", err)
	}
	if got := l.CurrentAllocations()["KO"].Invested; math.Abs(got-6025) > 1e-9 {
		t.Fatalf("invested after dividend = %g, want 6025", got)
	}

	if err := l.Undo(ctx, div); err != nil {
		t.Fatalf("undo: %v", err)
	}
	got := l.CurrentAllocations()["KO"]
	if math.Abs(got.Invested-6000) > 1e-9 {
		t.Errorf("invested after undo = %g, want 6000", got.Invested)
	}
	if math.Abs(got.Shares-100) > 1e-9 {
		t.Errorf("shares after undo = %g, want 100", got.Shares)
	}
}

func TestLedgerBusy(t *testing.T) {
	l, _ := testLedger(nil)
	l.gate <- struct{}{}
	l.waiting.Store(true)

	_, err := l.Apply(context.Background(), NewBuy(date.Today(), "AAPL", 1, 1))
	if !errors.Is(err, ErrLedgerBusy) {
		t.Fatalf("err = %v, want ErrLedgerBusy", err)
	}
}

func TestAcquireCancelledWhileWaiting(t *testing.T) {
	l, _ := testLedger(nil)
	l.gate <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Apply(ctx, NewBuy(date.Today(), "AAPL", 1, 1))
	if !errors.Is(err, ErrRequestCancelled) {
		t.Fatalf("err = %v, want ErrRequestCancelled", err)
	}
}

func TestRefreshExtendsSeries(t *testing.T) {
	start := day(2026, time.March, 2)
	history := assetDays([]float64{50, 52}, start)
	l, gw := testLedger(map[string][]DailyRecord{"AAPL": history})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// The next fetch returns a corrected quote for the last known day plus
	// one new trading day.
	gw.histories["AAPL"] = []DailyRecord{
		{Kind: AssetRecord, Date: start.Add(1), Open: 51, High: 53, Low: 50, Close: 52.5},
		{Kind: AssetRecord, Date: start.Add(2), Open: 52, High: 54, Low: 51, Close: 53},
	}

	changed, err := l.Refresh(ctx, true)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !changed {
		t.Fatalf("Refresh reported no change")
	}

	asset := l.Asset("AAPL")
	if asset.Len() != 3 {
		t.Fatalf("asset length = %d, want 3", asset.Len())
	}
	if got := asset.At(1).Close; got != 52.5 {
		t.Errorf("stale close not superseded, got %g, want 52.5", got)
	}

	port := l.Portfolio()
	if port.Len() != 3 {
		t.Fatalf("portfolio length = %d, want 3", port.Len())
	}
	if got := port.Last().Close; math.Abs(got-530) > 1e-9 {
		t.Errorf("extended portfolio close = %g, want 530", got)
	}
	if got := port.Last().Invested; got != 500 {
		t.Errorf("extended portfolio invested = %g, want 500 carried forward", got)
	}

	// Fresh data: an unforced refresh right after is a no-op.
	fetches := gw.calls
	if changed, err := l.Refresh(ctx, false); err != nil || changed {
		t.Errorf("unforced refresh changed = %v, err = %v, want no-op", changed, err)
	}
	if gw.calls != fetches {
		t.Errorf("unforced refresh fetched market data")
	}
}

func TestRefreshNoDataCountsAsCurrent(t *testing.T) {
	start := day(2026, time.March, 2)
	l, gw := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	gw.err = fmt.Errorf("%w: weekend", ErrNoDataForRange)
	before := l.LastUpdate()
	changed, err := l.Refresh(ctx, true)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if changed {
		t.Errorf("Refresh reported a change on empty range")
	}
	if !l.LastUpdate().After(before) {
		t.Errorf("last update not bumped when range was empty")
	}
}

func TestRefreshWithoutPositions(t *testing.T) {
	l, gw := testLedger(nil)
	if changed, err := l.Refresh(context.Background(), true); err != nil || changed {
		t.Fatalf("refresh of empty ledger changed = %v, err = %v", changed, err)
	}
	if gw.calls != 0 {
		t.Errorf("refresh of empty ledger hit the gateway")
	}
}

func TestSummarize(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	s := l.Summarize()
	if math.Abs(s.Value-520) > 1e-9 {
		t.Errorf("value = %g, want 520", s.Value)
	}
	if s.Invested != 500 {
		t.Errorf("invested = %g, want 500", s.Invested)
	}
	if math.Abs(s.Profit-20) > 1e-9 {
		t.Errorf("profit = %g, want 20", s.Profit)
	}
	if math.Abs(s.Return-4) > 1e-9 {
		t.Errorf("return = %g, want 4", s.Return)
	}
}

func TestSummarizeFullyOffsetInvested(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
		"MSFT": assetDays([]float64{100, 101}, start),
	})
	ctx := context.Background()

	// The short sale's proceeds exactly offset the long position's cost,
	// leaving invested capital at zero with a positive value.
	if _, err := l.Apply(ctx, NewBuy(start, "MSFT", 2, 100)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Apply(ctx, NewSell(start, "AAPL", 1, 200)); err != nil {
		t.Fatalf("sell: %v", err)
	}

	s := l.Summarize()
	if s.Invested != 0 {
		t.Errorf("invested = %g, want 0", s.Invested)
	}
	if s.Return != Unavailable {
		t.Errorf("return on zero invested = %g, want the Unavailable sentinel", s.Return)
	}
	if math.Abs(s.Value-150) > 1e-9 {
		t.Errorf("value = %g, want 150", s.Value)
	}
	if math.Abs(s.Profit-s.Value) > 1e-9 {
		t.Errorf("profit = %g, want %g", s.Profit, s.Value)
	}
}

func TestSummarizeNetShort(t *testing.T) {
	start := day(2026, time.March, 2)
	l, _ := testLedger(map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52}, start),
	})
	ctx := context.Background()

	if _, err := l.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Apply(ctx, NewSell(start.Add(1), "AAPL", 4, 200)); err != nil {
		t.Fatalf("sell: %v", err)
	}

	s := l.Summarize()
	if s.Invested != 0 {
		t.Errorf("net short invested = %g, want 0", s.Invested)
	}
	if s.Return != Unavailable {
		t.Errorf("net short return = %g, want the Unavailable sentinel", s.Return)
	}
	// Freed capital counts toward profit: value + |invested|.
	wantProfit := s.Value + 300
	if math.Abs(s.Profit-wantProfit) > 1e-9 {
		t.Errorf("profit = %g, want %g", s.Profit, wantProfit)
	}
}
