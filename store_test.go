package portfolio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestOpenStoreInitializesStreams(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "records")
	store, err := OpenStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, name := range []string{portfolioFile, assetsFile, transactionsFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != `{"record":"eof"}`+"\n" {
			t.Errorf("%s initialized to %q, want a lone eof line", name, data)
		}
	}

	// A fresh store loads into an empty ledger.
	ledger, err := store.Load(&fakeGateway{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ledger.Transactions()) != 0 || len(ledger.CurrentAllocations()) != 0 {
		t.Error("fresh store loaded a non-empty ledger")
	}
	if ledger.Dirty() {
		t.Error("freshly loaded ledger is dirty")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	start := day(2026, time.March, 2)
	histories := map[string][]DailyRecord{
		"AAPL": assetDays([]float64{50, 52, 53}, start),
	}
	ledger, _ := testLedger(histories)
	ctx := context.Background()
	if _, err := ledger.Apply(ctx, NewBuy(start, "AAPL", 10, 50)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ledger.Apply(ctx, NewDividend(start.Add(1), "AAPL", 0.5, 26)); err != nil {
		t.Fatalf("apply dividend: %v", err)
	}
	if !ledger.Dirty() {
		t.Fatal("ledger not dirty after apply")
	}

	if err := store.Save(ledger); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ledger.Dirty() {
		t.Error("ledger still dirty after save")
	}

	loaded, err := store.Load(&fakeGateway{histories: histories}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	wantTxs := ledger.Transactions()
	gotTxs := loaded.Transactions()
	if len(gotTxs) != len(wantTxs) {
		t.Fatalf("loaded %d transactions, want %d", len(gotTxs), len(wantTxs))
	}
	for i := range wantTxs {
		if gotTxs[i] != wantTxs[i] {
			t.Errorf("transaction %d = %+v, want %+v", i, gotTxs[i], wantTxs[i])
		}
	}

	wantAllocs := ledger.CurrentAllocations()
	gotAllocs := loaded.CurrentAllocations()
	if len(gotAllocs) != len(wantAllocs) || gotAllocs["AAPL"] != wantAllocs["AAPL"] {
		t.Errorf("allocations = %+v, want %+v", gotAllocs, wantAllocs)
	}

	wantPort := ledger.Portfolio().Records()
	gotPort := loaded.Portfolio().Records()
	if len(gotPort) != len(wantPort) {
		t.Fatalf("loaded %d portfolio records, want %d", len(gotPort), len(wantPort))
	}
	for i := range wantPort {
		if gotPort[i] != wantPort[i] {
			t.Errorf("portfolio record %d = %+v, want %+v", i, gotPort[i], wantPort[i])
		}
	}

	wantAsset := ledger.Asset("AAPL").Records()
	gotAsset := loaded.Asset("AAPL").Records()
	if len(gotAsset) != len(wantAsset) {
		t.Fatalf("loaded %d asset records, want %d", len(gotAsset), len(wantAsset))
	}
	for i := range wantAsset {
		if gotAsset[i] != wantAsset[i] {
			t.Errorf("asset record %d = %+v, want %+v", i, gotAsset[i], wantAsset[i])
		}
	}
}

func TestStoreSaveCleanLedgerIsNoOp(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ledger, err := store.Load(&fakeGateway{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	path := filepath.Join(dir, transactionsFile)
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := store.Save(ledger); err != nil {
		t.Fatalf("save: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("save of a clean ledger rewrote the stream")
	}
}

func TestStoreLoadRejectsTruncatedStream(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Overwrite the transaction stream without its eof sentinel.
	path := filepath.Join(dir, transactionsFile)
	line := `{"record":"transaction","date":"2026-03-02","ticker":"AAPL","side":"buy","shares":1,"price":1}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(&fakeGateway{}, zerolog.Nop()); err == nil {
		t.Fatal("load accepted a truncated stream")
	} else if !IsFatal(err) {
		t.Errorf("truncated stream error %v is not a storage error", err)
	}
}
