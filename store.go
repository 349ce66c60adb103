package portfolio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// The store keeps the ledger in three record streams under one
// directory. Each stream is rewritten in full on save; a rewrite lands
// in a temp file first and is renamed over the old stream, so a crash
// mid-write leaves the previous state intact.
const (
	portfolioFile    = "portfolio.records"
	assetsFile       = "assets.records"
	transactionsFile = "transactions.records"
)

// Store persists a ledger to a directory of record streams.
type Store struct {
	dir string
	log zerolog.Logger
}

// OpenStore opens the record streams under dir, creating the directory
// and empty streams on first run.
func OpenStore(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "create", Path: dir, Err: err}
	}
	s := &Store{dir: dir, log: log.With().Str("component", "store").Logger()}
	for _, name := range []string{portfolioFile, assetsFile, transactionsFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "stat", Path: path, Err: err}
		}
		if err := s.writeStream(name, writeEOF); err != nil {
			return nil, err
		}
		s.log.Info().Str("stream", name).Msg("initialized empty record stream")
	}
	return s, nil
}

// Load reads the three streams and rebuilds a ledger fetching through gw.
func (s *Store) Load(gw Gateway, log zerolog.Logger) (*Ledger, error) {
	var (
		allocations Allocations
		history     []DailyRecord
		lastUpdate  time.Time
		assets      map[string]*TimeSeries
		txs         []Transaction
	)

	err := s.readStream(portfolioFile, func(r io.Reader) (err error) {
		allocations, history, lastUpdate, err = DecodePortfolio(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = s.readStream(assetsFile, func(r io.Reader) (err error) {
		assets, err = DecodeAssets(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = s.readStream(transactionsFile, func(r io.Reader) (err error) {
		txs, err = DecodeTransactions(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	ledger := NewLedger(gw, log)
	ledger.restore(allocations, NewTimeSeries(history), assets, txs, lastUpdate)
	s.log.Debug().
		Int("assets", len(assets)).
		Int("transactions", len(txs)).
		Int("days", len(history)).
		Msg("ledger loaded")
	return ledger, nil
}

// Save rewrites the three streams from the ledger's current state. The
// streams are written concurrently and Save returns once every writer has
// finished; the ledger is only marked clean when all three landed. A
// clean ledger is a no-op.
func (s *Store) Save(l *Ledger) error {
	if !l.Dirty() {
		return nil
	}

	l.mu.Lock()
	allocations := make(Allocations, len(l.allocations))
	for t, a := range l.allocations {
		allocations[t] = a
	}
	history := append([]DailyRecord(nil), l.portfolio.Records()...)
	assets := make(map[string]*TimeSeries, len(l.assets))
	for t, series := range l.assets {
		assets[t] = NewTimeSeries(append([]DailyRecord(nil), series.Records()...))
	}
	txs := append([]Transaction(nil), l.txs...)
	lastUpdate := l.lastUpdate
	l.mu.Unlock()

	jobs := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{portfolioFile, func(w io.Writer) error { return EncodePortfolio(w, allocations, history, lastUpdate) }},
		{assetsFile, func(w io.Writer) error { return EncodeAssets(w, assets) }},
		{transactionsFile, func(w io.Writer) error { return EncodeTransactions(w, txs) }},
	}

	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.writeStream(job.name, job.encode)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	l.mu.Lock()
	l.dirty = false
	l.mu.Unlock()
	s.log.Debug().Msg("ledger saved")
	return nil
}

func (s *Store) readStream(name string, decode func(io.Reader) error) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	if err := decode(f); err != nil {
		return &StorageError{Op: "decode", Path: path, Err: err}
	}
	return nil
}

func (s *Store) writeStream(name string, encode func(io.Writer) error) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return &StorageError{Op: "create", Path: tmp, Err: err}
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &StorageError{Op: "encode", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &StorageError{Op: "close", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
