package portfolio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// Every persisted line is a JSON object carrying a "record" field naming
// its kind, so a stream stays readable even when line order or record
// shapes drift between versions. A stream is only valid when it ends
// with exactly one eof line; a missing eof means the last write was cut
// short and the stream cannot be trusted.
type recordKind string

const (
	recPortfolio   recordKind = "portfolio"
	recAsset       recordKind = "asset"
	recTransaction recordKind = "transaction"
	recDividend    recordKind = "dividend"
	recEOF         recordKind = "eof"
)

// errMissingEOF reports a stream that ended without its eof sentinel.
var errMissingEOF = errors.New("record stream ended without eof sentinel")

type dailyLine struct {
	Date     date.Date `json:"date"`
	Open     float64   `json:"open"`
	Close    float64   `json:"close"`
	Invested float64   `json:"invested"`
	High     float64   `json:"high,omitempty"`
	Low      float64   `json:"low,omitempty"`
	Shares   float64   `json:"shares,omitempty"`
}

func toDailyLines(records []DailyRecord) []dailyLine {
	lines := make([]dailyLine, len(records))
	for i, r := range records {
		lines[i] = dailyLine{Date: r.Date, Open: r.Open, Close: r.Close, Invested: r.Invested, High: r.High, Low: r.Low, Shares: r.Shares}
	}
	return lines
}

func fromDailyLines(lines []dailyLine, kind Kind) []DailyRecord {
	records := make([]DailyRecord, len(lines))
	for i, l := range lines {
		records[i] = DailyRecord{Kind: kind, Date: l.Date, Open: l.Open, Close: l.Close, Invested: l.Invested, High: l.High, Low: l.Low, Shares: l.Shares}
	}
	return records
}

type portfolioLine struct {
	Record      recordKind            `json:"record"`
	Allocations map[string]Allocation `json:"allocations"`
	History     []dailyLine           `json:"history"`
	LastUpdate  time.Time             `json:"lastUpdate"`
}

type assetLine struct {
	Record  recordKind  `json:"record"`
	Ticker  string      `json:"ticker"`
	History []dailyLine `json:"history"`
}

type transactionLine struct {
	Record recordKind `json:"record"`
	Date   date.Date  `json:"date"`
	Ticker string     `json:"ticker"`
	Side   string     `json:"side"`
	Shares float64    `json:"shares"`
	Price  float64    `json:"price"`
}

type eofLine struct {
	Record recordKind `json:"record"`
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func writeEOF(w io.Writer) error { return writeLine(w, eofLine{Record: recEOF}) }

// EncodePortfolio writes the portfolio stream: one portfolio line and the
// eof sentinel.
func EncodePortfolio(w io.Writer, allocations Allocations, history []DailyRecord, lastUpdate time.Time) error {
	line := portfolioLine{
		Record:      recPortfolio,
		Allocations: allocations,
		History:     toDailyLines(history),
		LastUpdate:  lastUpdate,
	}
	if err := writeLine(w, line); err != nil {
		return err
	}
	return writeEOF(w)
}

// EncodeAssets writes the asset stream: one line per ticker in lexical
// order, then the eof sentinel.
func EncodeAssets(w io.Writer, assets map[string]*TimeSeries) error {
	tickers := make([]string, 0, len(assets))
	for t := range assets {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		line := assetLine{Record: recAsset, Ticker: t, History: toDailyLines(assets[t].Records())}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return writeEOF(w)
}

// EncodeTransactions writes the transaction stream: one line per
// committed transaction, then the eof sentinel. Dividend reinvestments
// carry their own record kind so the payout semantics survive the round
// trip.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		kind := recTransaction
		if tx.Dividend {
			kind = recDividend
		}
		line := transactionLine{Record: kind, Date: tx.Date, Ticker: tx.Ticker, Side: tx.Side.String(), Shares: tx.Shares, Price: tx.Price}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return writeEOF(w)
}

// scanStream reads a record stream line by line, calling handle with each
// line's kind and raw bytes until the eof sentinel.
func scanStream(r io.Reader, handle func(kind recordKind, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sawEOF := false

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if sawEOF {
			return fmt.Errorf("unexpected data after eof sentinel: %q", string(line))
		}

		var identifier struct {
			Record recordKind `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return fmt.Errorf("could not identify record in line %q: %w", string(line), err)
		}
		if identifier.Record == recEOF {
			sawEOF = true
			continue
		}
		if err := handle(identifier.Record, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !sawEOF {
		return errMissingEOF
	}
	return nil
}

// DecodePortfolio reads the portfolio stream back. An empty stream (just
// the eof sentinel, as written on first run) yields an empty table and
// history.
func DecodePortfolio(r io.Reader) (Allocations, []DailyRecord, time.Time, error) {
	allocations := make(Allocations)
	var history []DailyRecord
	var lastUpdate time.Time

	err := scanStream(r, func(kind recordKind, line []byte) error {
		if kind != recPortfolio {
			return fmt.Errorf("unexpected %q record in portfolio stream", kind)
		}
		var p portfolioLine
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		if p.Allocations != nil {
			allocations = p.Allocations
		}
		history = fromDailyLines(p.History, PortfolioRecord)
		lastUpdate = p.LastUpdate
		return nil
	})
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return allocations, history, lastUpdate, nil
}

// DecodeAssets reads the asset stream back.
func DecodeAssets(r io.Reader) (map[string]*TimeSeries, error) {
	assets := make(map[string]*TimeSeries)
	err := scanStream(r, func(kind recordKind, line []byte) error {
		if kind != recAsset {
			return fmt.Errorf("unexpected %q record in asset stream", kind)
		}
		var a assetLine
		if err := json.Unmarshal(line, &a); err != nil {
			return err
		}
		assets[a.Ticker] = NewTimeSeries(fromDailyLines(a.History, AssetRecord))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// DecodeTransactions reads the transaction stream back.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	err := scanStream(r, func(kind recordKind, line []byte) error {
		if kind != recTransaction && kind != recDividend {
			return fmt.Errorf("unexpected %q record in transaction stream", kind)
		}
		var t transactionLine
		if err := json.Unmarshal(line, &t); err != nil {
			return err
		}
		side, err := ParseSide(t.Side)
		if err != nil {
			return err
		}
		txs = append(txs, Transaction{
			Side:     side,
			Dividend: kind == recDividend,
			Date:     t.Date,
			Ticker:   t.Ticker,
			Shares:   t.Shares,
			Price:    t.Price,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}
