package portfolio

import (
	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// MaxAssetRecords caps an asset series at roughly ten years of trading
// days. Older records are trimmed when new data pushes the series past
// the cap.
const MaxAssetRecords = 2520

// TimeSeries is a date-ascending sequence of daily records, one per
// trading day. It is the unit the ledger patches, splices and truncates;
// it is not safe for concurrent use.
type TimeSeries struct {
	records []DailyRecord
}

// NewTimeSeries builds a series over records, which must already be in
// ascending date order.
func NewTimeSeries(records []DailyRecord) *TimeSeries {
	return &TimeSeries{records: records}
}

func (s *TimeSeries) Len() int    { return len(s.records) }
func (s *TimeSeries) Empty() bool { return len(s.records) == 0 }

// At returns the record at index i, counting from the oldest.
func (s *TimeSeries) At(i int) DailyRecord { return s.records[i] }

// Last returns the most recent record. It must not be called on an empty
// series.
func (s *TimeSeries) Last() DailyRecord { return s.records[len(s.records)-1] }

// First returns the oldest record. It must not be called on an empty
// series.
func (s *TimeSeries) First() DailyRecord { return s.records[0] }

// Records returns the underlying slice. Callers must treat it as
// read-only.
func (s *TimeSeries) Records() []DailyRecord { return s.records }

// Bounds returns the date range covered by the series.
func (s *TimeSeries) Bounds() date.Range {
	if len(s.records) == 0 {
		return date.Range{}
	}
	return date.Range{From: s.records[0].Date, To: s.records[len(s.records)-1].Date}
}

// SuffixFrom returns a copy of every record from day d (inclusive) to the
// end of the series. Scanning runs from the newest record backwards since
// transactions cluster near the present. The second return is false when
// no record carries date d, which marks d as a non-trading day for this
// series.
func (s *TimeSeries) SuffixFrom(d date.Date) ([]DailyRecord, bool) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Date == d {
			suffix := make([]DailyRecord, len(s.records)-i)
			copy(suffix, s.records[i:])
			return suffix, true
		}
	}
	return nil, false
}

// Patch overwrites the tail of the series with updated, starting at
// index. A negative index means updated reaches further back than the
// series does; the whole series is then replaced, so the extra leading
// records become the new oldest days.
func (s *TimeSeries) Patch(updated []DailyRecord, index int) {
	if index < 0 {
		s.records = append([]DailyRecord(nil), updated...)
		return
	}
	s.records = append(s.records[:index], updated...)
}

// Splice appends newer records to the series. When the first incoming
// record falls on the same day as the current last record, the stale last
// record is replaced so an intraday quote gets superseded by the final
// one. Records older than the current tail are never touched.
func (s *TimeSeries) Splice(incoming []DailyRecord) {
	if len(incoming) == 0 {
		return
	}
	if n := len(s.records); n > 0 && s.records[n-1].Date == incoming[0].Date {
		s.records = s.records[:n-1]
	}
	s.records = append(s.records, incoming...)
}

// Cap trims the oldest records until the series holds at most max.
func (s *TimeSeries) Cap(max int) {
	if len(s.records) > max {
		s.records = append(s.records[:0], s.records[len(s.records)-max:]...)
	}
}

// Truncate drops every record older than lowerBound. A zero lowerBound
// clears the series entirely.
func (s *TimeSeries) Truncate(lowerBound date.Date) {
	if lowerBound.IsZero() {
		s.records = nil
		return
	}
	i := 0
	for i < len(s.records) && s.records[i].Date.Before(lowerBound) {
		i++
	}
	if i > 0 {
		s.records = append(s.records[:0], s.records[i:]...)
	}
}
