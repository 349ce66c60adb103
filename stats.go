package portfolio

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GainLoss holds percentage gain/loss figures over the latest trading
// day, the calendar month and the calendar year. A figure the series is
// too short to anchor falls back to the oldest record; with no records at
// all every figure is Unavailable.
type GainLoss struct {
	Day   float64
	Month float64
	Year  float64
}

// GainLossStats walks the series backwards from the latest record and
// computes the day, month and year gain/loss. The day figure is the move
// from the latest day's open to its close. The month and year figures
// anchor on the first record of the current calendar month and year, the
// boundary being detected as the most recent older record whose month or
// year differs from the latest record's.
//
// A portfolio record's return is measured against invested capital, an
// asset record's against the anchor day's opening quote.
func GainLossStats(s *TimeSeries) GainLoss {
	if s.Empty() {
		return GainLoss{Day: Unavailable, Month: Unavailable, Year: Unavailable}
	}

	today := s.Last()
	curr := today
	var g GainLoss
	var haveMonth, haveYear bool

	g.Day = relativeReturn(today, today)

	for i := s.Len() - 2; i >= 0; i-- {
		ref := curr
		curr = s.At(i)

		if !haveMonth && curr.Date.Month() != today.Date.Month() {
			g.Month = relativeReturn(today, ref)
			haveMonth = true
		} else if curr.Date.Year() != today.Date.Year() {
			g.Year = relativeReturn(today, ref)
			haveYear = true
			break
		}
	}

	if !haveMonth {
		g.Month = relativeReturn(today, curr)
		g.Year = g.Month
	}
	if !haveYear {
		g.Year = relativeReturn(today, curr)
	}
	return g
}

// relativeReturn measures today's close against a reference day's open.
// For portfolio records both sides are first converted to percentage
// returns on invested capital; for asset records the raw quotes are
// compared directly.
func relativeReturn(today, ref DailyRecord) float64 {
	if today.Kind == PortfolioRecord {
		todayReturn := (today.Close - today.Invested) / today.Invested * 100
		refReturn := (ref.Open - ref.Invested) / ref.Invested * 100
		return todayReturn - refReturn
	}
	return (today.Close - ref.Open) / ref.Open * 100
}

// week52MinRecords is the shortest series the trailing 52-week window is
// computed over. Roughly a year of trading days must be on hand before
// the figures mean anything.
const week52MinRecords = 261

// Week52 holds trailing 52-week quote statistics for one asset.
type Week52 struct {
	High    float64
	Low     float64
	Average float64
	// SD is how many population standard deviations the latest close
	// sits from the 52-week average close.
	SD float64
}

// Week52Stats computes the trailing 52-week high, low, average close and
// the latest close's distance from that average in standard deviations.
// The window is bounded by date, not by count: it covers every record
// dated within 52 weeks of the latest one. The second return is false
// when the series holds week52MinRecords records or fewer.
func Week52Stats(s *TimeSeries) (Week52, bool) {
	if s.Len() < week52MinRecords {
		return Week52{}, false
	}

	stop := s.Last().Date.AddWeeks(-52)
	var highs, lows, closes []float64
	for i := s.Len() - 1; i >= 0; i-- {
		day := s.At(i)
		if day.Date.Before(stop) {
			break
		}
		highs = append(highs, day.High)
		lows = append(lows, day.Low)
		closes = append(closes, day.Close)
	}

	mean := stat.Mean(closes, nil)
	sd := stat.PopStdDev(closes, nil)
	return Week52{
		High:    floats.Max(highs),
		Low:     floats.Min(lows),
		Average: mean,
		SD:      (s.Last().Close - mean) / sd,
	}, true
}
