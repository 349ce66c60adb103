package portfolio

import (
	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// Kind tags a daily record as belonging to the merged portfolio series or
// to a single asset's series.
type Kind int

const (
	// PortfolioRecord carries the merged daily value of all holdings.
	PortfolioRecord Kind = iota
	// AssetRecord carries one asset's daily quote plus the position held
	// in it.
	AssetRecord
)

func (k Kind) String() string {
	if k == PortfolioRecord {
		return "portfolio"
	}
	return "asset"
}

// DailyRecord is one trading day in a time series. Open, Close and
// Invested are meaningful for both kinds. High, Low and Shares are only
// filled in on asset records; a portfolio record leaves them zero.
//
// For an asset record, Open, Close, High and Low are the day's raw
// per-share quotes, Invested is the capital committed to the position and
// Shares the position size on that day. For a portfolio record, Open and
// Close are the total dollar value of all holdings at the day's open and
// close, and Invested is the total capital committed.
type DailyRecord struct {
	Kind     Kind
	Date     date.Date
	Open     float64
	Close    float64
	Invested float64
	High     float64
	Low      float64
	Shares   float64
}
