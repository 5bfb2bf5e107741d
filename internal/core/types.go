package core

import "time"

// Quality classifies a trade setup/outcome as assigned by the upstream report.
type Quality string

const (
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityPoor      Quality = "Poor"
	QualityFailed    Quality = "Failed"
	QualityPoorSetup Quality = "Poor Setup"
)

// Qualities lists all categories in display order.
var Qualities = []Quality{
	QualityExcellent,
	QualityGood,
	QualityPoor,
	QualityFailed,
	QualityPoorSetup,
}

// ParseQuality maps a report label to a Quality, defaulting to Poor Setup
// for labels the report writers have not standardized yet.
func ParseQuality(s string) Quality {
	for _, q := range Qualities {
		if string(q) == s {
			return q
		}
	}
	return QualityPoorSetup
}

// TradeRecord is a single closed trade extracted from a performance report.
// Records are immutable once parsed.
type TradeRecord struct {
	Rank         int
	Ticker       string
	Strategy     string
	EntryDate    time.Time
	ExitDate     time.Time
	ReturnPct    float64 // signed, in percent
	DurationDays int
	Quality      Quality
}

// IsWin reports whether the trade closed positive.
func (t TradeRecord) IsWin() bool {
	return t.ReturnPct > 0
}

// MonthlyAggregate summarizes one calendar month of trading.
// Slices of these are ordered by (year, month); the order is meaningful.
type MonthlyAggregate struct {
	Month         string // full month name, e.g. "January"
	Year          int
	TradesClosed  int
	WinRate       float64 // 0-100
	AverageReturn float64 // signed, in percent
	MarketContext string
}

// QualityBucket is one slice of the quality distribution.
type QualityBucket struct {
	Category      Quality
	Count         int
	Percentage    float64 // 0-100, buckets sum to ~100
	WinRate       float64
	AverageReturn float64
}

// ReportData is the structured record set handed to the rendering core by
// the report parser.
type ReportData struct {
	Metrics  map[string]float64
	Trades   []TradeRecord
	Monthly  []MonthlyAggregate
	Quality  []QualityBucket
	Metadata map[string]string
}
