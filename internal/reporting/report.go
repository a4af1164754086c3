package reporting

import "time"

// Report is the complete analysis handoff produced after matching. The
// CSV, Markdown, and JSON renderers all consume this one structure so
// every output format agrees on the numbers.
type Report struct {
	GeneratedAt time.Time

	Summary Summary

	// Trades are matched pairs, ordered by ROI descending, ties by
	// coin symbol then signal path.
	Trades []TradeRow

	// Unmatched holds leftover records from both sides, signals first.
	Unmatched []UnmatchedRow

	// PerImage has one row per enumerated image, in enumeration order.
	PerImage []ImageRow
}

// Summary contains the headline counts for the run.
type Summary struct {
	Matched          int
	UnmatchedSignals int
	UnmatchedResults int

	ProcessedImages int
	FailedImages    int
	SkippedImages   int

	Wins    int
	Losses  int
	Pending int

	// AvgROI and MaxROI cover matched trades that carry an ROI.
	// Nil when no trade has one.
	AvgROI *float64
	MaxROI *float64
}

// TradeRow is one matched trade in the output tables.
type TradeRow struct {
	TradeID         string
	CoinSymbol      string
	EntryPrice      *float64
	ExitPrice       *float64
	ROIPercent      *float64
	Status          string
	SignalTimestamp *time.Time
	ResultTimestamp *time.Time
	MatchConfidence float64
	SignalSource    string
	ResultSource    string
}

// UnmatchedRow is one leftover candidate record.
type UnmatchedRow struct {
	RecordID      string
	Kind          string
	CoinSymbol    string
	Price         *float64
	ROIPercent    *float64
	Timestamp     *time.Time
	SourceImage   string
	Confidence    float64
	LowConfidence bool
}

// ImageRow is one per-image processing outcome.
type ImageRow struct {
	ImagePath  string
	Kind       string
	Status     string
	Reason     string
	RecordID   string
	Attempts   int
	DurationMs int64
}
