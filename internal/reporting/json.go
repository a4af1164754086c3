package reporting

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonReport mirrors Report with stable snake_case keys for the
// external presentation builder.
type jsonReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     jsonSummary    `json:"summary"`
	Trades      []jsonTrade    `json:"trades"`
	Unmatched   []jsonLeftover `json:"unmatched"`
	PerImage    []jsonImage    `json:"per_image"`
}

type jsonSummary struct {
	Matched          int      `json:"matched"`
	UnmatchedSignals int      `json:"unmatched_signals"`
	UnmatchedResults int      `json:"unmatched_results"`
	ProcessedImages  int      `json:"processed_images"`
	FailedImages     int      `json:"failed_images"`
	SkippedImages    int      `json:"skipped_images"`
	Wins             int      `json:"wins"`
	Losses           int      `json:"losses"`
	Pending          int      `json:"pending"`
	AvgROI           *float64 `json:"avg_roi_percent"`
	MaxROI           *float64 `json:"max_roi_percent"`
}

type jsonTrade struct {
	TradeID         string     `json:"trade_id"`
	CoinSymbol      string     `json:"coin_symbol"`
	EntryPrice      *float64   `json:"entry_price"`
	ExitPrice       *float64   `json:"exit_price"`
	ROIPercent      *float64   `json:"roi_percent"`
	Status          string     `json:"status"`
	SignalTimestamp *time.Time `json:"signal_timestamp"`
	ResultTimestamp *time.Time `json:"result_timestamp"`
	MatchConfidence float64    `json:"match_confidence"`
	SignalSource    string     `json:"signal_source"`
	ResultSource    string     `json:"result_source"`
}

type jsonLeftover struct {
	RecordID      string     `json:"record_id"`
	Kind          string     `json:"kind"`
	CoinSymbol    string     `json:"coin_symbol"`
	Price         *float64   `json:"price"`
	ROIPercent    *float64   `json:"roi_percent"`
	Timestamp     *time.Time `json:"timestamp"`
	SourceImage   string     `json:"source_image"`
	Confidence    float64    `json:"confidence"`
	LowConfidence bool       `json:"low_confidence"`
}

type jsonImage struct {
	ImagePath  string `json:"image_path"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	RecordID   string `json:"record_id,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
}

// RenderJSON renders the report as indented JSON.
func RenderJSON(r *Report) ([]byte, error) {
	out := jsonReport{
		GeneratedAt: r.GeneratedAt,
		Summary: jsonSummary{
			Matched:          r.Summary.Matched,
			UnmatchedSignals: r.Summary.UnmatchedSignals,
			UnmatchedResults: r.Summary.UnmatchedResults,
			ProcessedImages:  r.Summary.ProcessedImages,
			FailedImages:     r.Summary.FailedImages,
			SkippedImages:    r.Summary.SkippedImages,
			Wins:             r.Summary.Wins,
			Losses:           r.Summary.Losses,
			Pending:          r.Summary.Pending,
			AvgROI:           r.Summary.AvgROI,
			MaxROI:           r.Summary.MaxROI,
		},
		Trades:    make([]jsonTrade, len(r.Trades)),
		Unmatched: make([]jsonLeftover, len(r.Unmatched)),
		PerImage:  make([]jsonImage, len(r.PerImage)),
	}

	for i, t := range r.Trades {
		out.Trades[i] = jsonTrade(t)
	}
	for i, u := range r.Unmatched {
		out.Unmatched[i] = jsonLeftover(u)
	}
	for i, p := range r.PerImage {
		out.PerImage[i] = jsonImage(p)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
