package reporting

import (
	"sort"
	"time"

	"tradeproof/internal/batch"
	"tradeproof/internal/domain"
	"tradeproof/internal/match"
)

// Generator assembles a Report from a batch run and its match result.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report. The batch result supplies the per-image
// rows and low-confidence leftovers; the match result supplies trades
// and unmatched records.
func (g *Generator) Generate(run *batch.RunResult, matched *match.Result) *Report {
	return &Report{
		GeneratedAt: g.now(),
		Summary:     g.generateSummary(run, matched),
		Trades:      g.generateTradeRows(matched.Trades),
		Unmatched:   g.generateUnmatchedRows(run, matched),
		PerImage:    g.generateImageRows(run.Outcomes),
	}
}

func (g *Generator) generateSummary(run *batch.RunResult, matched *match.Result) Summary {
	s := Summary{
		Matched:          len(matched.Trades),
		UnmatchedSignals: len(matched.UnmatchedSignals),
		UnmatchedResults: len(matched.UnmatchedResults),
		ProcessedImages:  run.Processed,
		FailedImages:     run.Failed,
		SkippedImages:    run.Skipped,
	}

	var roiSum float64
	var roiCount int
	for _, t := range matched.Trades {
		switch t.Status {
		case domain.StatusWin:
			s.Wins++
		case domain.StatusLoss:
			s.Losses++
		default:
			s.Pending++
		}
		if t.ROIPercent == nil {
			continue
		}
		roiSum += *t.ROIPercent
		roiCount++
		if s.MaxROI == nil || *t.ROIPercent > *s.MaxROI {
			roi := *t.ROIPercent
			s.MaxROI = &roi
		}
	}
	if roiCount > 0 {
		avg := roiSum / float64(roiCount)
		s.AvgROI = &avg
	}

	return s
}

// generateTradeRows preserves the matcher's ROI-descending order but
// resolves remaining ties by coin symbol then signal path.
func (g *Generator) generateTradeRows(trades []domain.TradeRecord) []TradeRow {
	rows := make([]TradeRow, len(trades))
	for i, t := range trades {
		rows[i] = TradeRow{
			TradeID:         t.TradeID,
			CoinSymbol:      t.CoinSymbol,
			EntryPrice:      t.EntryPrice,
			ExitPrice:       t.ExitPrice,
			ROIPercent:      t.ROIPercent,
			Status:          string(t.Status),
			SignalTimestamp: t.SignalTimestamp,
			ResultTimestamp: t.ResultTimestamp,
			MatchConfidence: t.MatchConfidence,
			SignalSource:    t.SignalSource,
			ResultSource:    t.ResultSource,
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].ROIPercent, rows[j].ROIPercent
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri > *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		if rows[i].CoinSymbol != rows[j].CoinSymbol {
			return rows[i].CoinSymbol < rows[j].CoinSymbol
		}
		return rows[i].SignalSource < rows[j].SignalSource
	})

	return rows
}

// generateUnmatchedRows lists leftovers: unmatched signals, then
// unmatched results, then low-confidence records excluded from matching.
func (g *Generator) generateUnmatchedRows(run *batch.RunResult, matched *match.Result) []UnmatchedRow {
	var rows []UnmatchedRow
	appendRecords := func(recs []domain.CandidateRecord) {
		for _, r := range recs {
			rows = append(rows, UnmatchedRow{
				RecordID:      r.RecordID,
				Kind:          string(r.Kind),
				CoinSymbol:    r.CoinSymbol,
				Price:         r.Price,
				ROIPercent:    r.ROIPercent,
				Timestamp:     r.Timestamp,
				SourceImage:   r.SourceImage,
				Confidence:    r.Confidence,
				LowConfidence: r.LowConfidence,
			})
		}
	}
	appendRecords(matched.UnmatchedSignals)
	appendRecords(matched.UnmatchedResults)
	appendRecords(run.LowConfidence)
	return rows
}

func (g *Generator) generateImageRows(outcomes []domain.ImageOutcome) []ImageRow {
	rows := make([]ImageRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = ImageRow{
			ImagePath:  o.ImagePath,
			Kind:       string(o.Kind),
			Status:     string(o.Status),
			Reason:     o.Reason,
			RecordID:   o.RecordID,
			Attempts:   o.Attempts,
			DurationMs: o.DurationMs,
		}
	}
	return rows
}
