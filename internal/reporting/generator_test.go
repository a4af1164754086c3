package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tradeproof/internal/batch"
	"tradeproof/internal/domain"
	"tradeproof/internal/match"
)

func ptr[T any](v T) *T {
	return &v
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
}

func testRunAndMatch() (*batch.RunResult, *match.Result) {
	sigAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	resAt := sigAt.Add(5 * time.Hour)

	run := &batch.RunResult{
		LowConfidence: []domain.CandidateRecord{
			{RecordID: "lc1", Kind: domain.KindSignal, CoinSymbol: "DOGE", SourceImage: "signals/blurry.png", Confidence: 0.3, LowConfidence: true},
		},
		Outcomes: []domain.ImageOutcome{
			{ImagePath: "signals/btc.png", Kind: domain.KindSignal, Status: domain.OutcomeSuccess, RecordID: "s1", Attempts: 1, DurationMs: 120},
			{ImagePath: "signals/broken.png", Kind: domain.KindSignal, Status: domain.OutcomeSkipped, Reason: domain.SkipReasonCorrupted, Attempts: 0, DurationMs: 2},
			{ImagePath: "results/btc.png", Kind: domain.KindResult, Status: domain.OutcomeSuccess, RecordID: "r1", Attempts: 2, DurationMs: 300},
		},
		Processed: 3,
		Succeeded: 2,
		Skipped:   1,
		Failed:    0,
	}

	matched := &match.Result{
		Trades: []domain.TradeRecord{
			{
				TradeID: "t-btc", CoinSymbol: "BTC",
				EntryPrice: ptr(42150.0), ExitPrice: ptr(47418.75), ROIPercent: ptr(12.5),
				Status:          domain.StatusWin,
				SignalTimestamp: &sigAt, ResultTimestamp: &resAt,
				MatchConfidence: 0.95,
				SignalSource:    "signals/btc.png", ResultSource: "results/btc.png",
			},
			{
				TradeID: "t-eth", CoinSymbol: "ETH",
				ROIPercent: ptr(-3.2), Status: domain.StatusLoss,
				MatchConfidence: 0.8,
				SignalSource:    "signals/eth.png", ResultSource: "results/eth.png",
			},
		},
		UnmatchedSignals: []domain.CandidateRecord{
			{RecordID: "s9", Kind: domain.KindSignal, CoinSymbol: "SOL", Price: ptr(145.2), SourceImage: "signals/sol.png", Confidence: 0.88},
		},
		UnmatchedResults: nil,
	}

	return run, matched
}

func TestGenerate_Summary(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	if !report.GeneratedAt.Equal(fixedClock()) {
		t.Errorf("GeneratedAt = %v, want fixed clock", report.GeneratedAt)
	}

	s := report.Summary
	if s.Matched != 2 || s.UnmatchedSignals != 1 || s.UnmatchedResults != 0 {
		t.Errorf("match counts = %d/%d/%d, want 2/1/0", s.Matched, s.UnmatchedSignals, s.UnmatchedResults)
	}
	if s.ProcessedImages != 3 || s.SkippedImages != 1 || s.FailedImages != 0 {
		t.Errorf("image counts = %d/%d/%d, want 3/1/0", s.ProcessedImages, s.SkippedImages, s.FailedImages)
	}
	if s.Wins != 1 || s.Losses != 1 || s.Pending != 0 {
		t.Errorf("status counts = %d/%d/%d, want 1/1/0", s.Wins, s.Losses, s.Pending)
	}

	if s.AvgROI == nil || *s.AvgROI != (12.5+-3.2)/2 {
		t.Errorf("AvgROI = %v, want %v", s.AvgROI, (12.5+-3.2)/2)
	}
	if s.MaxROI == nil || *s.MaxROI != 12.5 {
		t.Errorf("MaxROI = %v, want 12.5", s.MaxROI)
	}
}

func TestGenerate_NoROITrades(t *testing.T) {
	run := &batch.RunResult{}
	matched := &match.Result{
		Trades: []domain.TradeRecord{
			{TradeID: "t1", CoinSymbol: "BTC", Status: domain.StatusPending},
		},
	}

	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)
	if report.Summary.AvgROI != nil || report.Summary.MaxROI != nil {
		t.Errorf("ROI summary = %v/%v, want nil/nil", report.Summary.AvgROI, report.Summary.MaxROI)
	}
	if report.Summary.Pending != 1 {
		t.Errorf("Pending = %d, want 1", report.Summary.Pending)
	}
}

func TestGenerate_TradeOrdering(t *testing.T) {
	run := &batch.RunResult{}
	matched := &match.Result{
		Trades: []domain.TradeRecord{
			{TradeID: "t1", CoinSymbol: "ETH", ROIPercent: ptr(5.0), SignalSource: "signals/b.png"},
			{TradeID: "t2", CoinSymbol: "BTC", ROIPercent: ptr(5.0), SignalSource: "signals/a.png"},
			{TradeID: "t3", CoinSymbol: "SOL", SignalSource: "signals/c.png"}, // no ROI, sorts last
			{TradeID: "t4", CoinSymbol: "BTC", ROIPercent: ptr(40.0), SignalSource: "signals/d.png"},
		},
	}

	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	wantOrder := []string{"t4", "t2", "t1", "t3"}
	for i, want := range wantOrder {
		if report.Trades[i].TradeID != want {
			t.Fatalf("trade %d = %s, want %s", i, report.Trades[i].TradeID, want)
		}
	}
}

func TestGenerate_UnmatchedIncludesLowConfidence(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	if len(report.Unmatched) != 2 {
		t.Fatalf("Unmatched = %d rows, want 2", len(report.Unmatched))
	}
	if report.Unmatched[0].RecordID != "s9" || report.Unmatched[0].LowConfidence {
		t.Errorf("first unmatched = %+v, want matchable leftover s9", report.Unmatched[0])
	}
	if report.Unmatched[1].RecordID != "lc1" || !report.Unmatched[1].LowConfidence {
		t.Errorf("second unmatched = %+v, want low-confidence lc1", report.Unmatched[1])
	}
}

func TestGenerate_PerImagePreservesOrder(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	if len(report.PerImage) != 3 {
		t.Fatalf("PerImage = %d rows, want 3", len(report.PerImage))
	}
	if report.PerImage[1].ImagePath != "signals/broken.png" {
		t.Errorf("row 1 = %s, want enumeration order preserved", report.PerImage[1].ImagePath)
	}
	if report.PerImage[1].Reason != domain.SkipReasonCorrupted {
		t.Errorf("row 1 reason = %q, want %q", report.PerImage[1].Reason, domain.SkipReasonCorrupted)
	}
}

func TestRenderTradesCSV(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	out := RenderTradesCSV(report.Trades)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "trade_id,coin_symbol,entry_price") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "t-btc") || !strings.Contains(lines[1], "12.500000") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	// Missing prices render as empty fields, not zeros.
	if !strings.Contains(lines[2], "t-eth,ETH,,,") {
		t.Errorf("missing prices not empty: %s", lines[2])
	}
}

func TestRenderUnmatchedCSV(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	out := RenderUnmatchedCSV(report.Unmatched)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[2], "lc1") || !strings.HasSuffix(lines[2], "true") {
		t.Errorf("low-confidence row wrong: %s", lines[2])
	}
}

func TestCSVEscape(t *testing.T) {
	rows := []ImageRow{
		{ImagePath: "signals/a,b.png", Kind: "SIGNAL", Status: "FAILED", Reason: `read "header" failed`},
	}
	out := RenderPerImageCSV(rows)
	if !strings.Contains(out, `"signals/a,b.png"`) {
		t.Errorf("comma in path not quoted: %s", out)
	}
	if !strings.Contains(out, `"read ""header"" failed"`) {
		t.Errorf("quotes not doubled: %s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	out := RenderMarkdown(report)
	for _, want := range []string{
		"# Analysis Report",
		"| Matched Trades | 2 |",
		"| BTC |",
		"signals/blurry.png",
		"## Per-Image Outcomes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	data, err := RenderJSON(report)
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	summary, ok := decoded["summary"].(map[string]any)
	if !ok {
		t.Fatal("summary key missing")
	}
	if summary["matched"] != float64(2) {
		t.Errorf("summary.matched = %v, want 2", summary["matched"])
	}
	if _, ok := decoded["per_image"]; !ok {
		t.Error("per_image key missing")
	}
}

func TestWriteBundle(t *testing.T) {
	run, matched := testRunAndMatch()
	report := NewGenerator().WithClock(fixedClock).Generate(run, matched)

	dir := filepath.Join(t.TempDir(), "report")
	if err := WriteBundle(report, dir); err != nil {
		t.Fatalf("WriteBundle failed: %v", err)
	}

	for _, name := range []string{TradesCSVFile, UnmatchedCSVFile, PerImageCSVFile, MarkdownFile, JSONFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
