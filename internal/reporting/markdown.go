package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Matched Trades | %d |\n", r.Summary.Matched))
	sb.WriteString(fmt.Sprintf("| Unmatched Signals | %d |\n", r.Summary.UnmatchedSignals))
	sb.WriteString(fmt.Sprintf("| Unmatched Results | %d |\n", r.Summary.UnmatchedResults))
	sb.WriteString(fmt.Sprintf("| Processed Images | %d |\n", r.Summary.ProcessedImages))
	sb.WriteString(fmt.Sprintf("| Failed Images | %d |\n", r.Summary.FailedImages))
	sb.WriteString(fmt.Sprintf("| Skipped Images | %d |\n", r.Summary.SkippedImages))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", r.Summary.Wins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", r.Summary.Losses))
	sb.WriteString(fmt.Sprintf("| Pending | %d |\n", r.Summary.Pending))
	sb.WriteString(fmt.Sprintf("| Avg ROI %% | %s |\n", mdFloat(r.Summary.AvgROI)))
	sb.WriteString(fmt.Sprintf("| Max ROI %% | %s |\n", mdFloat(r.Summary.MaxROI)))
	sb.WriteString("\n")

	sb.WriteString("## Matched Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Coin | Entry | Exit | ROI% | Status | Signal Time | Result Time | Confidence | Signal | Result |\n")
		sb.WriteString("|------|-------|------|------|--------|-------------|-------------|------------|--------|--------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %.2f | %s | %s |\n",
				t.CoinSymbol,
				mdFloat(t.EntryPrice), mdFloat(t.ExitPrice), mdFloat(t.ROIPercent),
				t.Status,
				mdTime(t.SignalTimestamp), mdTime(t.ResultTimestamp),
				t.MatchConfidence,
				t.SignalSource, t.ResultSource))
		}
	} else {
		sb.WriteString("No trades matched.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Unmatched Records\n\n")
	if len(r.Unmatched) > 0 {
		sb.WriteString("| Kind | Coin | Price | ROI% | Timestamp | Source | Confidence | Low Confidence |\n")
		sb.WriteString("|------|------|-------|------|-----------|--------|------------|----------------|\n")
		for _, u := range r.Unmatched {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %.2f | %t |\n",
				u.Kind, u.CoinSymbol,
				mdFloat(u.Price), mdFloat(u.ROIPercent),
				mdTime(u.Timestamp),
				u.SourceImage, u.Confidence, u.LowConfidence))
		}
	} else {
		sb.WriteString("No unmatched records.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Per-Image Outcomes\n\n")
	if len(r.PerImage) > 0 {
		sb.WriteString("| Image | Kind | Status | Reason | Attempts | Duration (ms) |\n")
		sb.WriteString("|-------|------|--------|--------|----------|---------------|\n")
		for _, p := range r.PerImage {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d |\n",
				p.ImagePath, p.Kind, p.Status, p.Reason, p.Attempts, p.DurationMs))
		}
	} else {
		sb.WriteString("No images processed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func mdFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func mdTime(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.UTC().Format(time.RFC3339)
}
