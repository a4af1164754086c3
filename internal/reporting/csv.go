package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderTradesCSV renders matched trades as a CSV string.
func RenderTradesCSV(rows []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("trade_id,coin_symbol,entry_price,exit_price,roi_percent,status,")
	sb.WriteString("signal_timestamp,result_timestamp,match_confidence,signal_source,result_source\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%.4f,%s,%s\n",
			r.TradeID,
			r.CoinSymbol,
			csvFloat(r.EntryPrice),
			csvFloat(r.ExitPrice),
			csvFloat(r.ROIPercent),
			r.Status,
			csvTime(r.SignalTimestamp),
			csvTime(r.ResultTimestamp),
			r.MatchConfidence,
			csvEscape(r.SignalSource),
			csvEscape(r.ResultSource),
		))
	}

	return sb.String()
}

// RenderUnmatchedCSV renders leftover records as a CSV string.
func RenderUnmatchedCSV(rows []UnmatchedRow) string {
	var sb strings.Builder

	sb.WriteString("record_id,kind,coin_symbol,price,roi_percent,timestamp,source_image,confidence,low_confidence\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%.4f,%t\n",
			r.RecordID,
			r.Kind,
			r.CoinSymbol,
			csvFloat(r.Price),
			csvFloat(r.ROIPercent),
			csvTime(r.Timestamp),
			csvEscape(r.SourceImage),
			r.Confidence,
			r.LowConfidence,
		))
	}

	return sb.String()
}

// RenderPerImageCSV renders per-image outcomes as a CSV string.
func RenderPerImageCSV(rows []ImageRow) string {
	var sb strings.Builder

	sb.WriteString("image_path,kind,status,reason,record_id,attempts,duration_ms\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%d,%d\n",
			csvEscape(r.ImagePath),
			r.Kind,
			r.Status,
			csvEscape(r.Reason),
			r.RecordID,
			r.Attempts,
			r.DurationMs,
		))
	}

	return sb.String()
}

// csvFloat renders a nullable float, empty when absent.
func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

// csvTime renders a nullable timestamp as RFC 3339, empty when absent.
func csvTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

// csvEscape quotes a value that would break the row. Paths and error
// text are the only free-form fields.
func csvEscape(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return "\"" + strings.ReplaceAll(v, "\"", "\"\"") + "\""
}
