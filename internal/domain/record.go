package domain

import "time"

// RecordKind identifies which side of a trade a screenshot depicts.
type RecordKind string

// Record kind constants
const (
	KindSignal RecordKind = "SIGNAL"
	KindResult RecordKind = "RESULT"
)

// TradeStatus classifies the outcome of a trade.
type TradeStatus string

// Trade status constants
const (
	StatusWin     TradeStatus = "win"
	StatusLoss    TradeStatus = "loss"
	StatusNeutral TradeStatus = "neutral"
	StatusPending TradeStatus = "pending"
)

// CandidateRecord is a single-image extraction result prior to matching.
// Optional fields are nil when extraction could not produce them; absence
// is a typed fact, never a missing map key.
type CandidateRecord struct {
	RecordID string     // deterministic hash (kind | image content hash)
	Kind     RecordKind // SIGNAL | RESULT

	CoinSymbol string       // normalized uppercase ticker, "" if not extracted
	Price      *float64     // entry price for SIGNAL, exit price for RESULT
	ROIPercent *float64     // only meaningful for RESULT
	Timestamp  *time.Time   // best-effort parse
	Status     TradeStatus  // win/loss from ROI sign or color probe, RESULT only

	SourceImage string // originating file path
	ImageHash   string // SHA-256 of raw image bytes, for dedupe

	Confidence    float64 // weighted field + engine confidence in [0,1]
	LowConfidence bool    // below configured threshold; excluded from matching
}

// Matchable reports whether the record may enter automatic matching.
// A record without a symbol cannot be paired; a low-confidence record is
// retained for audit but never auto-matched.
func (r *CandidateRecord) Matchable() bool {
	return !r.LowConfidence && r.CoinSymbol != ""
}

// TradeRecord is a reconciled pairing of one signal and at most one result.
type TradeRecord struct {
	TradeID    string // deterministic hash (signal record id | result record id)
	CoinSymbol string

	EntryPrice *float64
	ExitPrice  *float64
	ROIPercent *float64
	Status     TradeStatus

	SignalTimestamp *time.Time
	ResultTimestamp *time.Time

	MatchConfidence float64 // Matcher pairing score in [0,1]

	SignalSource string // originating signal image path
	ResultSource string // originating result image path, "" when unmatched
}
