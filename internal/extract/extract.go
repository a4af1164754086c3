// Package extract pulls structured trade fields out of normalized OCR
// tokens. Extraction is anchor-driven: labels like ENTRY or ROI bind the
// number that follows them, and a positional fallback handles screenshots
// where no label survived OCR. Every field carries its own confidence.
package extract

import (
	"strings"
	"time"

	"tradeproof/internal/domain"
	"tradeproof/internal/textnorm"
)

// Plausibility ranges. Values outside are treated as OCR garbage and
// discarded rather than propagated into records.
const (
	MinPrice = 1e-6
	MaxPrice = 1e6

	MinROIPercent = -100
	MaxROIPercent = 10000
)

// fuzzyRepairThreshold is the minimum similarity for repairing a mangled
// ticker against the allow-list.
const fuzzyRepairThreshold = 0.8

// Confidence assigned per extraction path. Anchored finds score high,
// positional fallbacks are capped low so downstream filtering can tell
// them apart.
const (
	confExactSymbol   = 1.0
	confUnknownSymbol = 0.4
	confAnchoredValue = 0.9
	confLoosePercent  = 0.85
	confFallbackValue = 0.5
	confFullTimestamp = 0.9
	confDateOnly      = 0.7
)

// Fields is the structured extraction result. Pointer fields are nil when
// the field was absent or implausible; the matching confidence is zero.
type Fields struct {
	Symbol     string
	SymbolConf float64

	Price     *float64
	PriceConf float64

	ROIPercent *float64
	ROIConf    float64

	Timestamp     *time.Time
	TimestampConf float64

	Status domain.TradeStatus
}

// priceAnchors bind the next number token as a price.
var priceAnchors = map[string]bool{
	"ENTRY": true, "PRICE": true, "OPEN": true, "OPENED": true,
	"BUY": true, "EXIT": true, "CLOSE": true, "CLOSED": true, "SELL": true,
}

// roiAnchors bind the next percent token as ROI.
var roiAnchors = map[string]bool{
	"ROI": true, "PNL": true, "PROFIT": true, "GAIN": true, "RETURN": true,
}

// winWords and lossWords mark the trade outcome when present.
var winWords = map[string]bool{
	"WIN": true, "WON": true, "PROFIT": true, "TP": true,
}

var lossWords = map[string]bool{
	"LOSS": true, "LOST": true, "SL": true, "LIQUIDATED": true, "STOPPED": true,
}

// stopwords are label and venue vocabulary that must never be read as a
// ticker.
var stopwords = map[string]bool{
	"ENTRY": true, "EXIT": true, "ROI": true, "PNL": true, "PRICE": true,
	"TARGET": true, "PROFIT": true, "LOSS": true, "WIN": true, "WON": true,
	"LOST": true, "LONG": true, "SHORT": true, "BUY": true, "SELL": true,
	"OPEN": true, "OPENED": true, "CLOSE": true, "CLOSED": true,
	"USDT": true, "USD": true, "USDC": true, "BUSD": true, "PERP": true,
	"LEVERAGE": true, "CROSS": true, "ISOLATED": true, "MARGIN": true,
	"TP": true, "SL": true, "TRADE": true, "SIGNAL": true, "RESULT": true,
	"TOTAL": true, "AMOUNT": true, "FEE": true, "REALIZED": true,
	"UNREALIZED": true, "GAIN": true, "RETURN": true, "LIQUIDATED": true,
	"STOPPED": true, "AT": true, "ON": true,
}

// timestampFormats are tried in order when parsing combined date and time
// fragments. All parse in UTC.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Extractor extracts trade fields against a ticker allow-list.
type Extractor struct {
	coinSet  map[string]struct{}
	coinList []string
}

// New returns an Extractor using the built-in allow-list.
func New() *Extractor {
	return NewWithCoins(defaultCoins)
}

// NewWithCoins returns an Extractor over the given allow-list merged with
// nothing else. An empty list disables exact and fuzzy symbol lookup.
func NewWithCoins(coins []string) *Extractor {
	set, list := normalizeCoins(coins)
	return &Extractor{coinSet: set, coinList: list}
}

// Extract pulls all recognizable fields from a normalized token sequence.
// Extraction is deterministic: the same tokens always yield the same
// Fields.
func (e *Extractor) Extract(tokens []textnorm.Token) Fields {
	var f Fields
	f.Symbol, f.SymbolConf = e.extractSymbol(tokens)
	f.ROIPercent, f.ROIConf = extractROI(tokens)
	f.Price, f.PriceConf = extractPrice(tokens, f.ROIPercent)
	f.Timestamp, f.TimestampConf = extractTimestamp(tokens)
	f.Status = extractStatus(tokens, f.ROIPercent)
	return f
}

// extractSymbol finds the ticker. Exact allow-list hits win; otherwise the
// closest fuzzy repair above the threshold; otherwise the first plausible
// candidate with low confidence.
func (e *Extractor) extractSymbol(tokens []textnorm.Token) (string, float64) {
	var (
		fallback  string
		bestCoin  string
		bestRatio float64
	)

	for _, tok := range tokens {
		if tok.Class != textnorm.ClassSymbolCandidate {
			continue
		}
		base, _, _ := strings.Cut(tok.Text, "/")
		if stopwords[base] {
			continue
		}
		if _, ok := e.coinSet[base]; ok {
			return base, confExactSymbol
		}
		for _, coin := range e.coinList {
			if r := textnorm.Similarity(base, coin); r > bestRatio {
				bestRatio = r
				bestCoin = coin
			}
		}
		if fallback == "" {
			fallback = base
		}
	}

	if bestRatio >= fuzzyRepairThreshold {
		return bestCoin, bestRatio
	}
	if fallback != "" {
		return fallback, confUnknownSymbol
	}
	return "", 0
}

// extractROI finds the ROI percentage. An anchored percent token scores
// highest, any percent token next, a signed bare number last.
func extractROI(tokens []textnorm.Token) (*float64, float64) {
	// Anchored percent: ROI +23.45%
	for i, tok := range tokens {
		if tok.Class != textnorm.ClassSymbolCandidate || !roiAnchors[tok.Text] {
			continue
		}
		for j := i + 1; j < len(tokens) && j <= i+2; j++ {
			if tokens[j].Class == textnorm.ClassPercent {
				if v, ok := textnorm.ParseNumber(tokens[j]); ok && roiPlausible(v) {
					return &v, confAnchoredValue
				}
			}
		}
	}

	// Any percent token.
	for _, tok := range tokens {
		if tok.Class == textnorm.ClassPercent {
			if v, ok := textnorm.ParseNumber(tok); ok && roiPlausible(v) {
				return &v, confLoosePercent
			}
		}
	}

	// Positional fallback: an explicitly signed bare number reads as ROI.
	for _, tok := range tokens {
		if tok.Class == textnorm.ClassNumber && textnorm.Signed(tok) {
			if v, ok := textnorm.ParseNumber(tok); ok && roiPlausible(v) {
				return &v, confFallbackValue
			}
		}
	}

	return nil, 0
}

// extractPrice finds the price. Anchored numbers win; the positional
// fallback takes the first unsigned plausible number that is not the ROI
// value.
func extractPrice(tokens []textnorm.Token, roi *float64) (*float64, float64) {
	for i, tok := range tokens {
		if tok.Class != textnorm.ClassSymbolCandidate || !priceAnchors[tok.Text] {
			continue
		}
		for j := i + 1; j < len(tokens) && j <= i+2; j++ {
			if tokens[j].Class == textnorm.ClassNumber && !textnorm.Signed(tokens[j]) {
				if v, ok := textnorm.ParseNumber(tokens[j]); ok && pricePlausible(v) {
					return &v, confAnchoredValue
				}
			}
		}
	}

	for _, tok := range tokens {
		if tok.Class != textnorm.ClassNumber || textnorm.Signed(tok) {
			continue
		}
		v, ok := textnorm.ParseNumber(tok)
		if !ok || !pricePlausible(v) {
			continue
		}
		if roi != nil && v == *roi {
			continue
		}
		return &v, confFallbackValue
	}

	return nil, 0
}

// extractTimestamp combines adjacent date and time fragments and parses
// them against the known formats.
func extractTimestamp(tokens []textnorm.Token) (*time.Time, float64) {
	for i, tok := range tokens {
		if tok.Class != textnorm.ClassDateFragment || isTimeOfDay(tok.Text) {
			continue
		}

		if i+1 < len(tokens) && tokens[i+1].Class == textnorm.ClassDateFragment && isTimeOfDay(tokens[i+1].Text) {
			if ts, ok := parseTimestamp(tok.Text + " " + tokens[i+1].Text); ok {
				return &ts, confFullTimestamp
			}
		}
		if ts, ok := parseTimestamp(tok.Text); ok {
			return &ts, confDateOnly
		}
	}
	return nil, 0
}

func parseTimestamp(text string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func isTimeOfDay(text string) bool {
	return strings.Contains(text, ":") && !strings.ContainsAny(text, "-./")
}

// extractStatus reads an explicit outcome word, falling back to the ROI
// sign. Absent both, the outcome is pending.
func extractStatus(tokens []textnorm.Token, roi *float64) domain.TradeStatus {
	for _, tok := range tokens {
		if winWords[tok.Text] {
			return domain.StatusWin
		}
		if lossWords[tok.Text] {
			return domain.StatusLoss
		}
	}
	if roi != nil {
		switch {
		case *roi > 0:
			return domain.StatusWin
		case *roi < 0:
			return domain.StatusLoss
		default:
			return domain.StatusNeutral
		}
	}
	return domain.StatusPending
}

func pricePlausible(v float64) bool {
	return v >= MinPrice && v <= MaxPrice
}

func roiPlausible(v float64) bool {
	return v >= MinROIPercent && v <= MaxROIPercent
}
