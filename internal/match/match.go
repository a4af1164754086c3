// Package match pairs signal records with result records. Scoring is a
// weighted blend of symbol identity, temporal proximity and price
// consistency; pairing is greedy best-first with no record reuse, and the
// whole process is deterministic for a given input set.
package match

import (
	"math"
	"sort"
	"time"

	"tradeproof/internal/domain"
	"tradeproof/internal/idhash"
)

// Component weights. Weights for components that cannot be evaluated, a
// missing timestamp or price, are excluded from the denominator instead
// of scoring zero.
const (
	weightSymbol   = 0.6
	weightTemporal = 0.2
	weightPrice    = 0.2
)

// Temporal scoring shape: full credit within one hour, then exponential
// decay with a one day half-life scale.
const (
	fullCreditWindow = time.Hour
	decayScale       = 24 * time.Hour
)

// Result is the complete matching outcome. Trades are sorted by ROI
// descending; unmatched slices preserve input order.
type Result struct {
	Trades           []domain.TradeRecord
	UnmatchedSignals []domain.CandidateRecord
	UnmatchedResults []domain.CandidateRecord
}

// Matcher pairs signals with results above a score threshold.
type Matcher struct {
	threshold float64
}

// New returns a Matcher with the given auto-match threshold.
func New(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Score rates one signal/result pairing in [0,1]. A symbol mismatch is
// disqualifying and scores zero regardless of other components.
func (m *Matcher) Score(signal, result *domain.CandidateRecord) float64 {
	if signal.CoinSymbol == "" || signal.CoinSymbol != result.CoinSymbol {
		return 0
	}

	earned := weightSymbol
	applicable := weightSymbol

	if signal.Timestamp != nil && result.Timestamp != nil {
		applicable += weightTemporal
		earned += weightTemporal * temporalScore(*signal.Timestamp, *result.Timestamp)
	}

	if signal.Price != nil && result.Price != nil {
		applicable += weightPrice
		earned += weightPrice * priceScore(*signal.Price, *result.Price)
	}

	return earned / applicable
}

// temporalScore gives full credit when the result lands within the credit
// window after the signal and decays beyond it. A result timestamped
// before its signal scores zero.
func temporalScore(signal, result time.Time) float64 {
	gap := result.Sub(signal)
	if gap < 0 {
		return 0
	}
	if gap <= fullCreditWindow {
		return 1
	}
	return math.Exp(-float64(gap-fullCreditWindow) / float64(decayScale))
}

// priceScore rates entry/exit consistency by the order-of-magnitude
// distance between the prices. Same magnitude scores 1, each decade of
// separation halves the credit.
func priceScore(entry, exit float64) float64 {
	if entry <= 0 || exit <= 0 {
		return 0
	}
	return 1 / (1 + math.Abs(math.Log10(exit/entry)))
}

// candidate pairing under consideration, carrying indexes into the input
// slices.
type pair struct {
	si, ri int
	score  float64
}

// Match pairs matchable signals with matchable results greedily by
// descending score. Records tagged low-confidence or lacking a symbol
// never enter matching and are returned in the unmatched slices.
func (m *Matcher) Match(signals, results []domain.CandidateRecord) Result {
	var pairs []pair
	for si := range signals {
		if !signals[si].Matchable() {
			continue
		}
		for ri := range results {
			if !results[ri].Matchable() {
				continue
			}
			if s := m.Score(&signals[si], &results[ri]); s >= m.threshold {
				pairs = append(pairs, pair{si: si, ri: ri, score: s})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.score != b.score {
			return a.score > b.score
		}
		at, bt := signals[a.si].Timestamp, signals[b.si].Timestamp
		if !equalTimePtr(at, bt) {
			return earlierTimePtr(at, bt)
		}
		if signals[a.si].SourceImage != signals[b.si].SourceImage {
			return signals[a.si].SourceImage < signals[b.si].SourceImage
		}
		return results[a.ri].SourceImage < results[b.ri].SourceImage
	})

	usedSignal := make(map[int]bool, len(signals))
	usedResult := make(map[int]bool, len(results))

	var trades []domain.TradeRecord
	for _, p := range pairs {
		if usedSignal[p.si] || usedResult[p.ri] {
			continue
		}
		usedSignal[p.si] = true
		usedResult[p.ri] = true
		trades = append(trades, buildTrade(&signals[p.si], &results[p.ri], p.score))
	}

	sortTradesByROI(trades)

	var res Result
	res.Trades = trades
	for i := range signals {
		if !usedSignal[i] {
			res.UnmatchedSignals = append(res.UnmatchedSignals, signals[i])
		}
	}
	for i := range results {
		if !usedResult[i] {
			res.UnmatchedResults = append(res.UnmatchedResults, results[i])
		}
	}
	return res
}

// buildTrade reconciles a matched pair into a trade record. ROI comes
// from the result, falling back to whatever the signal carried.
func buildTrade(signal, result *domain.CandidateRecord, score float64) domain.TradeRecord {
	roi := result.ROIPercent
	if roi == nil {
		roi = signal.ROIPercent
	}

	return domain.TradeRecord{
		TradeID:         idhash.ComputeTradeID(signal.RecordID, result.RecordID),
		CoinSymbol:      signal.CoinSymbol,
		EntryPrice:      signal.Price,
		ExitPrice:       result.Price,
		ROIPercent:      roi,
		Status:          result.Status,
		SignalTimestamp: signal.Timestamp,
		ResultTimestamp: result.Timestamp,
		MatchConfidence: score,
		SignalSource:    signal.SourceImage,
		ResultSource:    result.SourceImage,
	}
}

// sortTradesByROI orders trades by ROI descending. Trades without an ROI
// sort last; ties break on trade id for stability.
func sortTradesByROI(trades []domain.TradeRecord) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i].ROIPercent, trades[j].ROIPercent
		switch {
		case a == nil && b == nil:
			return trades[i].TradeID < trades[j].TradeID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return trades[i].TradeID < trades[j].TradeID
		}
	})
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// earlierTimePtr orders non-nil timestamps first, then by time.
func earlierTimePtr(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
