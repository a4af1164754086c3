// Package record assembles candidate trade records from screenshots. The
// builder runs the full read-normalize-extract chain for one image and
// scores the result with a combined confidence.
package record

import (
	"context"

	"tradeproof/internal/domain"
	"tradeproof/internal/extract"
	"tradeproof/internal/idhash"
	"tradeproof/internal/ocr"
	"tradeproof/internal/textnorm"
)

// Field weights for the combined record confidence. The symbol carries the
// most weight since matching is impossible without it. The ROI weight only
// applies to result records; signals are not penalized for lacking one.
const (
	weightSymbol    = 0.5
	weightPrice     = 0.2
	weightROI       = 0.2
	weightTimestamp = 0.1
)

// Recognition and extraction confidence are blended: a clean extraction
// from a noisy scan is still suspect.
const (
	blendFields = 0.6
	blendEngine = 0.4
)

// Built is the outcome of building one record.
type Built struct {
	Record domain.CandidateRecord

	// Attempts is how many recognition passes the reader ran.
	Attempts int
}

// Builder builds candidate records from screenshot files.
type Builder struct {
	reader    *ocr.Reader
	extractor *extract.Extractor

	// threshold is the confidence below which a record is tagged
	// low-confidence and excluded from automatic matching.
	threshold float64
}

// NewBuilder wires a reader and extractor into a builder.
func NewBuilder(reader *ocr.Reader, extractor *extract.Extractor, confidenceThreshold float64) *Builder {
	return &Builder{reader: reader, extractor: extractor, threshold: confidenceThreshold}
}

// Build reads one screenshot and produces a candidate record of the given
// kind. Read errors propagate unchanged so the batch layer can classify
// them.
func (b *Builder) Build(ctx context.Context, path string, kind domain.RecordKind) (*Built, error) {
	shot, err := b.reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	fields := b.extractor.Extract(textnorm.Normalize(shot.RawText))

	rec := domain.CandidateRecord{
		RecordID:    idhash.ComputeRecordID(kind, shot.ImageHash),
		Kind:        kind,
		CoinSymbol:  fields.Symbol,
		Price:       fields.Price,
		ROIPercent:  fields.ROIPercent,
		Timestamp:   fields.Timestamp,
		Status:      resolveStatus(kind, fields, shot),
		SourceImage: shot.Path,
		ImageHash:   shot.ImageHash,
		Confidence:  combinedConfidence(kind, fields, shot.Confidence),
	}
	rec.LowConfidence = rec.Confidence < b.threshold

	return &Built{Record: rec, Attempts: shot.Attempts}, nil
}

// resolveStatus decides the trade outcome for result records: extracted
// outcome words and ROI sign first, the color probe as fallback. Signals
// are always pending.
func resolveStatus(kind domain.RecordKind, fields extract.Fields, shot *ocr.Screenshot) domain.TradeStatus {
	if kind != domain.KindResult {
		return domain.StatusPending
	}
	if fields.Status != domain.StatusPending {
		return fields.Status
	}
	return ocr.ProbeOutcomeColor(shot.Image)
}

// combinedConfidence blends the weighted field confidences with the
// engine's recognition confidence. A record with no extracted fields at
// all scores zero regardless of scan quality.
func combinedConfidence(kind domain.RecordKind, fields extract.Fields, engineConf float64) float64 {
	if fields.Symbol == "" && fields.Price == nil && fields.ROIPercent == nil && fields.Timestamp == nil {
		return 0
	}

	weighted := fields.SymbolConf*weightSymbol +
		fields.PriceConf*weightPrice +
		fields.TimestampConf*weightTimestamp
	total := weightSymbol + weightPrice + weightTimestamp

	if kind == domain.KindResult {
		weighted += fields.ROIConf * weightROI
		total += weightROI
	}

	return blendFields*(weighted/total) + blendEngine*engineConf
}
