package domain

// OutcomeStatus is the terminal state of one image within a batch.
type OutcomeStatus string

// Outcome status constants
const (
	OutcomeSuccess OutcomeStatus = "SUCCESS"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
	OutcomeFailed  OutcomeStatus = "FAILED"
)

// Skip reason codes
const (
	SkipReasonCorrupted   = "corrupted"
	SkipReasonDuplicate   = "duplicate"
	SkipReasonUnsupported = "unsupported_format"
	SkipReasonBatchLimit  = "batch_size_limit"
	SkipReasonCancelled   = "cancelled"
)

// ImageOutcome records the terminal state of one image. Every enumerated
// image gets exactly one outcome; the batch never short-circuits on a
// single failure.
type ImageOutcome struct {
	ImagePath string
	Kind      RecordKind
	Status    OutcomeStatus

	// Reason holds the skip reason code or failure error text.
	// Empty on success.
	Reason string

	// RecordID references the produced candidate record. Set on success.
	RecordID string

	Attempts   int   // OCR attempts spent, including retries
	DurationMs int64 // wall time spent on this image
}
