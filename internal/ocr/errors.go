package ocr

import "errors"

// Recognition errors. The batch layer distinguishes per-image failures,
// which skip the image, from engine failures, which abort the run.
var (
	// ErrDecode is returned when image bytes cannot be decoded.
	ErrDecode = errors.New("image decode failed")

	// ErrSizeExceeded is returned when an image file is larger than the
	// configured limit.
	ErrSizeExceeded = errors.New("image size exceeds limit")

	// ErrTimeout is returned when recognition does not finish within the
	// per-image deadline. Timeouts are retryable.
	ErrTimeout = errors.New("recognition timed out")

	// ErrEngineUnavailable is returned when the OCR engine cannot be
	// initialized. Unlike per-image errors it is fatal for the whole run.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
)
