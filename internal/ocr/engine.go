// Package ocr reads trading screenshots: it decodes and preprocesses the
// image, runs text recognition through a pluggable engine, and reports a
// recognition confidence alongside the raw text.
package ocr

import (
	"context"
	"image"
)

// Result is the output of one recognition pass.
type Result struct {
	// Text is the raw recognized text before normalization.
	Text string

	// Confidence is the mean word-level recognition confidence in [0,1].
	Confidence float64
}

// Engine recognizes text in a preprocessed image. Implementations are not
// required to be safe for concurrent use; the batch layer creates one
// engine per worker.
type Engine interface {
	// Recognize runs OCR on the image. Honors ctx cancellation and
	// returns ErrTimeout when the deadline expires mid-recognition.
	Recognize(ctx context.Context, img image.Image) (Result, error)

	// Close releases engine resources.
	Close() error
}

// EngineFactory creates one Engine instance. The batch layer calls it once
// per worker so engines never need internal locking.
type EngineFactory func() (Engine, error)
