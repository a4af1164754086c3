// Package stub provides a scriptable OCR engine. It backs the "stub"
// engine setting for dry runs without a tesseract installation, and lets
// tests script recognition outcomes per image.
package stub

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"tradeproof/internal/ocr"
)

// RecognizeFunc produces the scripted result for an image.
type RecognizeFunc func(img image.Image) (ocr.Result, error)

// Engine is a scriptable ocr.Engine.
type Engine struct {
	fn    RecognizeFunc
	delay time.Duration

	mu     sync.Mutex
	calls  int
	closed bool
}

// New returns an engine that answers every recognition with fn.
func New(fn RecognizeFunc) *Engine {
	return &Engine{fn: fn}
}

// Fixed returns an engine that always recognizes the same text at the
// given confidence.
func Fixed(text string, confidence float64) *Engine {
	return New(func(image.Image) (ocr.Result, error) {
		return ocr.Result{Text: text, Confidence: confidence}, nil
	})
}

// BySize returns an engine that scripts results per image dimensions,
// keyed "WxH" on the preprocessed image bounds. Unknown sizes recognize
// as empty text.
func BySize(scripts map[string]ocr.Result) *Engine {
	return New(func(img image.Image) (ocr.Result, error) {
		key := sizeKey(img)
		if res, ok := scripts[key]; ok {
			return res, nil
		}
		return ocr.Result{}, nil
	})
}

// Delayed returns an engine that waits d before answering, honoring ctx.
// Useful for exercising recognition timeouts.
func Delayed(d time.Duration, result ocr.Result) *Engine {
	e := &Engine{}
	e.fn = func(image.Image) (ocr.Result, error) {
		return result, nil
	}
	e.delay = d
	return e
}

// Recognize returns the scripted result. Returns ocr.ErrTimeout when ctx
// expires before the scripted delay elapses.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (ocr.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return ocr.Result{}, ocr.ErrTimeout
		}
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, ocr.ErrTimeout
	}
	return e.fn(img)
}

// Calls reports how many recognitions ran.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Close marks the engine closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func sizeKey(img image.Image) string {
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

var _ ocr.Engine = (*Engine)(nil)
