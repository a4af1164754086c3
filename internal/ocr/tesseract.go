package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// charWhitelist restricts recognition to the trading screenshot alphabet:
// tickers, prices, percentages and timestamp separators.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.,%+-$/: "

// TesseractEngine recognizes text through a tesseract client. Not safe for
// concurrent use.
type TesseractEngine struct {
	// mu serializes client access: a timed-out pass keeps running in its
	// goroutine, and the retry must not touch the client until it ends.
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine initializes a tesseract client tuned for screenshot
// text. Returns ErrEngineUnavailable when tesseract cannot be set up.
func NewTesseractEngine() (*TesseractEngine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set language: %v", ErrEngineUnavailable, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set segmentation mode: %v", ErrEngineUnavailable, err)
	}
	if err := client.SetWhitelist(charWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set whitelist: %v", ErrEngineUnavailable, err)
	}

	return &TesseractEngine{client: client}, nil
}

// Recognize runs tesseract on the image. Recognition itself cannot be
// interrupted, so on ctx expiry the call returns ErrTimeout and the
// in-flight pass is abandoned.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, ErrTimeout
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("encode for recognition: %w", err)
	}

	type recognition struct {
		result Result
		err    error
	}
	done := make(chan recognition, 1)

	go func() {
		res, err := e.recognize(buf.Bytes())
		done <- recognition{result: res, err: err}
	}()

	select {
	case r := <-done:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ErrTimeout
	}
}

func (e *TesseractEngine) recognize(imageBytes []byte) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(imageBytes); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("word confidences: %w", err)
	}

	return Result{Text: text, Confidence: meanConfidence(boxes)}, nil
}

// meanConfidence averages the word-level confidences, scaled from
// tesseract's 0-100 range to [0,1]. No words means zero confidence.
func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}

// Close releases the tesseract client.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

var _ Engine = (*TesseractEngine)(nil)
