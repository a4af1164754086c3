package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"tradeproof/internal/config"
	"tradeproof/internal/idhash"
)

// Screenshot is the outcome of reading one image file.
type Screenshot struct {
	// Path is the source file path.
	Path string

	// ImageHash is the SHA-256 of the raw file bytes, used for duplicate
	// detection across differently named files.
	ImageHash string

	// RawText is the recognized text before normalization.
	RawText string

	// Confidence is the engine's recognition confidence in [0,1].
	Confidence float64

	// Image is the decoded source image, kept for the outcome color
	// probe.
	Image image.Image

	// Attempts is how many recognition passes ran, including retries.
	Attempts int
}

// Reader reads screenshot files through one OCR engine. Recognition
// timeouts are retried with a fresh per-attempt deadline; all other errors
// fail the image immediately.
type Reader struct {
	engine     Engine
	maxBytes   int64
	timeout    time.Duration
	retries    int
	preprocess PreprocessOptions
	autoRotate bool
}

// NewReader builds a Reader over the engine using the OCR settings.
func NewReader(engine Engine, cfg config.OCRConfig) *Reader {
	return &Reader{
		engine:   engine,
		maxBytes: cfg.MaxImageBytes,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		retries:  cfg.RetryAttempts,
		preprocess: PreprocessOptions{
			ResizeFactor:    cfg.Preprocess.ResizeFactor,
			EnhanceContrast: cfg.Preprocess.EnhanceContrast,
			Denoise:         cfg.Preprocess.Denoise,
			Sharpen:         cfg.Preprocess.Sharpen,
		},
		autoRotate: cfg.Preprocess.AutoRotate,
	}
}

// Read loads, decodes, preprocesses and recognizes one screenshot.
// Returns ErrSizeExceeded for oversized files, ErrDecode for corrupted
// ones and ErrTimeout when recognition still times out after all retries.
func (r *Reader) Read(ctx context.Context, path string) (*Screenshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrSizeExceeded, path, info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(r.autoRotate))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	prepared := Preprocess(img, r.preprocess)

	shot := &Screenshot{
		Path:      path,
		ImageHash: idhash.ComputeImageHash(raw),
		Image:     img,
	}

	for attempt := 0; attempt <= r.retries; attempt++ {
		shot.Attempts = attempt + 1

		res, err := r.recognizeOnce(ctx, prepared)
		if err == nil {
			shot.RawText = res.Text
			shot.Confidence = res.Confidence
			return shot, nil
		}
		if !errors.Is(err, ErrTimeout) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", ErrTimeout, path, r.retries+1)
}

func (r *Reader) recognizeOnce(ctx context.Context, img image.Image) (Result, error) {
	attemptCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.engine.Recognize(attemptCtx, img)
}
