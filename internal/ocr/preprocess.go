package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// PreprocessOptions selects the enhancement steps applied before
// recognition. Zero value disables everything except grayscale.
type PreprocessOptions struct {
	// ResizeFactor upscales the image before recognition. Values at or
	// below 1 keep the original size.
	ResizeFactor float64

	// EnhanceContrast stretches contrast to separate text from chart
	// backgrounds.
	EnhanceContrast bool

	// Denoise applies a light blur to suppress compression artifacts.
	Denoise bool

	// Sharpen re-sharpens glyph edges after the blur.
	Sharpen bool
}

// Preprocess prepares a screenshot for recognition: grayscale, optional
// upscale, contrast stretch, denoise and sharpen. The input image is not
// modified.
func Preprocess(img image.Image, opts PreprocessOptions) *image.NRGBA {
	out := imaging.Grayscale(img)

	if opts.ResizeFactor > 1 {
		w := int(float64(out.Bounds().Dx()) * opts.ResizeFactor)
		h := int(float64(out.Bounds().Dy()) * opts.ResizeFactor)
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}
	if opts.Denoise {
		out = imaging.Blur(out, 0.5)
	}
	if opts.EnhanceContrast {
		out = imaging.AdjustContrast(out, 30)
	}
	if opts.Sharpen {
		out = imaging.Sharpen(out, 1.0)
	}

	return out
}
