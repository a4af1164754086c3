package ocr

import (
	"image"

	"tradeproof/internal/domain"
)

// colorDominanceRatio is how much one channel population must outweigh the
// other before the probe commits to an outcome.
const colorDominanceRatio = 1.5

// ProbeOutcomeColor estimates the trade outcome from screenshot colors.
// PnL panels render profits green and losses red, so a clear dominance of
// one population decides the outcome. Returns StatusPending when neither
// color dominates.
func ProbeOutcomeColor(img image.Image) domain.TradeStatus {
	var green, red int

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			r8, g8, b8 := int(r>>8), int(g>>8), int(bl>>8)

			// Saturated pixels only; gray chart chrome is skipped.
			switch {
			case g8 > r8+40 && g8 > b8+40:
				green++
			case r8 > g8+40 && r8 > b8+40:
				red++
			}
		}
	}

	switch {
	case red == 0 && green == 0:
		return domain.StatusPending
	case float64(green) > float64(red)*colorDominanceRatio:
		return domain.StatusWin
	case float64(red) > float64(green)*colorDominanceRatio:
		return domain.StatusLoss
	default:
		return domain.StatusPending
	}
}
