package record_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"tradeproof/internal/config"
	"tradeproof/internal/domain"
	"tradeproof/internal/extract"
	"tradeproof/internal/ocr"
	"tradeproof/internal/ocr/stub"
	"tradeproof/internal/record"
)

func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func newBuilder(engine ocr.Engine, threshold float64) *record.Builder {
	cfg := config.Default().OCR
	reader := ocr.NewReader(engine, cfg)
	return record.NewBuilder(reader, extract.New(), threshold)
}

func TestBuild_SignalRecord(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "signal.png", color.White)

	engine := stub.Fixed("BTC/USDT Long Entry $42,150.00 2024-03-15 14:30", 0.95)
	builder := newBuilder(engine, 0.7)

	built, err := builder.Build(context.Background(), path, domain.KindSignal)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec := built.Record
	if rec.Kind != domain.KindSignal {
		t.Errorf("Kind = %v", rec.Kind)
	}
	if rec.CoinSymbol != "BTC" {
		t.Errorf("CoinSymbol = %q, want BTC", rec.CoinSymbol)
	}
	if rec.Price == nil || *rec.Price != 42150.00 {
		t.Errorf("Price = %v, want 42150.00", rec.Price)
	}
	if rec.ROIPercent != nil {
		t.Errorf("ROIPercent = %v, want nil for a signal", *rec.ROIPercent)
	}
	if rec.Status != domain.StatusPending {
		t.Errorf("Status = %v, want pending for a signal", rec.Status)
	}
	if rec.LowConfidence {
		t.Errorf("LowConfidence = true at confidence %f", rec.Confidence)
	}
	if rec.RecordID == "" || rec.ImageHash == "" {
		t.Error("identity fields not populated")
	}
	if !rec.Matchable() {
		t.Error("clean signal record should be matchable")
	}
}

func TestBuild_ResultRecordStatusFromROI(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "result.png", color.White)

	engine := stub.Fixed("BTC Closed ROI +23.45% Exit $52,042.50", 0.9)
	builder := newBuilder(engine, 0.7)

	built, err := builder.Build(context.Background(), path, domain.KindResult)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec := built.Record
	if rec.ROIPercent == nil || *rec.ROIPercent != 23.45 {
		t.Errorf("ROIPercent = %v, want 23.45", rec.ROIPercent)
	}
	if rec.Status != domain.StatusWin {
		t.Errorf("Status = %v, want win", rec.Status)
	}
}

func TestBuild_ResultStatusFallsBackToColor(t *testing.T) {
	dir := t.TempDir()
	// Red screenshot, no ROI in the text.
	path := writePNG(t, dir, "loss.png", color.RGBA{R: 200, G: 20, B: 20, A: 255})

	engine := stub.Fixed("ETH Closed", 0.9)
	builder := newBuilder(engine, 0.9)

	built, err := builder.Build(context.Background(), path, domain.KindResult)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Record.Status != domain.StatusLoss {
		t.Errorf("Status = %v, want loss from color probe", built.Record.Status)
	}
}

func TestBuild_LowConfidenceTagged(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "noisy.png", color.White)

	// Unknown ticker and fallback extractions under a mediocre scan.
	engine := stub.Fixed("ZZZZZZ 45.1", 0.4)
	builder := newBuilder(engine, 0.7)

	built, err := builder.Build(context.Background(), path, domain.KindSignal)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec := built.Record
	if !rec.LowConfidence {
		t.Errorf("LowConfidence = false at confidence %f", rec.Confidence)
	}
	if rec.Matchable() {
		t.Error("low-confidence record must not be matchable")
	}
}

func TestBuild_NoFieldsScoresZero(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "blank.png", color.White)

	engine := stub.Fixed("", 0.99)
	builder := newBuilder(engine, 0.7)

	built, err := builder.Build(context.Background(), path, domain.KindSignal)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Record.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0 with no extracted fields", built.Record.Confidence)
	}
	if !built.Record.LowConfidence {
		t.Error("empty record must be low-confidence")
	}
}

func TestBuild_DeterministicRecordID(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "stable.png", color.White)

	engine := stub.Fixed("SOL Entry 145.20", 0.9)
	builder := newBuilder(engine, 0.7)

	first, err := builder.Build(context.Background(), path, domain.KindSignal)
	if err != nil {
		t.Fatal(err)
	}
	second, err := builder.Build(context.Background(), path, domain.KindSignal)
	if err != nil {
		t.Fatal(err)
	}
	if first.Record.RecordID != second.Record.RecordID {
		t.Error("RecordID not stable across runs")
	}

	asResult, err := builder.Build(context.Background(), path, domain.KindResult)
	if err != nil {
		t.Fatal(err)
	}
	if asResult.Record.RecordID == first.Record.RecordID {
		t.Error("RecordID must differ across kinds for the same image")
	}
}

func TestBuild_PropagatesReadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	builder := newBuilder(stub.Fixed("X", 0.9), 0.7)
	_, err := builder.Build(context.Background(), path, domain.KindSignal)
	if !errors.Is(err, ocr.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}
