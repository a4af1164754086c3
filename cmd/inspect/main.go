package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tradeproof/internal/config"
	"tradeproof/internal/domain"
	"tradeproof/internal/extract"
	"tradeproof/internal/ocr"
	"tradeproof/internal/record"
	"tradeproof/internal/textnorm"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	imagePath := flag.String("image", "", "Screenshot to analyze")
	kindFlag := flag.String("kind", "signal", "Record kind: signal or result")
	showText := flag.Bool("show-text", false, "Print the raw and normalized OCR text")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --image is required")
		os.Exit(1)
	}

	var kind domain.RecordKind
	switch strings.ToLower(*kindFlag) {
	case "signal":
		kind = domain.KindSignal
	case "result":
		kind = domain.KindResult
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q, valid: signal, result\n", *kindFlag)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	extractor := extract.New()
	if cfg.OCR.KnownCoinsFile != "" {
		coins, err := extract.LoadCoinFile(cfg.OCR.KnownCoinsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading coin file: %v\n", err)
			os.Exit(1)
		}
		extractor = extract.NewWithCoins(coins)
	}

	engine, err := ocr.NewTesseractEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	reader := ocr.NewReader(engine, cfg.OCR)
	builder := record.NewBuilder(reader, extractor, cfg.OCR.ConfidenceThreshold)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.OCR.TimeoutSeconds)*time.Second*time.Duration(cfg.OCR.RetryAttempts+1))
	defer cancel()

	built, err := builder.Build(ctx, *imagePath, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		os.Exit(1)
	}
	rec := built.Record

	fmt.Printf("Image:       %s\n", rec.SourceImage)
	fmt.Printf("Image Hash:  %s\n", rec.ImageHash)
	fmt.Printf("Record ID:   %s\n", rec.RecordID)
	fmt.Printf("Kind:        %s\n", rec.Kind)
	fmt.Printf("OCR Attempts: %d\n", built.Attempts)
	fmt.Println()

	fmt.Printf("Coin Symbol: %s\n", orDash(rec.CoinSymbol))
	fmt.Printf("Price:       %s\n", floatOrDash(rec.Price))
	fmt.Printf("ROI %%:       %s\n", floatOrDash(rec.ROIPercent))
	fmt.Printf("Timestamp:   %s\n", timeOrDash(rec.Timestamp))
	fmt.Printf("Status:      %s\n", rec.Status)
	fmt.Println()

	fmt.Printf("Confidence:  %.4f", rec.Confidence)
	if rec.LowConfidence {
		fmt.Printf("  (below threshold %.2f, excluded from matching)", cfg.OCR.ConfidenceThreshold)
	}
	fmt.Println()

	if *showText {
		shot, err := reader.Read(ctx, *imagePath)
		if err == nil {
			fmt.Println()
			fmt.Println("Raw OCR text:")
			fmt.Println(shot.RawText)
			fmt.Println("Normalized:")
			fmt.Println(textnorm.Render(textnorm.Normalize(shot.RawText)))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}

func timeOrDash(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.UTC().Format(time.RFC3339)
}
