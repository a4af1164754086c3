// Package config loads and validates the YAML configuration file.
// The loaded Config is an immutable value passed into every component;
// nothing in the pipeline reads process-wide state.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration root.
type Config struct {
	// App holds base application settings.
	App AppConfig `yaml:"app"`
	// OCR holds screenshot reader and engine settings.
	OCR OCRConfig `yaml:"ocr"`
	// Match holds signal/result reconciliation settings.
	Match MatchConfig `yaml:"match"`
	// Batch holds directory scan and worker pool settings.
	Batch BatchConfig `yaml:"batch"`
	// Archive holds optional record archive settings.
	Archive ArchiveConfig `yaml:"archive"`
	// Output holds report output settings.
	Output OutputConfig `yaml:"output"`
}

// AppConfig holds base application settings.
type AppConfig struct {
	// Name is the application name used in log fields.
	Name string `yaml:"name"`
	// LogLevel is one of: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// OCRConfig holds screenshot reader and engine settings.
type OCRConfig struct {
	// Engine selects the OCR backend: "tesseract" or "stub".
	Engine string `yaml:"engine"`
	// ConfidenceThreshold marks records below it low_confidence (0-1).
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// TimeoutSeconds bounds a single OCR attempt.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// RetryAttempts is the number of additional attempts after a timeout.
	RetryAttempts int `yaml:"retry_attempts"`
	// MaxImageBytes rejects larger files with SizeExceeded.
	MaxImageBytes int64 `yaml:"max_image_bytes"`
	// KnownCoinsFile optionally extends the built-in ticker allow-list,
	// one symbol per line.
	KnownCoinsFile string `yaml:"known_coins_file"`
	// Preprocess holds the image preprocessing toggles.
	Preprocess PreprocessConfig `yaml:"preprocess"`
}

// PreprocessConfig holds the image preprocessing toggles.
// The chain order is fixed; toggles only switch steps on and off so
// identical input plus identical config always yields identical pixels.
type PreprocessConfig struct {
	// EnhanceContrast applies contrast stretching after grayscale.
	EnhanceContrast bool `yaml:"enhance_contrast"`
	// Denoise applies a light blur to suppress sensor noise.
	Denoise bool `yaml:"denoise"`
	// Sharpen applies an unsharp mask after denoising.
	Sharpen bool `yaml:"sharpen"`
	// ResizeFactor upscales both dimensions; 1.0 disables resizing.
	ResizeFactor float64 `yaml:"resize_factor"`
	// AutoRotate applies the EXIF orientation during decode.
	AutoRotate bool `yaml:"auto_rotate"`
}

// MatchConfig holds signal/result reconciliation settings.
type MatchConfig struct {
	// AutoMatchThreshold is the minimum pairing score (0-1) for a pair
	// to be committed automatically.
	AutoMatchThreshold float64 `yaml:"auto_match_threshold"`
}

// BatchConfig holds directory scan and worker pool settings.
type BatchConfig struct {
	// MaxWorkers bounds the worker pool size.
	MaxWorkers int `yaml:"max_workers"`
	// BatchSize caps the number of images processed per run, counted
	// across both directories in enumeration order; 0 means unlimited.
	BatchSize int `yaml:"batch_size"`
	// SupportedFormats lists accepted file extensions (with dot).
	SupportedFormats []string `yaml:"supported_formats"`
	// SkipCorrupted records decode failures as Skipped instead of Failed.
	SkipCorrupted bool `yaml:"skip_corrupted"`
}

// ArchiveConfig holds optional record archive settings. The archive is a
// side sink: the pipeline result never depends on it.
type ArchiveConfig struct {
	// Enabled switches record archiving on. Without a DSN the archive
	// runs over the in-memory stores.
	Enabled bool `yaml:"enabled"`
	// PostgresDSN is the candidate/trade record archive DSN.
	// Empty keeps the in-memory archive.
	PostgresDSN string `yaml:"postgres_dsn"`
	// ClickHouseDSN is the per-image extraction telemetry sink DSN.
	// Empty disables telemetry.
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	// Dir is the directory for the generated report bundle.
	Dir string `yaml:"dir"`
}

// Load reads the config file, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// skip_corrupted defaults to true: absent keys keep the seed value,
	// an explicit false still wins.
	cfg := Config{Batch: BatchConfig{SkipCorrupted: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := Config{Batch: BatchConfig{SkipCorrupted: true}}
	cfg.setDefaults()
	return &cfg
}

// setDefaults fills zero values with defaults. Matches the defaults the
// original screenshot tooling shipped with.
func (c *Config) setDefaults() {
	if c.App.Name == "" {
		c.App.Name = "tradeproof"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	if c.OCR.Engine == "" {
		c.OCR.Engine = "tesseract"
	}
	if c.OCR.ConfidenceThreshold == 0 {
		c.OCR.ConfidenceThreshold = 0.7
	}
	if c.OCR.TimeoutSeconds == 0 {
		c.OCR.TimeoutSeconds = 30
	}
	if c.OCR.RetryAttempts == 0 {
		c.OCR.RetryAttempts = 2
	}
	if c.OCR.MaxImageBytes == 0 {
		c.OCR.MaxImageBytes = 20 << 20 // 20 MiB
	}
	if c.OCR.Preprocess == (PreprocessConfig{}) {
		c.OCR.Preprocess = PreprocessConfig{
			EnhanceContrast: true,
			Denoise:         true,
			Sharpen:         true,
			ResizeFactor:    2.0,
		}
	}
	if c.OCR.Preprocess.ResizeFactor == 0 {
		c.OCR.Preprocess.ResizeFactor = 1.0
	}

	if c.Match.AutoMatchThreshold == 0 {
		c.Match.AutoMatchThreshold = 0.8
	}

	if c.Batch.MaxWorkers == 0 {
		c.Batch.MaxWorkers = 4
	}
	if len(c.Batch.SupportedFormats) == 0 {
		c.Batch.SupportedFormats = []string{".jpg", ".jpeg", ".png"}
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	var errs []string

	switch c.OCR.Engine {
	case "tesseract", "stub":
	default:
		errs = append(errs, fmt.Sprintf("ocr.engine: unknown engine %q, valid: tesseract, stub", c.OCR.Engine))
	}
	if c.OCR.ConfidenceThreshold < 0 || c.OCR.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Sprintf("ocr.confidence_threshold: must be in [0,1], got %f", c.OCR.ConfidenceThreshold))
	}
	if c.OCR.TimeoutSeconds <= 0 {
		errs = append(errs, "ocr.timeout_seconds: must be positive")
	}
	if c.OCR.RetryAttempts < 0 {
		errs = append(errs, "ocr.retry_attempts: must not be negative")
	}
	if c.OCR.MaxImageBytes <= 0 {
		errs = append(errs, "ocr.max_image_bytes: must be positive")
	}
	if c.OCR.Preprocess.ResizeFactor < 1.0 || c.OCR.Preprocess.ResizeFactor > 8.0 {
		errs = append(errs, fmt.Sprintf("ocr.preprocess.resize_factor: must be in [1,8], got %f", c.OCR.Preprocess.ResizeFactor))
	}

	if c.Match.AutoMatchThreshold < 0 || c.Match.AutoMatchThreshold > 1 {
		errs = append(errs, fmt.Sprintf("match.auto_match_threshold: must be in [0,1], got %f", c.Match.AutoMatchThreshold))
	}

	if c.Batch.MaxWorkers <= 0 {
		errs = append(errs, "batch.max_workers: must be positive")
	}
	if c.Batch.BatchSize < 0 {
		errs = append(errs, "batch.batch_size: must not be negative")
	}
	for i, ext := range c.Batch.SupportedFormats {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("batch.supported_formats[%d]: extension %q must start with a dot", i, ext))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: invalid level %q, valid: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SupportsExtension reports whether the file extension is configured as a
// supported image format. Comparison is case-insensitive.
func (c *BatchConfig) SupportsExtension(ext string) bool {
	for _, e := range c.SupportedFormats {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
