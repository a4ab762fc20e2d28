package liveness

import (
	"os"
	"strconv"
)

// Config is the immutable pipeline configuration. It is built once at
// startup and passed into every component constructor so tests can vary
// thresholds without touching process state.
type Config struct {
	MaxSizeBytes       int64
	MinDurationSeconds float64
	MaxDurationSeconds float64
	SampleFrameCount   int

	// RealThreshold decides the OK branch and the IsLive flag. It must be
	// the same constant for both.
	RealThreshold float64
	// NeutralBand is the half-width of the no-detection band around 0.5.
	NeutralBand float64
	// SpoofCut is the open upper bound of the spoof-detected branch.
	SpoofCut float64

	// InvertClasses swaps the fake/real indices of the model's output
	// vector. Model version changes flip this flag, not code.
	InvertClasses bool
	ModelPath     string
}

func DefaultConfig() Config {
	return Config{
		MaxSizeBytes:       15 << 20,
		MinDurationSeconds: 1.0,
		MaxDurationSeconds: 10.0,
		SampleFrameCount:   12,
		RealThreshold:      0.85,
		NeutralBand:        0.05,
		SpoofCut:           0.10,
		InvertClasses:      true,
	}
}

// ConfigFromEnv builds the pipeline config from environment variables,
// falling back to defaults for anything unset or unparsable.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if mb, err := strconv.ParseInt(os.Getenv("MAX_VIDEO_SIZE_MB"), 10, 64); err == nil && mb > 0 {
		cfg.MaxSizeBytes = mb << 20
	}
	if v, err := strconv.ParseFloat(os.Getenv("MIN_VIDEO_DURATION_SECONDS"), 64); err == nil && v > 0 {
		cfg.MinDurationSeconds = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("MAX_VIDEO_DURATION_SECONDS"), 64); err == nil && v > cfg.MinDurationSeconds {
		cfg.MaxDurationSeconds = v
	}
	if v, err := strconv.Atoi(os.Getenv("SAMPLE_FRAME_COUNT")); err == nil && v > 0 {
		cfg.SampleFrameCount = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("REAL_THRESHOLD"), 64); err == nil && v > 0 && v <= 1 {
		cfg.RealThreshold = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("NEUTRAL_BAND"), 64); err == nil && v > 0 && v < 0.5 {
		cfg.NeutralBand = v
	}
	if invert := os.Getenv("INVERT_CLASSES"); invert != "" {
		cfg.InvertClasses = invert == "true"
	}
	cfg.ModelPath = os.Getenv("CLASSIFIER_MODEL_PATH")
	return cfg
}
