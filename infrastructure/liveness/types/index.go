package types

import (
	"fmt"
	"os"
)

// Frame is a single decoded raster frame. Implementations own the
// underlying pixel buffer and must be closed by whoever drops them.
type Frame interface {
	PresentationMillis() float64
	EncodeJPEG() ([]byte, error)
	Close()
}

// VideoSource is one exclusive decoder handle over a stored video asset.
// Declared metadata comes straight from the container header and may be
// zero, negative or absurd; callers must not trust it.
type VideoSource interface {
	DeclaredFrameRate() float64
	DeclaredFrameCount() float64
	SeekFrame(index int) bool
	ReadFrame() (Frame, bool)
	Close() error
}

// SourceOpener opens a fresh decoder handle for an asset path. Handles are
// not safe for concurrent use, so every probe opens its own.
type SourceOpener func(path string) (VideoSource, error)

// ClassifierModel is the opaque per-frame classification model. Classify
// returns a two-class probability vector; index semantics are decided by
// the adapter's configuration, not by the model.
type ClassifierModel interface {
	Loaded() bool
	Classify(frame Frame) ([]float32, error)
}

// VideoAsset is a handle to uploaded video bytes at rest. It is created by
// the request boundary and removed from storage unconditionally once the
// pipeline terminates.
type VideoAsset struct {
	ID        string
	Path      string
	SizeBytes int64

	released bool
}

// Release deletes the asset from storage. Safe to call more than once.
func (asset *VideoAsset) Release() error {
	if asset.released || asset.Path == "" {
		return nil
	}
	asset.released = true
	err := os.Remove(asset.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// SampledFrameSet is an ordered, presentation-order sequence of frames plus
// the frame rate the sampler settled on after metadata correction.
type SampledFrameSet struct {
	Frames             []Frame
	EffectiveFrameRate float64
	RequestedCount     int
}

func (set *SampledFrameSet) ActualCount() int {
	return len(set.Frames)
}

// Close releases every frame buffer in the set.
func (set *SampledFrameSet) Close() {
	for _, frame := range set.Frames {
		frame.Close()
	}
	set.Frames = nil
}

type DetectionTag string

const (
	TagRealDetected DetectionTag = "real-detected"
	TagFakeDetected DetectionTag = "fake-detected"
	TagNoDetection  DetectionTag = "no-detection"
)

// FrameProbability is one "real" confidence in [0,1] for a scored frame.
type FrameProbability struct {
	RealProbability float64      `json:"real_probability"`
	Tag             DetectionTag `json:"tag"`
}

// FusionInput maps a signal name to its scalar score in [0,1]. Today there
// is exactly one signal; the map shape lets more be added without touching
// the decision engine's contract.
type FusionInput map[string]float64

const SignalClassifier = "classifier"

type ReasonCode string

const (
	ReasonOK            ReasonCode = "ok"
	ReasonNoDetection   ReasonCode = "no_detection"
	ReasonSpoofDetected ReasonCode = "spoof_detected"
	ReasonLowConfidence ReasonCode = "low_confidence"
	ReasonImageFallback ReasonCode = "image_fallback"
)

// LivenessVerdict is the sole artifact handed to the identity collaborator.
type LivenessVerdict struct {
	IsLive          bool        `json:"is_live"`
	FinalScore      float64     `json:"final_score"`
	ReasonCode      ReasonCode  `json:"reason"`
	PerSignalScores FusionInput `json:"scores"`
}

// ClassifierDiagnostics is returned alongside the probability list so no
// state has to be stashed across calls.
type ClassifierDiagnostics struct {
	ModelLoaded  bool      `json:"model_loaded"`
	FramesScored int       `json:"frames_scored"`
	RealScores   []float64 `json:"real_scores"`
}

type ValidationKind string

const (
	ValidationTooLarge   ValidationKind = "too_large"
	ValidationEmpty      ValidationKind = "empty"
	ValidationUnopenable ValidationKind = "unopenable"
	ValidationTooShort   ValidationKind = "too_short"
	ValidationTooLong    ValidationKind = "too_long"
)

// ValidationError rejects an asset before any sampling work is spent. The
// Reason string is stable and safe to surface to the caller.
type ValidationError struct {
	Kind   ValidationKind
	Reason string
}

func (err *ValidationError) Error() string {
	return err.Reason
}

// DecodeError means the asset opened but could not yield usable frames
// within the sampling attempt budget.
type DecodeError struct {
	Reason string
}

func (err *DecodeError) Error() string {
	return err.Reason
}

// InternalError wraps an unexpected fault in a pipeline stage. The wrapped
// error never reaches the API boundary.
type InternalError struct {
	Stage string
	Err   error
}

func (err *InternalError) Error() string {
	return fmt.Sprintf("internal failure in %s stage", err.Stage)
}

func (err *InternalError) Unwrap() error {
	return err.Err
}
