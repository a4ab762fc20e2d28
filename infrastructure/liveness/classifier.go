package liveness

import (
	"math"

	"facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
)

// frames scored = at most one in classifierSubsampleDivisor of the set
const classifierSubsampleDivisor = 5

const neutralProbability = 0.5

// FrameClassifier adapts the opaque classification model to the pipeline:
// it subsamples the frame set to bound inference cost, interprets the
// model's two-class output under the configured class order, and records
// the "real" component per frame.
type FrameClassifier struct {
	cfg   Config
	model types.ClassifierModel
}

func NewFrameClassifier(cfg Config, model types.ClassifierModel) *FrameClassifier {
	return &FrameClassifier{cfg: cfg, model: model}
}

// Classify scores the set and returns per-frame probabilities together
// with a diagnostics record. When the model is not loaded, or the set is
// empty, every probability is the neutral 0.5 and the model is never
// invoked, so the degraded signal stays visible in the verdict instead of
// masquerading as confidence.
func (classifier *FrameClassifier) Classify(set *types.SampledFrameSet) ([]types.FrameProbability, types.ClassifierDiagnostics) {
	diagnostics := types.ClassifierDiagnostics{
		ModelLoaded: classifier.model != nil && classifier.model.Loaded(),
	}

	actual := set.ActualCount()
	if !diagnostics.ModelLoaded || actual == 0 {
		neutral := make([]types.FrameProbability, actual)
		for i := range neutral {
			neutral[i] = types.FrameProbability{RealProbability: neutralProbability, Tag: types.TagNoDetection}
		}
		return neutral, diagnostics
	}

	selected := evenIndices(actual, subsampleCount(actual))
	probabilities := make([]types.FrameProbability, 0, len(selected))
	for _, index := range selected {
		probability := classifier.scoreFrame(set.Frames[index])
		probabilities = append(probabilities, probability)
		diagnostics.RealScores = append(diagnostics.RealScores, probability.RealProbability)
	}
	diagnostics.FramesScored = len(probabilities)
	return probabilities, diagnostics
}

func (classifier *FrameClassifier) scoreFrame(frame types.Frame) types.FrameProbability {
	vector, err := classifier.model.Classify(frame)
	if err != nil || len(vector) < 2 {
		if err != nil {
			logger.Warning("classifier model failed on a frame", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		return types.FrameProbability{RealProbability: neutralProbability, Tag: types.TagNoDetection}
	}

	fake, real := float64(vector[0]), float64(vector[1])
	if classifier.cfg.InvertClasses {
		fake, real = real, fake
	}

	tag := types.TagFakeDetected
	if real > fake {
		tag = types.TagRealDetected
	}
	return types.FrameProbability{RealProbability: real, Tag: tag}
}

// subsampleCount bounds inference to at most ⌈n/5⌉ frames, never fewer
// than one.
func subsampleCount(n int) int {
	count := int(math.Ceil(float64(n) / classifierSubsampleDivisor))
	if count < 1 {
		count = 1
	}
	return count
}

// MeanRealProbability aggregates per-frame scores into the classifier
// signal. An empty list aggregates to neutral.
func MeanRealProbability(probabilities []types.FrameProbability) float64 {
	if len(probabilities) == 0 {
		return neutralProbability
	}
	sum := 0.0
	for _, p := range probabilities {
		sum += p.RealProbability
	}
	return sum / float64(len(probabilities))
}
