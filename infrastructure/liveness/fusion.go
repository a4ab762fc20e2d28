package liveness

import (
	"math"

	"facegate.io/infrastructure/liveness/types"
)

// DecisionEngine turns named signal scores into the final liveness
// verdict. Fuse is a pure function: identical input always yields a
// bit-identical verdict.
type DecisionEngine struct {
	realThreshold float64
	neutralBand   float64
	spoofCut      float64
}

func NewDecisionEngine(cfg Config) *DecisionEngine {
	return &DecisionEngine{
		realThreshold: cfg.RealThreshold,
		neutralBand:   cfg.NeutralBand,
		spoofCut:      cfg.SpoofCut,
	}
}

// Fuse applies the threshold policy to the classifier signal. The spoof
// branch fires below the cut (open boundary), the neutral band means the
// signal found no usable evidence, OK requires the real threshold (closed
// boundary), and anything else is active low confidence. The same
// threshold decides both the OK branch and IsLive, so IsLive is true
// exactly when the reason is ok.
func (engine *DecisionEngine) Fuse(signals types.FusionInput) types.LivenessVerdict {
	score, present := signals[types.SignalClassifier]
	if !present {
		score = neutralProbability
	}

	var finalScore float64
	var reason types.ReasonCode
	switch {
	case score < engine.spoofCut:
		finalScore, reason = 0.0, types.ReasonSpoofDetected
	case math.Abs(score-neutralProbability) < engine.neutralBand:
		finalScore, reason = neutralProbability, types.ReasonNoDetection
	case score >= engine.realThreshold:
		finalScore, reason = score, types.ReasonOK
	default:
		finalScore, reason = 0.0, types.ReasonLowConfidence
	}

	perSignal := make(types.FusionInput, len(signals))
	for name, value := range signals {
		perSignal[name] = value
	}

	return types.LivenessVerdict{
		IsLive:          finalScore >= engine.realThreshold,
		FinalScore:      finalScore,
		ReasonCode:      reason,
		PerSignalScores: perSignal,
	}
}
