package liveness

import (
	"fmt"

	"facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
)

// Pipeline runs validate → sample → classify → fuse as one synchronous
// sequence per request. Each stage either returns a typed result or a
// typed failure; failures short-circuit. The temporary asset is removed
// from storage on every exit path.
type Pipeline struct {
	cfg        Config
	validator  *VideoValidator
	sampler    *FrameSampler
	classifier *FrameClassifier
	engine     *DecisionEngine
}

func NewPipeline(cfg Config, open types.SourceOpener, model types.ClassifierModel) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		validator:  NewVideoValidator(cfg, open),
		sampler:    NewFrameSampler(cfg, open),
		classifier: NewFrameClassifier(cfg, model),
		engine:     NewDecisionEngine(cfg),
	}
}

// ProcessVideo decides liveness for a stored video asset. On success it
// also returns a JPEG snapshot of a representative sampled frame for the
// identity collaborator. Any unexpected fault still releases the asset and
// comes back as a conservative not-live verdict with an internal error
// rather than an ambiguous failure.
func (pipeline *Pipeline) ProcessVideo(asset *types.VideoAsset) (verdict *types.LivenessVerdict, snapshot []byte, err error) {
	defer func() {
		if releaseErr := asset.Release(); releaseErr != nil {
			logger.Warning("failed to remove temporary video asset", logger.LoggerOptions{
				Key:  "asset_id",
				Data: asset.ID,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: releaseErr,
			})
		}
		if recovered := recover(); recovered != nil {
			logger.Error("liveness pipeline panicked", logger.LoggerOptions{
				Key:  "asset_id",
				Data: asset.ID,
			}, logger.LoggerOptions{
				Key:  "panic",
				Data: recovered,
			})
			verdict = &types.LivenessVerdict{
				IsLive:          false,
				FinalScore:      0.0,
				ReasonCode:      types.ReasonNoDetection,
				PerSignalScores: types.FusionInput{},
			}
			snapshot = nil
			err = &types.InternalError{Stage: "pipeline", Err: fmt.Errorf("%v", recovered)}
		}
	}()

	if err := pipeline.validator.Validate(asset); err != nil {
		return nil, nil, err
	}

	set := pipeline.sampler.Extract(asset, pipeline.cfg.SampleFrameCount)
	defer set.Close()
	if set.ActualCount() == 0 {
		return nil, nil, &types.DecodeError{Reason: "could not decode enough frames from the video"}
	}

	probabilities, diagnostics := pipeline.classifier.Classify(set)
	score := MeanRealProbability(probabilities)

	fused := pipeline.engine.Fuse(types.FusionInput{types.SignalClassifier: score})

	logger.Info("liveness verdict computed", logger.LoggerOptions{
		Key:  "asset_id",
		Data: asset.ID,
	}, logger.LoggerOptions{
		Key:  "reason",
		Data: fused.ReasonCode,
	}, logger.LoggerOptions{
		Key:  "final_score",
		Data: fused.FinalScore,
	}, logger.LoggerOptions{
		Key:  "frames_scored",
		Data: diagnostics.FramesScored,
	}, logger.LoggerOptions{
		Key:  "model_loaded",
		Data: diagnostics.ModelLoaded,
	})

	snapshot = pipeline.snapshotFrame(set)
	return &fused, snapshot, nil
}

// ProcessImage is the degraded still-image fallback: a fixed pass-through
// verdict whose reason code differs from every video-path reason so the
// identity collaborator and auditing can treat it separately. This is a
// deliberate explicit path, never a default.
func (pipeline *Pipeline) ProcessImage() *types.LivenessVerdict {
	return &types.LivenessVerdict{
		IsLive:          true,
		FinalScore:      1.0,
		ReasonCode:      types.ReasonImageFallback,
		PerSignalScores: types.FusionInput{types.SignalClassifier: 1.0},
	}
}

// snapshotFrame encodes the middle sampled frame. A failed encode degrades
// to no snapshot; identity matching then falls back to rejecting the
// request at the boundary rather than failing the verdict.
func (pipeline *Pipeline) snapshotFrame(set *types.SampledFrameSet) []byte {
	frame := set.Frames[set.ActualCount()/2]
	encoded, err := frame.EncodeJPEG()
	if err != nil {
		logger.Warning("could not encode verified frame snapshot", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil
	}
	return encoded
}
