package liveness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"facegate.io/infrastructure/liveness/types"
)

func tempAsset(t *testing.T) *types.VideoAsset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.webm")
	if err := os.WriteFile(path, make([]byte, 2048), 0o600); err != nil {
		t.Fatal(err)
	}
	return &types.VideoAsset{ID: "pipeline-test", Path: path, SizeBytes: 2048}
}

func assertAssetReleased(t *testing.T, asset *types.VideoAsset) {
	t.Helper()
	if _, err := os.Stat(asset.Path); !os.IsNotExist(err) {
		t.Errorf("temporary asset %s still exists after the pipeline returned", asset.Path)
	}
}

func healthySource() *fakeSource {
	return &fakeSource{declaredFPS: 30, declaredCount: 90, totalFrames: 90}
}

func TestProcessVideoLiveVerdict(t *testing.T) {
	pipeline := NewPipeline(DefaultConfig(), openerFor(healthySource()), &fakeModel{
		loaded: true,
		vector: []float32{0.92, 0.08}, // inverted by default config: real=0.92
	})
	asset := tempAsset(t)

	verdict, snapshot, err := pipeline.ProcessVideo(asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.IsLive || verdict.ReasonCode != types.ReasonOK {
		t.Errorf("verdict = %+v, want live ok", verdict)
	}
	if diff := verdict.FinalScore - 0.92; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("FinalScore = %v, want 0.92", verdict.FinalScore)
	}
	if len(snapshot) == 0 {
		t.Error("expected a verified-frame snapshot for the identity collaborator")
	}
	assertAssetReleased(t, asset)
}

func TestProcessVideoSpoofVerdict(t *testing.T) {
	pipeline := NewPipeline(DefaultConfig(), openerFor(healthySource()), &fakeModel{
		loaded: true,
		vector: []float32{0.03, 0.97}, // inverted: real=0.03
	})
	asset := tempAsset(t)

	verdict, _, err := pipeline.ProcessVideo(asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.IsLive || verdict.ReasonCode != types.ReasonSpoofDetected || verdict.FinalScore != 0.0 {
		t.Errorf("verdict = %+v, want spoof_detected at 0.0", verdict)
	}
	assertAssetReleased(t, asset)
}

func TestProcessVideoClassifierUnavailable(t *testing.T) {
	pipeline := NewPipeline(DefaultConfig(), openerFor(healthySource()), &fakeModel{loaded: false})
	asset := tempAsset(t)

	verdict, _, err := pipeline.ProcessVideo(asset)
	if err != nil {
		t.Fatalf("classifier unavailability must not fail the request: %v", err)
	}
	if verdict.IsLive || verdict.ReasonCode != types.ReasonNoDetection || verdict.FinalScore != 0.5 {
		t.Errorf("verdict = %+v, want not-live no_detection at 0.5", verdict)
	}
	assertAssetReleased(t, asset)
}

func TestProcessVideoValidationFailureSkipsSampling(t *testing.T) {
	cfg := DefaultConfig()
	pipeline := NewPipeline(cfg, openerFor(healthySource()), &fakeModel{loaded: true, vector: []float32{0, 1}})
	asset := tempAsset(t)
	asset.SizeBytes = cfg.MaxSizeBytes + 1

	verdict, _, err := pipeline.ProcessVideo(asset)
	if verdict != nil {
		t.Errorf("validation failure returned a verdict: %+v", verdict)
	}
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Kind != types.ValidationTooLarge {
		t.Errorf("err = %v, want too_large validation error", err)
	}
	assertAssetReleased(t, asset)
}

func TestProcessVideoDecodeFailure(t *testing.T) {
	// opens fine, declares nothing, decodes nothing
	source := &fakeSource{declaredFPS: 0, declaredCount: 0, totalFrames: 12}
	source.decodable = func(index int) bool { return index < 12 }
	pipeline := NewPipeline(DefaultConfig(), openerFor(source), &fakeModel{loaded: true, vector: []float32{0, 1}})

	// the validator's probe decodes the 12 frames and provisionally
	// accepts; the sampler then works with whatever it can get
	asset := tempAsset(t)
	verdict, _, err := pipeline.ProcessVideo(asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict == nil || verdict.PerSignalScores == nil {
		t.Fatal("expected a verdict for a degraded but decodable asset")
	}
	assertAssetReleased(t, asset)

	// a source that yields no frames at all must fail with a decode error
	dead := &fakeSource{declaredFPS: 30, declaredCount: 90, totalFrames: 0}
	pipeline = NewPipeline(DefaultConfig(), openerFor(dead), &fakeModel{loaded: true, vector: []float32{0, 1}})
	asset = tempAsset(t)
	verdict, _, err = pipeline.ProcessVideo(asset)
	if verdict != nil {
		t.Errorf("undecodable asset returned a verdict: %+v", verdict)
	}
	var decodeErr *types.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("err = %v, want decode error", err)
	}
	assertAssetReleased(t, asset)
}

type panickingModel struct{}

func (model *panickingModel) Loaded() bool { return true }

func (model *panickingModel) Classify(frame types.Frame) ([]float32, error) {
	panic("model crashed mid-inference")
}

func TestProcessVideoInternalFaultIsConservative(t *testing.T) {
	pipeline := NewPipeline(DefaultConfig(), openerFor(healthySource()), &panickingModel{})
	asset := tempAsset(t)

	verdict, _, err := pipeline.ProcessVideo(asset)
	var internalErr *types.InternalError
	if !errors.As(err, &internalErr) {
		t.Fatalf("err = %v, want internal error", err)
	}
	if verdict == nil || verdict.IsLive {
		t.Errorf("internal fault must yield a conservative not-live verdict, got %+v", verdict)
	}
	assertAssetReleased(t, asset)
}

func TestProcessImageFallback(t *testing.T) {
	pipeline := NewPipeline(DefaultConfig(), openerFor(healthySource()), &fakeModel{loaded: true, vector: []float32{0, 1}})
	verdict := pipeline.ProcessImage()

	if !verdict.IsLive || verdict.FinalScore != 1.0 {
		t.Errorf("fallback verdict = %+v, want fixed pass-through", verdict)
	}
	if verdict.ReasonCode != types.ReasonImageFallback {
		t.Errorf("reason = %v, must be distinguishable from every video-path reason", verdict.ReasonCode)
	}
	videoReasons := []types.ReasonCode{
		types.ReasonOK, types.ReasonNoDetection, types.ReasonSpoofDetected, types.ReasonLowConfidence,
	}
	for _, reason := range videoReasons {
		if verdict.ReasonCode == reason {
			t.Errorf("fallback reason collides with video-path reason %v", reason)
		}
	}
}
