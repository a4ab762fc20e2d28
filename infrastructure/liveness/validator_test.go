package liveness

import (
	"errors"
	"testing"

	"facegate.io/infrastructure/liveness/types"
)

func validationKind(t *testing.T, err error) types.ValidationKind {
	t.Helper()
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	return validationErr.Kind
}

func TestValidateSizeBounds(t *testing.T) {
	neverOpen := func(path string) (types.VideoSource, error) {
		t.Fatal("validator attempted decode for a size rejection")
		return nil, nil
	}
	validator := NewVideoValidator(DefaultConfig(), neverOpen)

	tests := []struct {
		name      string
		sizeBytes int64
		wantKind  types.ValidationKind
	}{
		{name: "over the upload limit", sizeBytes: 16 << 20, wantKind: types.ValidationTooLarge},
		{name: "empty upload", sizeBytes: 0, wantKind: types.ValidationEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(&types.VideoAsset{ID: "a", Path: "a.webm", SizeBytes: tt.sizeBytes})
			if got := validationKind(t, err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestValidateUnopenable(t *testing.T) {
	validator := NewVideoValidator(DefaultConfig(), failingOpener(errors.New("corrupt container")))
	err := validator.Validate(&types.VideoAsset{ID: "a", Path: "a.webm", SizeBytes: 1024})
	if got := validationKind(t, err); got != types.ValidationUnopenable {
		t.Errorf("kind = %v, want unopenable", got)
	}
}

func TestValidateDeclaredMetadata(t *testing.T) {
	tests := []struct {
		name       string
		fps        float64
		frameCount float64
		wantKind   types.ValidationKind
		wantOK     bool
	}{
		{name: "three seconds at 30fps", fps: 30, frameCount: 90, wantOK: true},
		{name: "half a second", fps: 30, frameCount: 15, wantKind: types.ValidationTooShort},
		{name: "twenty seconds", fps: 30, frameCount: 600, wantKind: types.ValidationTooLong},
		{name: "exactly the minimum", fps: 30, frameCount: 30, wantOK: true},
		{name: "exactly the maximum", fps: 30, frameCount: 300, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{
				declaredFPS:   tt.fps,
				declaredCount: tt.frameCount,
				totalFrames:   int(tt.frameCount),
			}
			validator := NewVideoValidator(DefaultConfig(), openerFor(source))
			err := validator.Validate(&types.VideoAsset{ID: "a", Path: "a.webm", SizeBytes: 1024})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected rejection: %v", err)
				}
				if source.readCalls != 0 {
					t.Errorf("declared metadata was valid but the probe decoded %d frames", source.readCalls)
				}
				return
			}
			if got := validationKind(t, err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestValidateEmpiricalProbe(t *testing.T) {
	tests := []struct {
		name        string
		totalFrames int
		millisAt    func(index int) float64
		wantKind    types.ValidationKind
		wantOK      bool
	}{
		{
			name:        "metadata-poor three second stream accepted",
			totalFrames: 200,
			wantOK:      true,
		},
		{
			name:        "decodable but timestamps never advance is provisionally accepted",
			totalFrames: 200,
			millisAt:    func(index int) float64 { return 0 },
			wantOK:      true,
		},
		{
			name:        "fewer than ten decodable frames rejected",
			totalFrames: 6,
			wantKind:    types.ValidationTooShort,
		},
		{
			name:        "nothing decodable rejected",
			totalFrames: 0,
			wantKind:    types.ValidationTooShort,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{
				declaredFPS:   0, // force the empirical path
				declaredCount: -3,
				totalFrames:   tt.totalFrames,
				millisAt:      tt.millisAt,
			}
			validator := NewVideoValidator(DefaultConfig(), openerFor(source))
			err := validator.Validate(&types.VideoAsset{ID: "a", Path: "a.webm", SizeBytes: 1024})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected rejection: %v", err)
				}
				return
			}
			if got := validationKind(t, err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestValidateProbeIsBounded(t *testing.T) {
	source := &fakeSource{
		declaredFPS:   0,
		declaredCount: 0,
		totalFrames:   0,
	}
	validator := NewVideoValidator(DefaultConfig(), openerFor(source))
	_ = validator.Validate(&types.VideoAsset{ID: "a", Path: "a.webm", SizeBytes: 1024})
	if source.readCalls > probeFrameBudget {
		t.Errorf("probe attempted %d decodes, budget is %d", source.readCalls, probeFrameBudget)
	}
}
