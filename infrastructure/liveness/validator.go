package liveness

import (
	"fmt"

	"facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
)

const (
	// frames the empirical duration probe may attempt before giving up
	probeFrameBudget = 300
	// fewest decoded frames that still prove the asset is decodable
	probeMinDecoded = 10
	// the probe trusts a duration only once this many frames are behind it
	probeAnchorFrame = 30
)

// VideoValidator rejects out-of-bounds assets before any sampling work is
// spent. Its probe opens a decoder handle of its own and never touches the
// sampler's.
type VideoValidator struct {
	cfg  Config
	open types.SourceOpener
}

func NewVideoValidator(cfg Config, open types.SourceOpener) *VideoValidator {
	return &VideoValidator{cfg: cfg, open: open}
}

// Validate checks the asset's size and duration. Duration comes from
// declared container metadata when both fields are trustworthy and from an
// empirical decode probe otherwise.
func (validator *VideoValidator) Validate(asset *types.VideoAsset) error {
	if asset.SizeBytes > validator.cfg.MaxSizeBytes {
		return &types.ValidationError{
			Kind:   types.ValidationTooLarge,
			Reason: fmt.Sprintf("video exceeds the %dMB upload limit", validator.cfg.MaxSizeBytes>>20),
		}
	}
	if asset.SizeBytes == 0 {
		return &types.ValidationError{
			Kind:   types.ValidationEmpty,
			Reason: "uploaded video is empty",
		}
	}

	source, err := validator.open(asset.Path)
	if err != nil {
		logger.Warning("validator could not open asset", logger.LoggerOptions{
			Key:  "asset_id",
			Data: asset.ID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return &types.ValidationError{
			Kind:   types.ValidationUnopenable,
			Reason: "video could not be opened for decoding",
		}
	}
	defer source.Close()

	fps := source.DeclaredFrameRate()
	frameCount := source.DeclaredFrameCount()
	if validFrameRate(fps) && validFrameCount(frameCount) {
		return validator.checkDuration(frameCount / fps)
	}

	// browser-recorded streams routinely declare zero or garbage metadata;
	// fall back to decoding a bounded run and reading decoder timestamps
	return validator.probeDuration(source, asset.ID)
}

func (validator *VideoValidator) checkDuration(seconds float64) error {
	if seconds < validator.cfg.MinDurationSeconds {
		return &types.ValidationError{
			Kind:   types.ValidationTooShort,
			Reason: fmt.Sprintf("video must be at least %.0f second(s) long", validator.cfg.MinDurationSeconds),
		}
	}
	if seconds > validator.cfg.MaxDurationSeconds {
		return &types.ValidationError{
			Kind:   types.ValidationTooLong,
			Reason: fmt.Sprintf("video must be at most %.0f seconds long", validator.cfg.MaxDurationSeconds),
		}
	}
	return nil
}

// probeDuration estimates duration from presentation timestamps of the
// first and a later (≥30th) decoded frame. An asset that decodes at least
// 10 frames but never proves a duration inside the budget is provisionally
// accepted: decodability is proven even when duration is not, and
// rejecting well-formed but metadata-poor streams would lock real users
// out.
func (validator *VideoValidator) probeDuration(source types.VideoSource, assetID string) error {
	decoded := 0
	firstMillis := 0.0
	for attempt := 0; attempt < probeFrameBudget; attempt++ {
		frame, ok := source.ReadFrame()
		if !ok {
			continue
		}
		millis := frame.PresentationMillis()
		frame.Close()
		if decoded == 0 {
			firstMillis = millis
		}
		decoded++
		if decoded < probeAnchorFrame {
			continue
		}
		seconds := (millis - firstMillis) / 1000.0
		if seconds >= validator.cfg.MinDurationSeconds {
			return validator.checkDuration(seconds)
		}
	}

	if decoded >= probeMinDecoded {
		logger.Info("accepting asset with unprovable duration", logger.LoggerOptions{
			Key:  "asset_id",
			Data: assetID,
		}, logger.LoggerOptions{
			Key:  "decoded_frames",
			Data: decoded,
		})
		return nil
	}
	return &types.ValidationError{
		Kind:   types.ValidationTooShort,
		Reason: "video is too short or could not be decoded",
	}
}
