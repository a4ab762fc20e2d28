package liveness

import (
	"math"

	"facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
)

const (
	// hard cap on decode attempts in the sequential fallback, failures
	// included
	maxDecodeAttempts = 1000
	// consecutive decode failures tolerated once at least one frame has
	// been produced
	maxConsecutiveFailures = 30
	// before the first successful decode, re-seek to position 0 every this
	// many attempts as a decoder-recovery heuristic
	recoveryReseekInterval = 20
	// frames decoded from the start when estimating a usable frame rate
	rateEstimationFrames = 30

	minUsableFrameRate = 1.0
	maxUsableFrameRate = 120.0
	defaultFrameRate   = 30.0
	maxSaneFrameCount  = 1_000_000
)

func validFrameRate(fps float64) bool {
	return !math.IsNaN(fps) && !math.IsInf(fps, 0) && fps > 0 && fps <= maxUsableFrameRate
}

func validFrameCount(count float64) bool {
	return !math.IsNaN(count) && !math.IsInf(count, 0) && count > 0 && count < maxSaneFrameCount
}

// FrameSampler produces an ordered, fixed-size sequence of representative
// frames from an asset, tolerating unreliable container metadata through a
// layered fallback strategy. It never panics past its boundary; total
// failure is an empty frame set with an effective frame rate of 0.
type FrameSampler struct {
	cfg  Config
	open types.SourceOpener
}

func NewFrameSampler(cfg Config, open types.SourceOpener) *FrameSampler {
	return &FrameSampler{cfg: cfg, open: open}
}

// Extract samples up to requestedCount frames in presentation order and
// reports the corrected frame rate. The returned set's actual count never
// exceeds requestedCount; decode attempts are bounded regardless of
// container health.
func (sampler *FrameSampler) Extract(asset *types.VideoAsset, requestedCount int) *types.SampledFrameSet {
	set := &types.SampledFrameSet{RequestedCount: requestedCount}
	if requestedCount < 1 {
		return set
	}

	source, err := sampler.open(asset.Path)
	if err != nil {
		logger.Warning("frame sampler could not open asset", logger.LoggerOptions{
			Key:  "asset_id",
			Data: asset.ID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return set
	}
	defer source.Close()

	effectiveRate := sampler.effectiveFrameRate(source)

	declaredCount := source.DeclaredFrameCount()
	if validFrameCount(declaredCount) {
		frames := sampler.sampleByIndex(source, int(declaredCount), requestedCount)
		if frames != nil {
			set.Frames = frames
			set.EffectiveFrameRate = effectiveRate
			return set
		}
	}

	set.Frames = sampler.sampleSequential(source, requestedCount)
	if len(set.Frames) == 0 {
		logger.Warning("frame sampler exhausted every strategy", logger.LoggerOptions{
			Key:  "asset_id",
			Data: asset.ID,
		})
		return set
	}
	set.EffectiveFrameRate = effectiveRate
	return set
}

// effectiveFrameRate returns the declared frame rate when it is usable and
// otherwise estimates one by decoding a short run of consecutive frames
// from the start. The source is rewound before returning.
func (sampler *FrameSampler) effectiveFrameRate(source types.VideoSource) float64 {
	declared := source.DeclaredFrameRate()
	if validFrameRate(declared) {
		return declared
	}

	source.SeekFrame(0)
	decoded := 0
	firstMillis, lastMillis := 0.0, 0.0
	for i := 0; i < rateEstimationFrames; i++ {
		frame, ok := source.ReadFrame()
		if !ok {
			break
		}
		if decoded == 0 {
			firstMillis = frame.PresentationMillis()
		}
		lastMillis = frame.PresentationMillis()
		decoded++
		frame.Close()
	}
	source.SeekFrame(0)

	elapsed := (lastMillis - firstMillis) / 1000.0
	if decoded < 2 || elapsed <= 0 {
		return defaultFrameRate
	}
	estimated := float64(decoded) / elapsed
	return math.Min(maxUsableFrameRate, math.Max(minUsableFrameRate, estimated))
}

// evenIndices spreads count indices across [0, frameCount-1] inclusive,
// with linear interpolation. Duplicates appear only when count exceeds the
// frame count.
func evenIndices(frameCount, count int) []int {
	indices := make([]int, 0, count)
	if count == 1 {
		return append(indices, 0)
	}
	span := float64(frameCount - 1)
	step := span / float64(count-1)
	for i := 0; i < count; i++ {
		indices = append(indices, int(math.Round(float64(i)*step)))
	}
	return indices
}

// sampleByIndex seeks to evenly spaced indices and decodes each. An index
// whose direct seek+decode fails is retried by decoding sequentially from
// position 0 up to it, which covers decoders with unreliable random seek.
// If the pass still under-delivers, all partial results are discarded and
// nil is returned so the caller falls back to sequential sampling.
func (sampler *FrameSampler) sampleByIndex(source types.VideoSource, frameCount, requestedCount int) []types.Frame {
	indices := evenIndices(frameCount, requestedCount)
	frames := make([]types.Frame, 0, len(indices))
	for _, index := range indices {
		if source.SeekFrame(index) {
			if frame, ok := source.ReadFrame(); ok {
				frames = append(frames, frame)
				continue
			}
		}
		if frame := sampler.decodeSequentiallyTo(source, index); frame != nil {
			frames = append(frames, frame)
		}
	}
	if len(frames) < requestedCount {
		logger.Warning("metadata-driven sampling under-delivered, falling back", logger.LoggerOptions{
			Key:  "obtained",
			Data: len(frames),
		}, logger.LoggerOptions{
			Key:  "requested",
			Data: requestedCount,
		})
		for _, frame := range frames {
			frame.Close()
		}
		return nil
	}
	return frames
}

// decodeSequentiallyTo reads from position 0 until the target index and
// returns the frame at that index, or nil when the run fails first.
func (sampler *FrameSampler) decodeSequentiallyTo(source types.VideoSource, index int) types.Frame {
	if !source.SeekFrame(0) {
		return nil
	}
	for i := 0; i <= index; i++ {
		frame, ok := source.ReadFrame()
		if !ok {
			return nil
		}
		if i == index {
			return frame
		}
		frame.Close()
	}
	return nil
}

type decodePhase int

const (
	// no frame has decoded yet; failures do not count against the
	// consecutive-failure tolerance
	phaseSearching decodePhase = iota
	phaseDecoding
)

// sampleSequential decodes strictly from the start under a hard attempt
// cap, buffers everything obtained, then downsamples evenly to the
// requested count.
func (sampler *FrameSampler) sampleSequential(source types.VideoSource, requestedCount int) []types.Frame {
	source.SeekFrame(0)

	buffered := make([]types.Frame, 0, requestedCount)
	phase := phaseSearching
	consecutiveFailures := 0

	for attempt := 1; attempt <= maxDecodeAttempts; attempt++ {
		frame, ok := source.ReadFrame()
		if !ok {
			if phase == phaseDecoding {
				consecutiveFailures++
				if consecutiveFailures > maxConsecutiveFailures {
					break
				}
			} else if attempt%recoveryReseekInterval == 0 {
				source.SeekFrame(0)
			}
			continue
		}
		phase = phaseDecoding
		consecutiveFailures = 0
		buffered = append(buffered, frame)
	}

	if len(buffered) <= requestedCount {
		return buffered
	}

	stride := len(buffered) / requestedCount
	if stride < 1 {
		stride = 1
	}
	sampled := make([]types.Frame, 0, requestedCount)
	for i := 0; i < len(buffered); i += stride {
		sampled = append(sampled, buffered[i])
		buffered[i] = nil
	}
	for _, frame := range buffered {
		if frame != nil {
			frame.Close()
		}
	}
	if len(sampled) > requestedCount {
		for _, frame := range sampled[requestedCount:] {
			frame.Close()
		}
		sampled = sampled[:requestedCount]
	}
	return sampled
}
