package liveness

import (
	"fmt"

	"facegate.io/infrastructure/liveness/types"
)

// fakeFrame records its source index so tests can assert which frames the
// sampler picked.
type fakeFrame struct {
	index  int
	millis float64
	closed bool
}

func (frame *fakeFrame) PresentationMillis() float64 {
	return frame.millis
}

func (frame *fakeFrame) EncodeJPEG() ([]byte, error) {
	return []byte(fmt.Sprintf("jpeg-%d", frame.index)), nil
}

func (frame *fakeFrame) Close() {
	frame.closed = true
}

// fakeSource simulates a decoder with configurable container metadata and
// per-index decodability.
type fakeSource struct {
	declaredFPS   float64
	declaredCount float64
	totalFrames   int
	// millisAt reports the presentation timestamp for a frame index;
	// defaults to index * (1000/30)
	millisAt func(index int) float64
	// decodable reports whether the frame at an index decodes; defaults to
	// every index below totalFrames
	decodable func(index int) bool
	// seekFails makes every seek report failure
	seekFails bool

	position  int
	readCalls int
	seekCalls int
	closed    bool
}

func (source *fakeSource) DeclaredFrameRate() float64 {
	return source.declaredFPS
}

func (source *fakeSource) DeclaredFrameCount() float64 {
	return source.declaredCount
}

func (source *fakeSource) SeekFrame(index int) bool {
	source.seekCalls++
	if source.seekFails {
		return false
	}
	source.position = index
	return true
}

func (source *fakeSource) ReadFrame() (types.Frame, bool) {
	source.readCalls++
	index := source.position
	source.position++
	if index >= source.totalFrames {
		return nil, false
	}
	if source.decodable != nil && !source.decodable(index) {
		return nil, false
	}
	millis := float64(index) * (1000.0 / 30.0)
	if source.millisAt != nil {
		millis = source.millisAt(index)
	}
	return &fakeFrame{index: index, millis: millis}, true
}

func (source *fakeSource) Close() error {
	source.closed = true
	return nil
}

// openerFor hands the same fake source to every open call.
func openerFor(source *fakeSource) types.SourceOpener {
	return func(path string) (types.VideoSource, error) {
		source.position = 0
		return source, nil
	}
}

func failingOpener(err error) types.SourceOpener {
	return func(path string) (types.VideoSource, error) {
		return nil, err
	}
}

// fakeModel returns a fixed probability vector, or an error, per call.
type fakeModel struct {
	loaded      bool
	vector      []float32
	err         error
	invocations int
}

func (model *fakeModel) Loaded() bool {
	return model.loaded
}

func (model *fakeModel) Classify(frame types.Frame) ([]float32, error) {
	model.invocations++
	if model.err != nil {
		return nil, model.err
	}
	return model.vector, nil
}

func frameIndices(frames []types.Frame) []int {
	indices := make([]int, 0, len(frames))
	for _, frame := range frames {
		indices = append(indices, frame.(*fakeFrame).index)
	}
	return indices
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
