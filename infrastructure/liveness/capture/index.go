package capture

import (
	"fmt"

	"facegate.io/infrastructure/liveness/types"
	"gocv.io/x/gocv"
)

// Source wraps one exclusive gocv decoder handle. OpenCV capture handles
// are not safe for concurrent use, so each probe opens its own.
type Source struct {
	capture *gocv.VideoCapture
}

// Open opens a decoder handle for the asset at path.
func Open(path string) (types.VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video capture: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture could not open %s", path)
	}
	return &Source{capture: capture}, nil
}

func (source *Source) DeclaredFrameRate() float64 {
	return source.capture.Get(gocv.VideoCaptureFPS)
}

func (source *Source) DeclaredFrameCount() float64 {
	return source.capture.Get(gocv.VideoCaptureFrameCount)
}

// SeekFrame positions the decoder at a frame index. OpenCV does not report
// seek failure directly; an unreliable seek surfaces as the next read
// failing, which the sampler's retry tiers handle.
func (source *Source) SeekFrame(index int) bool {
	if !source.capture.IsOpened() {
		return false
	}
	source.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	return true
}

func (source *Source) ReadFrame() (types.Frame, bool) {
	mat := gocv.NewMat()
	if ok := source.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, false
	}
	return &MatFrame{
		Mat:    mat,
		millis: source.capture.Get(gocv.VideoCapturePosMsec),
	}, true
}

func (source *Source) Close() error {
	return source.capture.Close()
}

// MatFrame carries a decoded BGR matrix plus its decoder-reported
// presentation timestamp.
type MatFrame struct {
	Mat    gocv.Mat
	millis float64
}

func (frame *MatFrame) PresentationMillis() float64 {
	return frame.millis
}

func (frame *MatFrame) EncodeJPEG() ([]byte, error) {
	buffer, err := gocv.IMEncode(".jpg", frame.Mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buffer.Close()
	encoded := make([]byte, buffer.Len())
	copy(encoded, buffer.GetBytes())
	return encoded, nil
}

func (frame *MatFrame) Close() {
	frame.Mat.Close()
}
