package capture

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
	"gocv.io/x/gocv"
)

const classifierInputSize = 224

// ClassifierNet runs a two-class (fake/real) ONNX classification network
// through the OpenCV DNN module. Forward mutates internal network state,
// so concurrent requests serialise on the mutex.
type ClassifierNet struct {
	net    gocv.Net
	loaded bool
	mutex  sync.Mutex
}

// NewClassifierNet loads the model at modelPath. A missing or broken model
// yields an unloaded net; the adapter degrades those requests to neutral
// scores instead of failing them.
func NewClassifierNet(modelPath string) *ClassifierNet {
	service := &ClassifierNet{}
	if modelPath == "" {
		return service
	}
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		logger.Error("classifier model file not found", logger.LoggerOptions{
			Key:  "model_path",
			Data: modelPath,
		})
		return service
	}

	service.net = gocv.ReadNet(modelPath, "")
	if service.net.Empty() {
		logger.Error("failed to load classifier model", logger.LoggerOptions{
			Key:  "model_path",
			Data: modelPath,
		})
		return service
	}

	service.net.SetPreferableBackend(gocv.NetBackendDefault)
	service.net.SetPreferableTarget(gocv.NetTargetCPU)
	service.loaded = true
	logger.Info("classifier model loaded", logger.LoggerOptions{
		Key:  "model_path",
		Data: modelPath,
	})
	return service
}

func (service *ClassifierNet) Loaded() bool {
	return service.loaded
}

// Classify runs one forward pass and returns the two-class probability
// vector. Raw logits are normalised through softmax; outputs that already
// sum to one pass through untouched.
func (service *ClassifierNet) Classify(frame types.Frame) ([]float32, error) {
	if !service.loaded {
		return nil, fmt.Errorf("classifier model not loaded")
	}
	matFrame, ok := frame.(*MatFrame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}

	blob := gocv.BlobFromImage(
		matFrame.Mat,
		1.0/255.0,
		image.Pt(classifierInputSize, classifierInputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,
		false,
	)
	defer blob.Close()

	service.mutex.Lock()
	service.net.SetInput(blob, "")
	output := service.net.Forward("")
	service.mutex.Unlock()
	defer output.Close()

	total := output.Total()
	if total < 2 {
		return nil, fmt.Errorf("classifier output has %d values, want at least 2", total)
	}
	vector := make([]float32, 2)
	for i := 0; i < 2; i++ {
		vector[i] = output.GetFloatAt(0, i)
	}
	return normaliseProbabilities(vector), nil
}

func normaliseProbabilities(vector []float32) []float32 {
	sum := float32(0)
	inRange := true
	for _, v := range vector {
		if v < 0 || v > 1 {
			inRange = false
		}
		sum += v
	}
	if inRange && math.Abs(float64(sum)-1.0) < 0.01 {
		return vector
	}

	normalised := make([]float32, len(vector))
	expSum := 0.0
	for i, v := range vector {
		e := math.Exp(float64(v))
		normalised[i] = float32(e)
		expSum += e
	}
	for i := range normalised {
		normalised[i] = float32(float64(normalised[i]) / expSum)
	}
	return normalised
}

// Close releases the underlying network.
func (service *ClassifierNet) Close() {
	if service.loaded {
		service.net.Close()
		service.loaded = false
	}
}
