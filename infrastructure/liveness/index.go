package liveness

import (
	"facegate.io/infrastructure/liveness/capture"
	"facegate.io/infrastructure/logger"
)

var LivenessService *Pipeline

// InitialiseLivenessService builds the shared pipeline. The classifier
// model is loaded once here and treated as read-only by every request.
func InitialiseLivenessService() {
	cfg := ConfigFromEnv()
	model := capture.NewClassifierNet(cfg.ModelPath)
	if !model.Loaded() {
		logger.Warning("liveness classifier model unavailable, requests will degrade to neutral scores", logger.LoggerOptions{
			Key:  "model_path",
			Data: cfg.ModelPath,
		})
	}
	LivenessService = NewPipeline(cfg, capture.Open, model)
}
