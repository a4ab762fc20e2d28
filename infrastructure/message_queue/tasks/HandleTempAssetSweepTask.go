package queue_tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"facegate.io/infrastructure/logger"
	mq_types "facegate.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

var HandleTempAssetSweepTaskName mq_types.Queues = "sweep_temp_assets"

// TempAssetDir is where uploaded videos are staged before processing.
// Processed uploads are removed inline; this task catches the ones left
// behind by crashed requests.
var TempAssetDir = filepath.Join(os.TempDir(), "facegate-videos")

type TempAssetSweepPayload struct {
	MaxAgeMinutes int
}

func HandleTempAssetSweepTask(ctx context.Context, t *asynq.Task) error {
	var payload TempAssetSweepPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling temp asset sweep queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	if payload.MaxAgeMinutes <= 0 {
		payload.MaxAgeMinutes = 30
	}
	cutOff := time.Now().Add(-time.Duration(payload.MaxAgeMinutes) * time.Minute)

	entries, err := os.ReadDir(TempAssetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logger.Error("an error occured while reading the temp asset directory", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutOff) {
			continue
		}
		if err := os.Remove(filepath.Join(TempAssetDir, entry.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		logger.Info("temp asset sweep completed", logger.LoggerOptions{
			Key:  "removed",
			Data: removed,
		})
	}
	return nil
}
