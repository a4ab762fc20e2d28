package queue_tasks

import (
	"context"
	"encoding/json"
	"time"

	"facegate.io/application/repository"
	"facegate.io/infrastructure/logger"
	mq_types "facegate.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

var HandleAuditTrimTaskName mq_types.Queues = "trim_audit_trail"

type AuditTrimPayload struct {
	RetentionDays int
}

// HandleAuditTrimTask prunes verification attempts older than the
// configured retention window.
func HandleAuditTrimTask(ctx context.Context, t *asynq.Task) error {
	var payload AuditTrimPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling audit trim queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 90
	}
	cutOff := time.Now().AddDate(0, 0, -payload.RetentionDays)

	attemptRepo := repository.VerificationAttemptRepo()
	deleted, err := attemptRepo.DeleteMany(map[string]interface{}{
		"createdAt": map[string]interface{}{"$lt": cutOff},
	})
	if err != nil {
		logger.Error("an error occured while trimming the audit trail", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	if deleted > 0 {
		logger.Info("audit trail trimmed", logger.LoggerOptions{
			Key:  "deleted",
			Data: deleted,
		})
	}
	return nil
}
