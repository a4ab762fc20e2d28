package asynq

import (
	"encoding/json"
	"os"
	"time"

	"facegate.io/infrastructure/logger"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
	mq_types "facegate.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

type AsynqBroker struct {
	Client *asynq.Client
}

func (aq *AsynqBroker) Start() {
	redisConnOpt := asynq.RedisClientOpt{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	aq.Client = asynq.NewClient(redisConnOpt)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD")},
		asynq.Config{
			Concurrency: 100,
			Queues: map[string]int{
				string(mq_types.High):   7,
				string(mq_types.Medium): 2,
				string(mq_types.Low):    1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(string(queue_tasks.HandleTempAssetSweepTaskName), queue_tasks.HandleTempAssetSweepTask)
	mux.HandleFunc(string(queue_tasks.HandleAuditTrimTaskName), queue_tasks.HandleAuditTrimTask)

	scheduler := asynq.NewScheduler(redisConnOpt, nil)
	sweepPayload, _ := json.Marshal(queue_tasks.TempAssetSweepPayload{MaxAgeMinutes: 30})
	scheduler.Register("*/15 * * * *",
		asynq.NewTask(string(queue_tasks.HandleTempAssetSweepTaskName), sweepPayload),
		asynq.Queue(string(mq_types.Low)))
	trimPayload, _ := json.Marshal(queue_tasks.AuditTrimPayload{RetentionDays: 90})
	scheduler.Register("0 3 * * *",
		asynq.NewTask(string(queue_tasks.HandleAuditTrimTaskName), trimPayload),
		asynq.Queue(string(mq_types.Low)))
	go scheduler.Run()

	srv.Run(mux)
}

func (aq *AsynqBroker) Enqueue(task mq_types.QueueTask) {
	if aq.Client == nil {
		logger.Warning("task dropped because the queue client has not started", logger.LoggerOptions{
			Key:  "task",
			Data: task.Name,
		})
		return
	}
	if task.TimeOut == 0 {
		task.TimeOut = 60
	}
	aq.Client.Enqueue(asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(time.Duration(task.ProcessIn)*time.Second),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(time.Second*time.Duration(task.TimeOut)),
		asynq.Queue(string(task.Priority)))
}
