package cron

import (
	"context"
	"fmt"
	"time"

	"bookwell/config"
	"bookwell/services/notification"
	"bookwell/services/tasks"
	"bookwell/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the enqueuing client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// DeliveryWorker drains notify:deliver tasks and pushes them through FCM.
type DeliveryWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewDeliveryWorker(redisOpt asynq.RedisConnOpt, sender notification.MessageSender) *DeliveryWorker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
				return time.Duration(n*n+1) * 5 * time.Second
			},
			Logger: utils.GetLogger().Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, HandleDeliveryTask(sender))

	return &DeliveryWorker{srv: srv, mux: mux}
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *DeliveryWorker) Start() {
	logger := utils.GetLogger()
	go func() {
		logger.Info("delivery worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			logger.Error("delivery worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("delivery worker giving up; queued notifications will wait in Redis")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func (w *DeliveryWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleDeliveryTask sends one queued notification. Returning an error hands
// the task back to asynq for retry.
func HandleDeliveryTask(sender notification.MessageSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseDeliveryTask(task)
		if err != nil {
			return fmt.Errorf("decode delivery payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.TargetID == "" || p.TargetRole == "" {
			return fmt.Errorf("delivery %s has no target: %w", p.EventID, asynq.SkipRetry)
		}

		if _, err := sender.Send(ctx, notification.BuildPushMessage(p)); err != nil {
			utils.GetLogger().Warn("push delivery failed",
				zap.String("eventId", p.EventID),
				zap.String("kind", p.Kind),
				zap.String("topic", notification.Topic(p.TargetRole, p.TargetID)),
				zap.Error(err))
			return err
		}
		utils.GetLogger().Debug("push delivered",
			zap.String("eventId", p.EventID),
			zap.String("kind", p.Kind))
		return nil
	}
}
