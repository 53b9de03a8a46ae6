// Package worker runs the session watchdog: every initiated session gets a
// delayed expiry task, and a session still active when its task fires is
// force-cancelled so a crashed kiosk cannot hold a doctor busy forever.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pharmalink/config"
	"pharmalink/services/session"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSessionExpire = "session:expire"

// ExpirePayload is the task payload for a scheduled session expiry.
type ExpirePayload struct {
	SessionID string `json:"sessionId"`
}

// Watchdog enqueues expiry tasks. It implements session.Watchdog.
type Watchdog struct {
	client *asynq.Client
}

func NewWatchdog() *Watchdog {
	return &Watchdog{
		client: asynq.NewClient(redisOpts()),
	}
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ScheduleExpiry enqueues a task that fires after delay.
func (w *Watchdog) ScheduleExpiry(sessionID string, delay time.Duration) error {
	payload, err := json.Marshal(ExpirePayload{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("failed to marshal expiry payload: %w", err)
	}
	task := asynq.NewTask(TypeSessionExpire, payload)
	if _, err := w.client.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return fmt.Errorf("failed to enqueue session expiry: %w", err)
	}
	return nil
}

// StartWatchdogWorker runs the asynq server that processes expiry tasks in
// the background.
func StartWatchdogWorker(svc session.SessionService, logger *zap.Logger) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionExpire, HandleSessionExpire(svc, logger))

	go func() {
		logger.Info("starting session watchdog worker")
		if err := srv.Run(mux); err != nil {
			logger.Error("session watchdog worker stopped", zap.Error(err))
		}
	}()
}

// HandleSessionExpire cancels the session named by the task if it is still
// active. A session that already terminated, or was never persisted, is a
// no-op rather than an error so the task is not retried.
func HandleSessionExpire(svc session.SessionService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid session expiry payload", zap.Error(err))
			return err
		}

		_, err := svc.Cancel(p.SessionID)
		if err != nil {
			if session.IsInvalidState(err) || session.IsNotFound(err) {
				return nil
			}
			logger.Error("failed to expire session",
				zap.String("sessionId", p.SessionID), zap.Error(err))
			return err
		}

		logger.Info("session expired by watchdog", zap.String("sessionId", p.SessionID))
		return nil
	}
}
