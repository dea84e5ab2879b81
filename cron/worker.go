package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servswap/config"
	"servswap/database"
	"servswap/models"
	"servswap/services/notification"
	"servswap/services/subscription"
	"servswap/services/tasks"
	"servswap/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// UserLoader loads the member a reminder is addressed to.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Handlers processes the background tasks enqueued by the services.
type Handlers struct {
	Users       UserLoader
	Connections notification.ConnectionLister
	Notifier    notification.Notifier
	Now         func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Mux routes every task type to its handler.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, h.HandleReminder)
	mux.HandleFunc(tasks.TypeFanOut, h.HandleFanOut)
	return mux
}

// HandleReminder delivers a scheduled reminder if it still applies.
// Renewal reminders are dropped once the plan was cancelled or renewed.
func (h *Handlers) HandleReminder(ctx context.Context, task *asynq.Task) error {
	logger := utils.GetLogger()

	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		logger.Error("Invalid reminder payload", zap.Error(err))
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	if p.Type == models.NotifySubscriptionRenewal {
		u, err := h.Users.GetByID(ctx, p.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !subscription.RenewalReminderDue(u, p, h.now()) {
			logger.Debug("Renewal reminder no longer due", zap.String("userID", p.UserID))
			return nil
		}
	}

	if err := h.Notifier.Notify(ctx, p.UserID, p.Type, p.Title, p.Body, p.Data); err != nil {
		logger.Error("Failed to send reminder", zap.String("userID", p.UserID), zap.Error(err))
		return err
	}
	return nil
}

// HandleFanOut notifies the connections of a post's author. Only a failed
// connection lookup is retried.
func (h *Handlers) HandleFanOut(ctx context.Context, task *asynq.Task) error {
	var p models.FanOutPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("invalid fan-out payload: %v: %w", err, asynq.SkipRetry)
	}
	n, err := notification.DeliverFanOut(ctx, h.Connections, h.Notifier, p)
	if err != nil {
		utils.GetLogger().Warn("Fan-out connection lookup failed", zap.String("authorID", p.AuthorID), zap.Error(err))
		return err
	}
	utils.GetLogger().Debug("Fan-out delivered", zap.String("authorID", p.AuthorID), zap.Int("recipients", n))
	return nil
}

// RedisOpt is the asynq connection for the task queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewClient returns the asynq client the services enqueue with.
func NewClient() *asynq.Client {
	return asynq.NewClient(RedisOpt())
}

// StartWorker runs the task server in the background until ctx is done.
func StartWorker(ctx context.Context, h *Handlers) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := h.Mux()

	go monitorRedisConnection(ctx)

	go func() {
		logger.Info("Starting task worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Task worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Task worker retries exhausted")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

// monitorRedisConnection pings the queue database to surface outages at runtime.
func monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				utils.GetLogger().Warn("Task queue redis unreachable", zap.Error(err))
			}
		}
	}
}
