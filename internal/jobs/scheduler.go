package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const defaultAssetRefreshSchedule = "0 4 * * *"

// Scheduler registers and runs periodic tasks.
type Scheduler interface {
	RegisterTasks(assetRefreshSchedule string) error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

// NewScheduler builds a Scheduler over the given Redis connection.
func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		log:            log,
	}
}

func (s *scheduler) RegisterTasks(assetRefreshSchedule string) error {
	if assetRefreshSchedule == "" {
		assetRefreshSchedule = defaultAssetRefreshSchedule
	}

	task, err := NewAssetRefreshTask("scheduled")
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(assetRefreshSchedule, task); err != nil {
		return err
	}

	if s.log != nil {
		s.log.Info("scheduler: registered asset refresh task", slog.String("schedule", assetRefreshSchedule))
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
