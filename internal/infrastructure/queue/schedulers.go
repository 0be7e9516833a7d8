package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"colorizer-backend/internal/shared"
	"colorizer-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerFailStaleJobsJob()
}

// ================================================
// JOB: Fail Stale Colorizations (Every 10 minutes)
// ================================================
// A worker that dies mid-job leaves its record stuck in "processing".
// The sweeper marks records older than twice the job timeout as failed
// so clients polling them see a terminal state.
func (s *Scheduler) registerFailStaleJobsJob() error {
	payload, err := json.Marshal(shared.FailStaleJobsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeFailStaleJobs, payload)

	_, err = s.scheduler.Register(
		"*/10 * * * *", // Every 10 minutes
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register FailStaleJobs job", err)
		return err
	}

	logger.Info("✓ Registered FailStaleJobs: every 10 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
