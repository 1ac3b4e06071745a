package queue

import (
	"context"

	"quietblock-api/core/config"
	"quietblock-api/core/logger"

	"github.com/hibiken/asynq"
)

// Handler processes a background task. Handlers must be idempotent: the
// scheduler may deliver the same periodic task again after a missed ack.
type Handler func(ctx context.Context) error

// Queue wraps an asynq server and scheduler. The scheduler enqueues
// periodic tasks (reminder checks, status sweeps) and the server runs
// their handlers in-process.
type Queue struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

func New(cfg config.RedisConfig) *Queue {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"default": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:TaskError", "type", task.Type(), "error", err)
		}),
	})

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	return &Queue{
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
	}
}

func (q *Queue) Handle(taskType string, h Handler) {
	q.mux.HandleFunc(taskType, func(ctx context.Context, _ *asynq.Task) error {
		return h(ctx)
	})
}

// RegisterPeriodic schedules taskType on the given cron spec
// (e.g. "@every 2m").
func (q *Queue) RegisterPeriodic(spec, taskType string) error {
	entryID, err := q.scheduler.Register(spec, asynq.NewTask(taskType, nil))
	if err != nil {
		return err
	}
	logger.Info("Queue:PeriodicRegistered", "type", taskType, "spec", spec, "entry", entryID)
	return nil
}

// Start runs the scheduler and the worker server. It does not block.
func (q *Queue) Start() error {
	if err := q.server.Start(q.mux); err != nil {
		return err
	}
	if err := q.scheduler.Start(); err != nil {
		q.server.Shutdown()
		return err
	}
	return nil
}

func (q *Queue) Shutdown() {
	q.scheduler.Shutdown()
	q.server.Shutdown()
}
