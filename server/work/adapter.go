package work

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// WorkerPoolAdapter pairs the cron scheduler with the in-memory worker:
// the scheduler decides when a job becomes due, the worker runs it off the
// serving goroutines.
type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	worker        *worker
	logg          *zap.SugaredLogger
}

func NewWorkerAdapter(timeZoneArg string, logg *zap.SugaredLogger) *WorkerPoolAdapter {
	timeZone, err := time.LoadLocation(timeZoneArg)
	if err != nil {
		logg.Warnf("unknown time zone %q, falling back to UTC", timeZoneArg)
		timeZone = time.UTC
	}

	cronScheduler := gocron.NewScheduler(timeZone)
	cronScheduler.TagsUnique()

	return &WorkerPoolAdapter{
		cronScheduler: cronScheduler,
		worker:        newWorker(logg),
		logg:          logg,
	}
}

// Start starts the cron scheduler & worker.
func (adapter *WorkerPoolAdapter) Start() {
	adapter.logg.Info("Starting cron scheduler & worker")
	adapter.cronScheduler.StartAsync()
	adapter.worker.start()
}

// Stop stops the cron scheduler & worker.
func (adapter *WorkerPoolAdapter) Stop() {
	adapter.logg.Info("Stopping cron scheduler & worker")
	adapter.cronScheduler.Stop()
	adapter.worker.stop()
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.worker.registerHandler(name, handler)
}

// Perform sends a new job to the queue, to be executed as soon as the
// worker is available.
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	adapter.logg.Infof("Enqueuing job: %v", job.Name)

	err := adapter.worker.enqueue(job)
	if err != nil {
		return fmt.Errorf("error enqueuing job %v: %v", job.Name, err)
	}

	return nil
}

// PeriodicallyPerform enqueues the job on the schedule described by the
// cron expression.
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				if err := adapter.Perform(job); err != nil {
					adapter.logg.Error(err)
				}
			},
			job,
		)

	return err
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(jobName string) {
	adapter.cronScheduler.RemoveByTag(jobName)
}
