package work

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const jobQueueSize = 64

type JobParams struct {
	Name    string
	Handler string
	Args    map[string]interface{}
}

type Handler func(map[string]interface{}) error

// worker pulls jobs off an in-memory queue & runs the registered handler.
// Jobs here are periodic infrastructure chores(reaper, backups); nothing
// needs to survive a restart, so there is no durable queue behind it.
type worker struct {
	handlers map[string]Handler
	jobChan  chan JobParams
	stopChan chan struct{}
	logg     *zap.SugaredLogger
}

func newWorker(logg *zap.SugaredLogger) *worker {
	return &worker{
		handlers: make(map[string]Handler),
		jobChan:  make(chan JobParams, jobQueueSize),
		stopChan: make(chan struct{}),
		logg:     logg,
	}
}

// registerHandler binds a name to a job handler.
func (w *worker) registerHandler(name string, handler Handler) error {
	if _, ok := w.handlers[name]; ok {
		return fmt.Errorf("handler already mapped for '%v'", name)
	}

	w.handlers[name] = handler
	return nil
}

func (w *worker) enqueue(job JobParams) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	if _, ok := w.handlers[job.Handler]; !ok {
		return fmt.Errorf("no handler mapped for '%v'", job.Handler)
	}

	select {
	case w.jobChan <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full, dropping job: %v", job.Name)
	}
}

func (w *worker) start() {
	go w.loop()
}

func (w *worker) stop() {
	w.stopChan <- struct{}{}
}

func (w *worker) loop() {
	w.logg.Info("Starting worker")
	for {
		select {
		case <-w.stopChan:
			w.logg.Info("Stopping worker")
			return
		case job := <-w.jobChan:
			w.processJob(job)
		}
	}
}

func (w *worker) processJob(job JobParams) {
	started := time.Now()

	err := w.handlers[job.Handler](job.Args)
	if err != nil {
		w.logg.Errorf("job %v failed after %v: %v", job.Name, time.Since(started), err)
		return
	}

	w.logg.Infof("job %v completed in %v", job.Name, time.Since(started))
}
