package camunda

import (
	"context"
	"time"

	"dining-concierge/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobFunc performs one unit of work and returns the variables the job is
// completed with. An error fails the job with one retry consumed.
type JobFunc func(ctx context.Context) (map[string]interface{}, error)

type WorkerOptions struct {
	TaskType       string
	MaxJobsActive  int
	Timeout        time.Duration
	RequestTimeout time.Duration
}

// JobWorker runs a JobFunc for every activated job of one task type.
type JobWorker struct {
	worker worker.JobWorker
	opts   WorkerOptions
	run    JobFunc
	logger logger.Logger
}

// NewJobWorker opens a job worker on client.
func NewJobWorker(client zbc.Client, opts WorkerOptions, run JobFunc, log logger.Logger) *JobWorker {
	w := &JobWorker{
		opts:   opts,
		run:    run,
		logger: log.WithFields(map[string]interface{}{"taskType": opts.TaskType}),
	}

	w.worker = client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(w.handle).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		RequestTimeout(opts.RequestTimeout).
		Open()

	w.logger.Info("job worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"timeout_ms":    opts.Timeout.Milliseconds(),
	})
	return w
}

func (w *JobWorker) handle(client worker.JobClient, job entities.Job) {
	log := w.logger.WithFields(map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), w.opts.Timeout)
	defer cancel()

	vars, err := w.run(ctx)
	if err != nil {
		retries := job.Retries - 1
		if retries < 0 {
			retries = 0
		}
		log.Error("job failed", map[string]interface{}{"error": err.Error(), "retries": retries})
		if _, ferr := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(err.Error()).
			Send(ctx); ferr != nil {
			log.Error("failed to send fail job command", map[string]interface{}{"error": ferr.Error()})
		}
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromMap(vars)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Debug("job completed", vars)
}

// Close stops activating new jobs and waits for in-flight handlers.
func (w *JobWorker) Close() {
	w.worker.Close()
	w.worker.AwaitClose()
	w.logger.Info("job worker stopped", nil)
}
