package askframe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/ZanzyTHEbar/askframe/internal/batch"
	"github.com/ZanzyTHEbar/askframe/internal/eventbus"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// DefaultBatchWorkers bounds the number of jobs run at once.
const DefaultBatchWorkers = 4

// JobResult is the outcome of one batch job. Value is set for ask jobs, Path
// for plot jobs.
type JobResult struct {
	ID       string
	Kind     string
	Value    any
	Path     string
	Err      error
	Duration time.Duration
}

// BatchReport holds every job result of a batch run, in job file order.
type BatchReport struct {
	Name    string
	Results []*JobResult
}

// Failed returns the results whose job did not succeed.
func (r *BatchReport) Failed() []*JobResult {
	var failed []*JobResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Result returns the result of the job with the given id, or nil.
func (r *BatchReport) Result(id string) *JobResult {
	for _, res := range r.Results {
		if res.ID == id {
			return res
		}
	}
	return nil
}

// BatchOption configures a batch run.
type BatchOption func(*batchOptions)

type batchOptions struct {
	workers int
}

// WithMaxWorkers sets how many independent jobs may run at once.
func WithMaxWorkers(n int) BatchOption {
	return func(o *batchOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// RunBatchFile loads a YAML job file and runs its jobs. Jobs run once their
// dependencies have finished; a job whose dependency failed is skipped with
// an error. CSV paths are resolved against the job file's directory.
//
// The returned error covers loading and validation only. Job failures are
// reported in the BatchReport.
func (a *Asker) RunBatchFile(ctx context.Context, path string, opts ...BatchOption) (*BatchReport, error) {
	jf, err := batch.LoadAndValidate(path)
	if err != nil {
		return nil, NewError(ErrCodeConfiguration, StageBatch, "invalid job file", err)
	}

	o := batchOptions{workers: DefaultBatchWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	return a.runBatch(ctx, jf, filepath.Dir(path), o), nil
}

func (a *Asker) runBatch(ctx context.Context, jf *batch.JobFile, baseDir string, o batchOptions) *BatchReport {
	var (
		mu      sync.Mutex
		results = make(map[string]*JobResult, len(jf.Jobs))
	)

	for _, stage := range jf.Stages() {
		workerPool := pool.New().WithMaxGoroutines(o.workers)
		for _, job := range stage {
			mu.Lock()
			deps := make(map[string]*JobResult, len(job.Dependencies()))
			for _, dep := range job.Dependencies() {
				deps[dep] = results[dep]
			}
			mu.Unlock()

			workerPool.Go(func() {
				res := a.runJob(ctx, job, baseDir, deps)
				mu.Lock()
				results[job.ID] = res
				mu.Unlock()
			})
		}
		workerPool.Wait()
	}

	report := &BatchReport{Name: jf.Name, Results: make([]*JobResult, 0, len(jf.Jobs))}
	for _, job := range jf.Jobs {
		report.Results = append(report.Results, results[job.ID])
	}
	return report
}

func (a *Asker) runJob(ctx context.Context, job batch.Job, baseDir string, deps map[string]*JobResult) *JobResult {
	res := &JobResult{ID: job.ID, Kind: job.Kind}
	start := time.Now()
	logger := a.logger.With("job_id", job.ID, "job_kind", job.Kind)
	a.publishJob(ctx, eventbus.EventBatchJobStarted, job.ID, nil)

	res.Value, res.Path, res.Err = a.execJob(ctx, job, baseDir, deps)
	res.Duration = time.Since(start)

	if res.Err != nil {
		logger.Warnw("batch job failed", "duration", res.Duration, "error", res.Err)
		a.publishJob(ctx, eventbus.EventBatchJobFailed, job.ID, map[string]interface{}{"error": res.Err.Error()})
		return res
	}
	logger.Infow("batch job finished", "duration", res.Duration)
	a.publishJob(ctx, eventbus.EventBatchJobSucceeded, job.ID, nil)
	return res
}

func (a *Asker) execJob(ctx context.Context, job batch.Job, baseDir string, deps map[string]*JobResult) (any, string, error) {
	for id, dep := range deps {
		if dep == nil || dep.Err != nil {
			return nil, "", NewError(ErrCodeExecution, StageBatch, fmt.Sprintf("dependency '%s' did not succeed", id), nil)
		}
	}

	data, err := loadJobData(job, baseDir, deps)
	if err != nil {
		return nil, "", NewError(ErrCodeConfiguration, StageBatch, fmt.Sprintf("job '%s' has unusable data", job.ID), err)
	}

	var opts []CallOption
	if job.Mutable != nil {
		opts = append(opts, WithMutable(*job.Mutable))
	}

	acc := a.For(data)
	if job.Kind == batch.KindPlot {
		path, err := acc.Plot(ctx, job.Goal, opts...)
		return nil, path, err
	}
	if len(job.Args) > 0 {
		opts = append(opts, WithArgs(job.Args...))
	}
	value, err := acc.Ask(ctx, job.Goal, opts...)
	return value, "", err
}

// loadJobData returns the data a job works on: an earlier job's value or a
// CSV file, optionally narrowed to one column.
func loadJobData(job batch.Job, baseDir string, deps map[string]*JobResult) (any, error) {
	var data any
	if ref, ok := job.Reference(); ok {
		dep := deps[ref]
		if dep.Kind != batch.KindAsk {
			return nil, fmt.Errorf("job '%s' produces no value", ref)
		}
		data = dep.Value
	} else {
		path := job.Data
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		table, err := frame.ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		data = table
	}

	if job.Column == "" {
		return data, nil
	}
	table, ok := data.(*frame.Table)
	if !ok {
		return nil, fmt.Errorf("column '%s' requested from a %T", job.Column, data)
	}
	col := table.Column(job.Column)
	if col == nil {
		return nil, fmt.Errorf("no column named '%s'", job.Column)
	}
	return col, nil
}

func (a *Asker) publishJob(ctx context.Context, eventType eventbus.EventType, jobID string, metadata map[string]interface{}) {
	if a.bus == nil {
		return
	}
	if err := a.bus.Publish(context.WithoutCancel(ctx), eventbus.NewEvent(eventType, jobID, eventSource, metadata)); err != nil {
		a.logger.Warnw("failed to publish event", "event_type", eventType, "error", err)
	}
}
