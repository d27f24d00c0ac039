// Package executor extracts generated programs from model replies and runs
// them against the caller's data.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/askframe/pkg/chart"
)

// DefaultPlotFile is the file a plot program is told to save.
const DefaultPlotFile = "output.png"

// ErrArtifactMissing is returned by EvaluatePlot when artifact verification is
// on and the program did not write the expected file.
var ErrArtifactMissing = errors.New("plot artifact missing")

// Runner executes untrusted source and returns the value of process(args...).
type Runner interface {
	Run(ctx context.Context, source string, args []any) (any, error)
}

// PlotSettings controls the artifact contract of one plot evaluation.
type PlotSettings struct {
	// File is the name the program saves, relative to the working directory.
	File string
	// Verify turns a missing file into ErrArtifactMissing.
	Verify bool
}

// Executor runs extracted programs through a Runner and keeps run metrics.
type Executor struct {
	runner  Runner
	logger  *zap.SugaredLogger
	metrics ExecutorMetrics
}

// ExecutorOption represents an option for configuring the Executor.
type ExecutorOption func(*Executor)

// WithRunner replaces the default in-process interpreter.
func WithRunner(r Runner) ExecutorOption {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(logger *zap.SugaredLogger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor backed by a fresh Interpreter unless a
// runner is supplied.
func NewExecutor(options ...ExecutorOption) *Executor {
	e := &Executor{
		runner: NewInterpreter(),
		logger: zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Evaluate runs source and returns process(args...).
func (e *Executor) Evaluate(ctx context.Context, source string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := e.runner.Run(ctx, source, args)
	d := time.Since(start)
	e.metrics.record(d, err, false)

	if err != nil {
		e.logger.Debugw("program run failed", "duration", d, "error", err)
		return nil, err
	}
	e.logger.Debugw("program run finished", "duration", d, "result_type", fmt.Sprintf("%T", result))
	return result, nil
}

// EvaluatePlot runs process(data) for its side effect of saving a figure,
// releases the current figure, and returns the absolute artifact path.
func (e *Executor) EvaluatePlot(ctx context.Context, source string, data any, settings PlotSettings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if settings.File == "" {
		settings.File = DefaultPlotFile
	}

	start := time.Now()
	_, err := e.runner.Run(ctx, source, []any{data})
	chart.Close()
	if err != nil {
		e.metrics.record(time.Since(start), err, true)
		return "", err
	}

	wd, err := os.Getwd()
	if err != nil {
		e.metrics.record(time.Since(start), err, true)
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	path := filepath.Join(wd, settings.File)

	if settings.Verify {
		if _, statErr := os.Stat(path); statErr != nil {
			err = fmt.Errorf("%w: %s", ErrArtifactMissing, path)
			e.metrics.record(time.Since(start), err, true)
			return "", err
		}
	}

	e.metrics.record(time.Since(start), nil, true)
	e.logger.Debugw("plot rendered", "path", path)
	return path, nil
}

// Metrics returns a snapshot of the run counters.
func (e *Executor) Metrics() ExecutorMetrics {
	return e.metrics.Copy()
}
