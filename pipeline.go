package askframe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/askframe/internal/adapters"
	"github.com/ZanzyTHEbar/askframe/internal/eventbus"
	"github.com/ZanzyTHEbar/askframe/internal/executor"
	"github.com/ZanzyTHEbar/askframe/internal/prompt"
)

const eventSource = "askframe"

// call is the state of one invocation: its ID and the configuration and data
// it was started with.
type call struct {
	id      string
	cfg     Config
	verbose bool
	arg     prompt.Arg
	extra   []any
	logger  *zap.SugaredLogger
	start   time.Time
}

func (a *Asker) begin(ctx context.Context, arg prompt.Arg, opts callOptions, kind string) (*call, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewCancelledError(StagePrompt, err)
	}

	cfg := a.Config()
	c := &call{
		id:      uuid.New().String(),
		cfg:     cfg,
		verbose: cfg.Verbose,
		arg:     resolveData(arg, effectiveMutable(cfg.Mutable, opts.mutable)),
		extra:   opts.args,
		start:   time.Now(),
	}
	if opts.verbose != nil {
		c.verbose = *opts.verbose
	}
	c.logger = a.logger.With("run_id", c.id, "call", kind, "kind", arg.Kind.String())

	a.publish(ctx, c, eventbus.EventAskStarted, map[string]interface{}{"call": kind})
	return c, nil
}

func (a *Asker) finish(ctx context.Context, c *call, err error) {
	d := time.Since(c.start)
	if err != nil {
		c.logger.Debugw("call failed", "duration", d, "error", err)
	} else {
		c.logger.Debugw("call finished", "duration", d)
	}
	a.publish(ctx, c, eventbus.EventAskFinished, map[string]interface{}{
		"duration": d,
		"failed":   err != nil,
	})
}

func (a *Asker) renderPrompt(arg prompt.Arg, goal string, plot bool) (string, error) {
	var (
		text string
		err  error
	)
	if plot {
		text, err = prompt.BuildPlot(goal, arg)
	} else {
		text, err = prompt.Build(goal, arg)
	}
	if err != nil {
		return "", NewTemplateError(err)
	}
	return text, nil
}

// generate renders the prompt, obtains a completion and extracts the program.
func (a *Asker) generate(ctx context.Context, c *call, goal string, plot bool) (string, error) {
	text, err := a.renderPrompt(c.arg, goal, plot)
	if err != nil {
		return "", err
	}
	fp := adapters.Fingerprint(text)
	a.publish(ctx, c, eventbus.EventPromptBuilt, map[string]interface{}{"prompt": fp})

	completion, hit, err := a.completions.Complete(ctx, text, c.cfg.Model, c.cfg.CompletionOptions)
	if err != nil {
		a.publish(ctx, c, eventbus.EventCompletionFailed, map[string]interface{}{"prompt": fp})
		if isContextErr(err) {
			return "", NewCancelledError(StageCompletion, err)
		}
		return "", NewBackendError(err)
	}
	if hit {
		a.publish(ctx, c, eventbus.EventCompletionCacheHit, map[string]interface{}{"prompt": fp})
	} else {
		a.publish(ctx, c, eventbus.EventCompletionReceived, map[string]interface{}{"prompt": fp})
	}
	c.logger.Debugw("completion ready", "prompt", fp, "cache_hit", hit)

	reply := completion.Text()
	if c.verbose {
		fmt.Fprintln(c.cfg.Output, reply)
	}

	source := executor.ExtractCode(reply)
	a.publish(ctx, c, eventbus.EventCodeExtracted, map[string]interface{}{"bytes": len(source)})
	return source, nil
}

func (a *Asker) ask(ctx context.Context, arg prompt.Arg, goal string, opts callOptions) (result any, err error) {
	c, err := a.begin(ctx, arg, opts, "ask")
	if err != nil {
		return nil, err
	}
	defer func() { a.finish(ctx, c, err) }()

	source, err := a.generate(ctx, c, goal, false)
	if err != nil {
		return nil, err
	}

	args := append([]any{c.arg.Value}, c.extra...)
	result, err = a.executor.Evaluate(ctx, source, args...)
	if err != nil {
		a.publish(ctx, c, eventbus.EventExecutionFailed, map[string]interface{}{"error": err.Error()})
		if isContextErr(err) {
			return nil, NewCancelledError(StageExecution, err)
		}
		return nil, NewExecutionError(err)
	}
	a.publish(ctx, c, eventbus.EventExecutionSucceeded, nil)
	return result, nil
}

func (a *Asker) plot(ctx context.Context, arg prompt.Arg, goal string, opts callOptions) (path string, err error) {
	c, err := a.begin(ctx, arg, opts, "plot")
	if err != nil {
		return "", err
	}
	defer func() { a.finish(ctx, c, err) }()

	source, err := a.generate(ctx, c, goal, true)
	if err != nil {
		return "", err
	}

	a.plotMu.Lock()
	path, err = a.executor.EvaluatePlot(ctx, source, c.arg.Value, executor.PlotSettings{
		File:   c.cfg.PlotFile,
		Verify: c.cfg.VerifyArtifact,
	})
	a.plotMu.Unlock()

	if err != nil {
		a.publish(ctx, c, eventbus.EventExecutionFailed, map[string]interface{}{"error": err.Error()})
		switch {
		case errors.Is(err, executor.ErrArtifactMissing):
			return "", NewArtifactMissingError(err)
		case isContextErr(err):
			return "", NewCancelledError(StagePlot, err)
		default:
			return "", NewExecutionError(err)
		}
	}
	a.publish(ctx, c, eventbus.EventPlotRendered, map[string]interface{}{"path": path})
	return path, nil
}

func (a *Asker) code(ctx context.Context, arg prompt.Arg, goal string, plot bool, opts callOptions) (source string, err error) {
	c, err := a.begin(ctx, arg, opts, "code")
	if err != nil {
		return "", err
	}
	defer func() { a.finish(ctx, c, err) }()

	return a.generate(ctx, c, goal, plot)
}

func (a *Asker) publish(ctx context.Context, c *call, eventType eventbus.EventType, metadata map[string]interface{}) {
	if a.bus == nil {
		return
	}
	if err := a.bus.Publish(context.WithoutCancel(ctx), eventbus.NewEvent(eventType, c.id, eventSource, metadata)); err != nil {
		c.logger.Warnw("failed to publish event", "event_type", eventType, "error", err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
