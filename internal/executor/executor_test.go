package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

type runnerFunc func(ctx context.Context, source string, args []any) (any, error)

func (f runnerFunc) Run(ctx context.Context, source string, args []any) (any, error) {
	return f(ctx, source, args)
}

func TestExecutor_EvaluateMetrics(t *testing.T) {
	e := NewExecutor(WithRunner(quietInterpreter()))
	ctx := context.Background()

	got, err := e.Evaluate(ctx, "func process(x int) int { return x + 1 }", 5)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	_, err = e.Evaluate(ctx, "func process(x int) int { return x + }", 5)
	assert.Error(t, err)

	m := e.Metrics()
	assert.Equal(t, 2, m.RunsExecuted)
	assert.Equal(t, 1, m.RunsSuccessful)
	assert.Equal(t, 1, m.RunsFailed)
	assert.Equal(t, 0, m.PlotsRendered)
}

func TestExecutor_EvaluatePassesArgs(t *testing.T) {
	var seen []any
	e := NewExecutor(WithRunner(runnerFunc(func(ctx context.Context, source string, args []any) (any, error) {
		seen = args
		return "ok", nil
	})))

	got, err := e.Evaluate(context.Background(), "src", "data", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []any{"data", 1, 2}, seen)
}

func TestExecutor_EvaluateCancelled(t *testing.T) {
	called := false
	e := NewExecutor(WithRunner(runnerFunc(func(ctx context.Context, source string, args []any) (any, error) {
		called = true
		return nil, nil
	})))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, "src")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func plotTable(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.NewTable(
		frame.StringSeries("country", []string{"Germany", "France", "Spain"}),
		frame.IntSeries("a", []int64{1, 2, 3}),
	)
	require.NoError(t, err)
	return tbl
}

const barProgram = `
import (
	"github.com/ZanzyTHEbar/askframe/pkg/chart"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

func process(df *frame.Table) {
	fig := chart.NewFigure(30, 12)
	fig.Title("a by country")
	if err := fig.Bar(df.Column("country").Strings(), df.Column("a").Floats()); err != nil {
		panic(err)
	}
	fig.RotateXTicks(20)
	if _, err := fig.Save("output"); err != nil {
		panic(err)
	}
}
`

func TestExecutor_EvaluatePlot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	e := NewExecutor(WithRunner(quietInterpreter()))
	path, err := e.EvaluatePlot(context.Background(), barProgram, plotTable(t), PlotSettings{Verify: true})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "output.png"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, e.Metrics().PlotsRendered)
}

func TestExecutor_EvaluatePlotPermissive(t *testing.T) {
	t.Chdir(t.TempDir())
	e := NewExecutor(WithRunner(quietInterpreter()))
	noop := "func process(df any) {}"

	path, err := e.EvaluatePlot(context.Background(), noop, plotTable(t), PlotSettings{})
	require.NoError(t, err)
	assert.Equal(t, "output.png", filepath.Base(path))

	_, err = e.EvaluatePlot(context.Background(), noop, plotTable(t), PlotSettings{Verify: true})
	assert.True(t, errors.Is(err, ErrArtifactMissing))
}

func TestExecutor_EvaluatePlotFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	e := NewExecutor(WithRunner(quietInterpreter()))

	_, err := e.EvaluatePlot(context.Background(), "func process(a, b int) {}", plotTable(t), PlotSettings{})
	assert.Error(t, err)
	assert.Equal(t, 1, e.Metrics().RunsFailed)
}
