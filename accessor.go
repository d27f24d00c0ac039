package askframe

import (
	"context"

	"github.com/ZanzyTHEbar/askframe/internal/prompt"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// Accessor binds one data object to an Asker. It is cheap to create and holds
// no state of its own.
type Accessor struct {
	asker *Asker
	arg   prompt.Arg
}

// Kind reports how the data object is described to the model.
func (acc *Accessor) Kind() frame.Kind {
	return acc.arg.Kind
}

// Ask has the model write process(data, args...) for goal and returns its
// result.
func (acc *Accessor) Ask(ctx context.Context, goal string, opts ...CallOption) (any, error) {
	return acc.asker.ask(ctx, acc.arg, goal, applyCallOptions(opts))
}

// Code returns the program Ask would run for goal without running it.
func (acc *Accessor) Code(ctx context.Context, goal string, opts ...CallOption) (string, error) {
	return acc.asker.code(ctx, acc.arg, goal, false, applyCallOptions(opts))
}

// Prompt returns the prompt Ask would send for goal. The backend is not
// contacted.
func (acc *Accessor) Prompt(goal string) (string, error) {
	return acc.asker.renderPrompt(acc.arg, goal, false)
}

// Plot has the model write a program that draws the data and saves the
// figure, runs it, and returns the absolute path of the saved image.
func (acc *Accessor) Plot(ctx context.Context, goal string, opts ...CallOption) (string, error) {
	return acc.asker.plot(ctx, acc.arg, goal, applyCallOptions(opts))
}

// PlotCode returns the program Plot would run for goal without running it.
func (acc *Accessor) PlotCode(ctx context.Context, goal string, opts ...CallOption) (string, error) {
	return acc.asker.code(ctx, acc.arg, goal, true, applyCallOptions(opts))
}

// PlotPrompt returns the prompt Plot would send for goal.
func (acc *Accessor) PlotPrompt(goal string) (string, error) {
	return acc.asker.renderPrompt(acc.arg, goal, true)
}
