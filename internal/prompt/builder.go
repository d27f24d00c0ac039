// Package prompt renders a goal and a data argument into the text sent to the
// code-generating model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/askframe/internal/template"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// Template is the fixed task prompt. The model is asked for a Go function
// named process taking the data argument.
const Template = `
	Write a Go function ` + "`process({arg_name})`" + ` which takes the following input value:

	{arg_name} = {arg}

	This is the function's purpose: {goal}
`

// PlotDirectives is appended to the goal of plot calls.
const PlotDirectives = " Generate a plot with a figure size of (30, 12)." +
	" Rotate the x-axis labels by 20 degrees." +
	" Do not use a tight layout." +
	" Save the plot as an image file named 'output'."

// Arg is the data argument of a call: its kind and the value itself.
type Arg struct {
	Kind  frame.Kind
	Value any
}

// NewArg classifies v by its frame type.
func NewArg(v any) Arg {
	switch v.(type) {
	case *frame.Table:
		return Arg{Kind: frame.KindTable, Value: v}
	case *frame.Series:
		return Arg{Kind: frame.KindSeries, Value: v}
	case *frame.Index:
		return Arg{Kind: frame.KindIndex, Value: v}
	default:
		return Arg{Kind: frame.KindValue, Value: v}
	}
}

// Name is the parameter name the prompt uses for an argument of kind k.
func Name(k frame.Kind) string {
	switch k {
	case frame.KindTable:
		return "df"
	case frame.KindIndex:
		return "index"
	default:
		return "data"
	}
}

// Summarize describes the argument for the model. Tables and series get a
// structural report without cell values; everything else its textual form.
func Summarize(arg Arg) string {
	switch v := arg.Value.(type) {
	case *frame.Table:
		if v == nil {
			return "<nil>"
		}
		return v.InfoString()
	case *frame.Series:
		if v == nil {
			return "<nil>"
		}
		return v.InfoString()
	case *frame.Index:
		if v == nil {
			return "<nil>"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// Build renders the value-call prompt.
func Build(goal string, arg Arg) (string, error) {
	return template.Fill(Template, map[string]string{
		"arg_name": Name(arg.Kind),
		"arg":      strings.TrimSpace(Summarize(arg)),
		"goal":     strings.TrimSpace(goal),
	})
}

// BuildPlot renders the plot-call prompt: the goal gains the layout
// directives, everything else matches Build.
func BuildPlot(goal string, arg Arg) (string, error) {
	return Build(strings.TrimSpace(goal)+PlotDirectives, arg)
}
