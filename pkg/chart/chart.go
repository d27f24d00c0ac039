// Package chart is a small figure API over gonum/plot for generated programs.
//
// It keeps one current figure per process, the way notebook plotting libraries
// do: NewFigure replaces it, Current returns it, Close drops it. Saving a
// figure whose name has no extension writes a PNG.
package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// ImportPath is the import path generated programs use for this package.
const ImportPath = "github.com/ZanzyTHEbar/askframe/pkg/chart"

// Default figure size in inches.
const (
	DefaultWidth  = 6.4
	DefaultHeight = 4.8
)

var (
	mu      sync.Mutex
	current *Figure
)

// Figure is a single plot with a fixed size.
type Figure struct {
	mu     sync.Mutex
	plot   *plot.Plot
	width  float64
	height float64
	series int
}

// NewFigure creates a figure of the given size in inches and makes it current.
// Non-positive sizes fall back to the defaults.
func NewFigure(width, height float64) *Figure {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := &Figure{plot: plot.New(), width: width, height: height}

	mu.Lock()
	current = f
	mu.Unlock()
	return f
}

// Current returns the current figure, creating a default one if needed.
func Current() *Figure {
	mu.Lock()
	f := current
	mu.Unlock()
	if f != nil {
		return f
	}
	return NewFigure(DefaultWidth, DefaultHeight)
}

// Close drops the current figure.
func Close() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

// Size returns the figure size in inches.
func (f *Figure) Size() (width, height float64) {
	return f.width, f.height
}

// Title sets the figure title.
func (f *Figure) Title(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plot.Title.Text = s
}

// XLabel sets the x axis label.
func (f *Figure) XLabel(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plot.X.Label.Text = s
}

// YLabel sets the y axis label.
func (f *Figure) YLabel(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plot.Y.Label.Text = s
}

// Bar draws one bar per label.
func (f *Figure) Bar(labels []string, values []float64) error {
	if len(labels) != len(values) {
		return fmt.Errorf("bar: %d labels for %d values", len(labels), len(values))
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	bars, err := plotter.NewBarChart(plotter.Values(values), barWidth(f.width, len(values)))
	if err != nil {
		return fmt.Errorf("bar: %w", err)
	}
	bars.Color = plotutil.Color(f.series)
	bars.LineStyle.Width = vg.Length(0)
	f.series++

	f.plot.Add(bars)
	f.plot.NominalX(labels...)
	return nil
}

// Line draws a polyline through the points (xs[i], ys[i]).
func (f *Figure) Line(xs, ys []float64) error {
	pts, err := points(xs, ys)
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	l.LineStyle.Color = plotutil.Color(f.series)
	f.series++
	f.plot.Add(l)
	return nil
}

// Scatter draws a glyph at each point (xs[i], ys[i]).
func (f *Figure) Scatter(xs, ys []float64) error {
	pts, err := points(xs, ys)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = plotutil.Color(f.series)
	f.series++
	f.plot.Add(s)
	return nil
}

// RotateXTicks rotates the x tick labels counter-clockwise by deg degrees.
func (f *Figure) RotateXTicks(deg float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plot.X.Tick.Label.Rotation = deg * math.Pi / 180
	if deg != 0 {
		f.plot.X.Tick.Label.XAlign = text.XRight
		f.plot.X.Tick.Label.YAlign = text.YCenter
	}
}

// Save renders the figure to name and returns the written path. A name
// without an extension gets ".png".
func (f *Figure) Save(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("save: empty file name")
	}
	path := name
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.plot.Save(vg.Length(f.width)*vg.Inch, vg.Length(f.height)*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func barWidth(figWidth float64, n int) vg.Length {
	if n == 0 {
		n = 1
	}
	w := vg.Length(figWidth) * vg.Inch * 0.6 / vg.Length(n)
	if w < vg.Points(2) {
		w = vg.Points(2)
	}
	return w
}

func points(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d x values for %d y values", len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}
