package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentFigure(t *testing.T) {
	Close()
	t.Cleanup(Close)

	f := Current()
	w, h := f.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
	assert.Same(t, f, Current())

	g := NewFigure(30, 12)
	assert.Same(t, g, Current())

	Close()
	assert.NotSame(t, g, Current())
}

func TestBarSave(t *testing.T) {
	t.Cleanup(Close)
	dir := t.TempDir()

	f := NewFigure(30, 12)
	f.Title("Units by country")
	f.XLabel("country")
	f.YLabel("units")
	require.NoError(t, f.Bar([]string{"Germany", "France", "Spain"}, []float64{3, 4, 5}))
	f.RotateXTicks(20)

	path, err := f.Save(filepath.Join(dir, "output"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestLineAndScatter(t *testing.T) {
	t.Cleanup(Close)
	f := NewFigure(4, 3)

	require.NoError(t, f.Line([]float64{0, 1, 2}, []float64{1, 4, 9}))
	require.NoError(t, f.Scatter([]float64{0, 1}, []float64{2, 3}))

	path, err := f.Save(filepath.Join(t.TempDir(), "curve.svg"))
	require.NoError(t, err)
	assert.Equal(t, ".svg", filepath.Ext(path))
}

func TestLengthMismatch(t *testing.T) {
	t.Cleanup(Close)
	f := NewFigure(4, 3)

	assert.Error(t, f.Bar([]string{"a"}, []float64{1, 2}))
	assert.Error(t, f.Line([]float64{1}, nil))
	assert.Error(t, f.Scatter(nil, []float64{1}))

	_, err := f.Save("")
	assert.Error(t, err)
}
