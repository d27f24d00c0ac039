package askframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/askframe/internal/prompt"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

type tally struct{ n int }

func (t *tally) Copy() any { return &tally{n: t.n} }

func TestResolveData_CopiesCopier(t *testing.T) {
	orig := &tally{n: 2}
	arg := prompt.Arg{Kind: frame.KindValue, Value: orig}

	got := resolveData(arg, false)
	assert.NotSame(t, orig, got.Value)
	assert.Equal(t, orig, got.Value)

	assert.Same(t, orig, resolveData(arg, true).Value)
}

func TestResolveData_NilPointers(t *testing.T) {
	for _, v := range []any{(*tally)(nil), (*frame.Table)(nil), (*frame.Series)(nil), (*frame.Index)(nil)} {
		arg := prompt.NewArg(v)
		var got prompt.Arg
		require.NotPanics(t, func() { got = resolveData(arg, false) })
		assert.Equal(t, arg, got)
	}
}

func TestNilDataDoesNotPanic(t *testing.T) {
	backend := &stubBackend{reply: "func process(data any) any { return data }"}
	a := newTestAsker(t, backend)

	text, err := a.Table(nil).Prompt("count the rows")
	require.NoError(t, err)
	assert.Contains(t, text, "df = <nil>")

	_, err = a.Value((*tally)(nil)).Code(context.Background(), "count")
	require.NoError(t, err)
	assert.EqualValues(t, 1, backend.calls.Load())
}
