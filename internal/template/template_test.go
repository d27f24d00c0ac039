package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill_SubstitutesEveryOccurrence(t *testing.T) {
	out, err := Fill("{a} and {b} and {a}", map[string]string{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x and y and x", out)
}

func TestFill_MissingBindingFails(t *testing.T) {
	_, err := Fill("hello {name}, goal: {goal}", map[string]string{"name": "df"})
	require.Error(t, err)

	var unresolved *UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "{goal}", unresolved.Placeholder)
	assert.Contains(t, err.Error(), "{goal}")
}

func TestFill_CompleteBindingsLeaveNoTokens(t *testing.T) {
	tpl := `
		Write a Go function ` + "`process({arg_name})`" + `:

		{arg_name} = {arg}

		Purpose: {goal}
	`
	bindings := map[string]string{"arg_name": "df", "arg": "summary", "goal": "sum"}

	out, err := Fill(tpl, bindings)
	require.NoError(t, err)
	for _, name := range Placeholders(tpl) {
		assert.NotContains(t, out, "{"+name+"}")
	}
	assert.True(t, strings.HasPrefix(out, "Write a Go function `process(df)`"))
	assert.Contains(t, out, "\ndf = summary\n")
}

func TestFill_ValuesAreNotRescanned(t *testing.T) {
	src := "func process(x []int) []int { return []int{x[0]} }\nvar m = map[string]int{}\n// {goal}"
	out, err := Fill("{source}\n", map[string]string{"source": src})
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestFill_ExtraBindingsIgnored(t *testing.T) {
	out, err := Fill("{a}", map[string]string{"a": "1", "unused": "2"})
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading blank lines and trailing space", "\n\n  a\n  b  \n\n", "a\nb"},
		{"keeps relative indent", "\n    a\n      b\n", "a\n  b"},
		{"blank lines inside are kept", "  a\n\n  b", "a\n\nb"},
		{"no indent", "a\nb", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Placeholders("{a} {b} {a} {} {1x}"))
}
