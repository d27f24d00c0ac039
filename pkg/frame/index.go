package frame

import (
	"fmt"
	"strings"
)

// Index labels the rows of a table. A nil label slice is a range index 0..n-1.
type Index struct {
	name   string
	labels []any
	n      int
}

// NewIndex builds a labelled index.
func NewIndex(name string, labels ...any) *Index {
	vals := make([]any, len(labels))
	for i, l := range labels {
		vals[i] = normalize(l)
	}
	return &Index{name: name, labels: vals, n: len(vals)}
}

// RangeIndex builds the default index 0..n-1.
func RangeIndex(n int) *Index {
	return &Index{n: n}
}

// Kind reports KindIndex.
func (ix *Index) Kind() Kind { return KindIndex }

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Len returns the number of labels.
func (ix *Index) Len() int { return ix.n }

// IsRange reports whether the index is the default 0..n-1 range.
func (ix *Index) IsRange() bool { return ix.labels == nil }

// Label returns the label of row i.
func (ix *Index) Label(i int) any {
	if ix.labels == nil {
		return int64(i)
	}
	return ix.labels[i]
}

// Labels returns a copy of every label.
func (ix *Index) Labels() []any {
	out := make([]any, ix.n)
	for i := range out {
		out[i] = ix.Label(i)
	}
	return out
}

// DType returns the label element type.
func (ix *Index) DType() DType {
	if ix.labels == nil {
		return Int64
	}
	return inferDType(ix.labels)
}

// Copy returns a deep copy.
func (ix *Index) Copy() *Index {
	if ix.labels == nil {
		return &Index{name: ix.name, n: ix.n}
	}
	labels := make([]any, len(ix.labels))
	copy(labels, ix.labels)
	return &Index{name: ix.name, labels: labels, n: ix.n}
}

func (ix *Index) take(rows []int) *Index {
	if ix.labels == nil {
		labels := make([]any, len(rows))
		for i, r := range rows {
			labels[i] = int64(r)
		}
		return &Index{name: ix.name, labels: labels, n: len(rows)}
	}
	labels := make([]any, len(rows))
	for i, r := range rows {
		labels[i] = ix.labels[r]
	}
	return &Index{name: ix.name, labels: labels, n: len(rows)}
}

// describe renders the one-line range summary used by Info.
func (ix *Index) describe() string {
	if ix.labels == nil {
		if ix.n == 0 {
			return "RangeIndex: 0 entries"
		}
		return fmt.Sprintf("RangeIndex: %d entries, 0 to %d", ix.n, ix.n-1)
	}
	if ix.n == 0 {
		return "Index: 0 entries"
	}
	return fmt.Sprintf("Index: %d entries, %s to %s", ix.n, formatValue(ix.labels[0]), formatValue(ix.labels[ix.n-1]))
}

// String renders the index the way it is shown to the model:
// Index(["a", "b"], dtype=string, name="k").
func (ix *Index) String() string {
	if ix.labels == nil {
		s := fmt.Sprintf("RangeIndex(start=0, stop=%d, step=1", ix.n)
		if ix.name != "" {
			s += fmt.Sprintf(", name=%q", ix.name)
		}
		return s + ")"
	}
	parts := make([]string, len(ix.labels))
	for i, l := range ix.labels {
		if s, ok := l.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = formatValue(l)
		}
	}
	s := fmt.Sprintf("Index([%s], dtype=%s", strings.Join(parts, ", "), ix.DType())
	if ix.name != "" {
		s += fmt.Sprintf(", name=%q", ix.name)
	}
	return s + ")"
}
