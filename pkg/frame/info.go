package frame

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Info writes a structural report of the table: type, index range, and per
// column name, non-null count and dtype. No cell values are included.
func (t *Table) Info(w io.Writer) {
	fmt.Fprintf(w, "<*frame.Table> (%s)\n", ImportPath)
	fmt.Fprintln(w, t.index.describe())
	fmt.Fprintf(w, "Data columns (total %d columns):\n", len(t.columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " #\tColumn\tNon-Null Count\tDtype")
	fmt.Fprintln(tw, "---\t------\t--------------\t-----")
	for i, c := range t.columns {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\n", i, c.Name(), c.NonNull(), c.DType())
	}
	tw.Flush()

	fmt.Fprintf(w, "dtypes: %s\n", dtypeCounts(t.columns))
}

// InfoString returns the Info report as a string.
func (t *Table) InfoString() string {
	var b strings.Builder
	t.Info(&b)
	return b.String()
}

// Info writes a structural report of the series.
func (s *Series) Info(w io.Writer) {
	fmt.Fprintf(w, "<*frame.Series> (%s)\n", ImportPath)
	fmt.Fprintln(w, RangeIndex(s.Len()).describe())
	fmt.Fprintf(w, "Series name: %s\n", s.Name())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Non-Null Count\tDtype")
	fmt.Fprintln(tw, "--------------\t-----")
	fmt.Fprintf(tw, "%d non-null\t%s\n", s.NonNull(), s.DType())
	tw.Flush()

	fmt.Fprintf(w, "dtypes: %s\n", dtypeCounts([]*Series{s}))
}

// InfoString returns the Info report as a string.
func (s *Series) InfoString() string {
	var b strings.Builder
	s.Info(&b)
	return b.String()
}

func dtypeCounts(columns []*Series) string {
	counts := make(map[DType]int)
	for _, c := range columns {
		counts[c.DType()]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s(%d)", k, counts[DType(k)])
	}
	return strings.Join(parts, ", ")
}
