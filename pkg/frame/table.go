package frame

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Table is an ordered set of equally long series sharing one index.
type Table struct {
	index   *Index
	columns []*Series
	byName  map[string]int
}

// NewTable builds a table from columns. Names must be unique and lengths equal.
func NewTable(columns ...*Series) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(columns))}
	n := 0
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if i == 0 {
			n = col.Len()
		} else if col.Len() != n {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name(), col.Len(), n)
		}
		if _, dup := t.byName[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name())
		}
		t.byName[col.Name()] = i
		t.columns = append(t.columns, col)
	}
	t.index = RangeIndex(n)
	return t, nil
}

// Kind reports KindTable.
func (t *Table) Kind() Kind { return KindTable }

// Len returns the number of rows.
func (t *Table) Len() int { return t.index.Len() }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// HasColumn reports whether a column named name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Series {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// SetColumn replaces the column with the same name, or appends it.
func (t *Table) SetColumn(s *Series) error {
	if s == nil {
		return fmt.Errorf("nil column")
	}
	if len(t.columns) > 0 && s.Len() != t.Len() {
		return fmt.Errorf("column %q has %d rows, table has %d", s.Name(), s.Len(), t.Len())
	}
	if len(t.columns) == 0 && t.index.IsRange() {
		t.index = RangeIndex(s.Len())
	}
	if i, ok := t.byName[s.Name()]; ok {
		t.columns[i] = s
		return nil
	}
	t.byName[s.Name()] = len(t.columns)
	t.columns = append(t.columns, s)
	return nil
}

// DropColumn removes the named column and reports whether it existed.
func (t *Table) DropColumn(name string) bool {
	i, ok := t.byName[name]
	if !ok {
		return false
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.byName, name)
	for j := i; j < len(t.columns); j++ {
		t.byName[t.columns[j].Name()] = j
	}
	return true
}

// Index returns the row index.
func (t *Table) Index() *Index { return t.index }

// SetIndex replaces the row index; its length must match the table.
func (t *Table) SetIndex(ix *Index) error {
	if ix == nil {
		return fmt.Errorf("nil index")
	}
	if ix.Len() != t.Len() {
		return fmt.Errorf("index has %d labels, table has %d rows", ix.Len(), t.Len())
	}
	t.index = ix
	return nil
}

// Row returns row i keyed by column name.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		row[c.Name()] = c.At(i)
	}
	return row
}

// Take returns a new table holding the given row positions, in order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{byName: make(map[string]int, len(t.columns)), index: t.index.take(rows)}
	for i, c := range t.columns {
		vals := make([]any, len(rows))
		for j, r := range rows {
			vals[j] = c.values[r]
		}
		out.columns = append(out.columns, &Series{name: c.name, dtype: c.dtype, values: vals})
		out.byName[c.name] = i
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	out := t.Take(rows)
	if t.index.IsRange() {
		out.index = RangeIndex(n)
	}
	return out
}

// Copy returns a deep copy; mutating the copy never affects t.
func (t *Table) Copy() *Table {
	out := &Table{byName: make(map[string]int, len(t.columns)), index: t.index.Copy()}
	for i, c := range t.columns {
		out.columns = append(out.columns, c.Copy())
		out.byName[c.Name()] = i
	}
	return out
}

// String renders up to the first 20 rows.
func (t *Table) String() string {
	const maxRows = 20

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := make([]string, 0, len(t.columns)+1)
	header = append(header, "")
	header = append(header, t.Columns()...)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	n := t.Len()
	shown := n
	if shown > maxRows {
		shown = maxRows
	}
	for i := 0; i < shown; i++ {
		cells := make([]string, 0, len(t.columns)+1)
		cells = append(cells, formatValue(t.index.Label(i)))
		for _, c := range t.columns {
			cells = append(cells, formatValue(c.At(i)))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	w.Flush()
	if shown < n {
		fmt.Fprintf(&b, "...\n")
	}
	fmt.Fprintf(&b, "[%d rows x %d columns]", n, len(t.columns))
	return b.String()
}
