// Package frame is a small column-oriented table library: tables of named,
// typed series sharing a row index.
//
// It provides what the ask pipeline needs from a tabular data library:
// structural summaries (Info), deep copies (Copy), CSV loading, and
// expression-based derived columns and filters. Generated programs receive
// *Table, *Series and *Index values directly.
package frame

import (
	"fmt"
	"math"
)

// ImportPath is the import path generated programs use for this package.
const ImportPath = "github.com/ZanzyTHEbar/askframe/pkg/frame"

// Kind tags the shape of a data argument.
type Kind int

const (
	// KindValue is anything that is not a frame object.
	KindValue Kind = iota
	// KindTable is a *Table.
	KindTable
	// KindSeries is a single *Series.
	KindSeries
	// KindIndex is an *Index.
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindSeries:
		return "series"
	case KindIndex:
		return "index"
	default:
		return "value"
	}
}

// DType is the element type of a series.
type DType string

const (
	Int64   DType = "int64"
	Float64 DType = "float64"
	Bool    DType = "bool"
	String  DType = "string"
	Object  DType = "object"
)

// normalize maps Go scalars onto the canonical element types
// (int64, float64, bool, string). Anything else is kept as-is.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return v
	}
}

// inferDType picks the narrowest dtype holding every non-nil value.
func inferDType(values []any) DType {
	var ints, floats, bools, strs, other int
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			strs++
		default:
			other++
		}
	}

	switch {
	case other > 0:
		return Object
	case strs > 0 && ints+floats+bools == 0:
		return String
	case bools > 0 && ints+floats+strs == 0:
		return Bool
	case floats > 0 && bools+strs == 0:
		return Float64
	case ints > 0 && bools+strs == 0:
		return Int64
	default:
		return Object
	}
}

// coerce converts a normalized value to dtype, reporting whether that worked.
func coerce(v any, dtype DType) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch dtype {
	case Float64:
		switch x := v.(type) {
		case float64:
			return x, true
		case int64:
			return float64(x), true
		}
		return nil, false
	case Int64:
		switch x := v.(type) {
		case int64:
			return x, true
		case float64:
			if x == math.Trunc(x) {
				return int64(x), true
			}
		}
		return nil, false
	case Bool:
		b, ok := v.(bool)
		return b, ok
	case String:
		s, ok := v.(string)
		return s, ok
	default:
		return v, true
	}
}

// toFloat returns v as float64; non-numeric and nil values become NaN.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
