package frame

import (
	"fmt"
	"math"
	"strings"
)

// Series is a named column of values sharing one dtype. A nil element is null.
type Series struct {
	name   string
	dtype  DType
	values []any
}

// NewSeries builds a series, inferring its dtype from the values.
func NewSeries(name string, values ...any) *Series {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalize(v)
	}
	dtype := inferDType(normalized)
	for i, v := range normalized {
		if c, ok := coerce(v, dtype); ok {
			normalized[i] = c
		}
	}
	return &Series{name: name, dtype: dtype, values: normalized}
}

// FloatSeries builds a float64 series. NaN values are stored as null.
func FloatSeries(name string, values []float64) *Series {
	vals := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		vals[i] = v
	}
	return &Series{name: name, dtype: Float64, values: vals}
}

// IntSeries builds an int64 series.
func IntSeries(name string, values []int64) *Series {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &Series{name: name, dtype: Int64, values: vals}
}

// StringSeries builds a string series.
func StringSeries(name string, values []string) *Series {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &Series{name: name, dtype: String, values: vals}
}

// Kind reports KindSeries.
func (s *Series) Kind() Kind { return KindSeries }

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Rename returns s renamed; the values are shared.
func (s *Series) Rename(name string) *Series {
	return &Series{name: name, dtype: s.dtype, values: s.values}
}

// DType returns the element type.
func (s *Series) DType() DType { return s.dtype }

// Len returns the number of elements.
func (s *Series) Len() int { return len(s.values) }

// At returns element i, or nil when it is null.
func (s *Series) At(i int) any { return s.values[i] }

// Set stores v at position i. The value must fit the series dtype;
// storing a float into an int64 series widens the series to float64.
func (s *Series) Set(i int, v any) error {
	if i < 0 || i >= len(s.values) {
		return fmt.Errorf("index %d out of range [0,%d)", i, len(s.values))
	}
	v = normalize(v)
	if c, ok := coerce(v, s.dtype); ok {
		s.values[i] = c
		return nil
	}
	if _, isFloat := v.(float64); isFloat && s.dtype == Int64 {
		s.widen(Float64)
		s.values[i] = v
		return nil
	}
	s.widen(Object)
	s.values[i] = v
	return nil
}

func (s *Series) widen(dtype DType) {
	for i, v := range s.values {
		if c, ok := coerce(v, dtype); ok {
			s.values[i] = c
		}
	}
	s.dtype = dtype
}

// Values returns a copy of the raw elements.
func (s *Series) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// Floats returns the elements as float64. Nulls and non-numeric values are NaN.
func (s *Series) Floats() []float64 {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = toFloat(v)
	}
	return out
}

// Strings returns the elements formatted as strings. Nulls become "".
func (s *Series) Strings() []string {
	out := make([]string, len(s.values))
	for i, v := range s.values {
		if v != nil {
			out[i] = formatValue(v)
		}
	}
	return out
}

// NonNull counts the non-null elements.
func (s *Series) NonNull() int {
	n := 0
	for _, v := range s.values {
		if v != nil {
			n++
		}
	}
	return n
}

// IsNumeric reports whether the dtype is int64 or float64.
func (s *Series) IsNumeric() bool {
	return s.dtype == Int64 || s.dtype == Float64
}

// Sum adds the numeric elements, skipping nulls.
func (s *Series) Sum() float64 {
	total := 0.0
	for _, v := range s.values {
		if f := toFloat(v); !math.IsNaN(f) {
			total += f
		}
	}
	return total
}

// Mean averages the numeric elements, skipping nulls. Empty series yield NaN.
func (s *Series) Mean() float64 {
	total, n := 0.0, 0
	for _, v := range s.values {
		if f := toFloat(v); !math.IsNaN(f) {
			total += f
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// Min returns the smallest numeric element, or NaN.
func (s *Series) Min() float64 {
	return s.fold(math.Min)
}

// Max returns the largest numeric element, or NaN.
func (s *Series) Max() float64 {
	return s.fold(math.Max)
}

func (s *Series) fold(pick func(a, b float64) float64) float64 {
	out := math.NaN()
	for _, v := range s.values {
		f := toFloat(v)
		if math.IsNaN(f) {
			continue
		}
		if math.IsNaN(out) {
			out = f
			continue
		}
		out = pick(out, f)
	}
	return out
}

// Copy returns a deep copy.
func (s *Series) Copy() *Series {
	return &Series{name: s.name, dtype: s.dtype, values: s.Values()}
}

func (s *Series) String() string {
	var b strings.Builder
	width := len(fmt.Sprint(len(s.values) - 1))
	for i, v := range s.values {
		fmt.Fprintf(&b, "%-*d  %s\n", width, i, formatValue(v))
	}
	fmt.Fprintf(&b, "Name: %s, Length: %d, dtype: %s", s.name, len(s.values), s.dtype)
	return b.String()
}
