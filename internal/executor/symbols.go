package executor

import (
	"reflect"

	"github.com/ZanzyTHEbar/askframe/pkg/chart"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// Symbols exposes pkg/frame and pkg/chart to interpreted programs, keyed the
// way the interpreter expects: "importpath/name".
var Symbols = map[string]map[string]reflect.Value{
	frame.ImportPath + "/frame": {
		"ImportPath": reflect.ValueOf(frame.ImportPath),

		"Table":  reflect.ValueOf((*frame.Table)(nil)),
		"Series": reflect.ValueOf((*frame.Series)(nil)),
		"Index":  reflect.ValueOf((*frame.Index)(nil)),
		"Kind":   reflect.ValueOf((*frame.Kind)(nil)),
		"DType":  reflect.ValueOf((*frame.DType)(nil)),

		"NewTable":           reflect.ValueOf(frame.NewTable),
		"NewSeries":          reflect.ValueOf(frame.NewSeries),
		"FloatSeries":        reflect.ValueOf(frame.FloatSeries),
		"IntSeries":          reflect.ValueOf(frame.IntSeries),
		"StringSeries":       reflect.ValueOf(frame.StringSeries),
		"NewIndex":           reflect.ValueOf(frame.NewIndex),
		"RangeIndex":         reflect.ValueOf(frame.RangeIndex),
		"ReadCSV":            reflect.ValueOf(frame.ReadCSV),
		"ReadCSVFile":        reflect.ValueOf(frame.ReadCSVFile),
		"ValidateExpression": reflect.ValueOf(frame.ValidateExpression),

		"Int64":   reflect.ValueOf(frame.Int64),
		"Float64": reflect.ValueOf(frame.Float64),
		"Bool":    reflect.ValueOf(frame.Bool),
		"String":  reflect.ValueOf(frame.String),
		"Object":  reflect.ValueOf(frame.Object),

		"KindValue":  reflect.ValueOf(frame.KindValue),
		"KindTable":  reflect.ValueOf(frame.KindTable),
		"KindSeries": reflect.ValueOf(frame.KindSeries),
		"KindIndex":  reflect.ValueOf(frame.KindIndex),
	},
	chart.ImportPath + "/chart": {
		"ImportPath":    reflect.ValueOf(chart.ImportPath),
		"DefaultWidth":  reflect.ValueOf(float64(chart.DefaultWidth)),
		"DefaultHeight": reflect.ValueOf(float64(chart.DefaultHeight)),

		"Figure": reflect.ValueOf((*chart.Figure)(nil)),

		"NewFigure": reflect.ValueOf(chart.NewFigure),
		"Current":   reflect.ValueOf(chart.Current),
		"Close":     reflect.ValueOf(chart.Close),
	},
}
