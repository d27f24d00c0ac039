package askframe

import (
	"reflect"

	"github.com/ZanzyTHEbar/askframe/internal/prompt"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// effectiveMutable applies a per-call override to the configured default.
func effectiveMutable(global bool, override *bool) bool {
	if override != nil {
		return *override
	}
	return global
}

// resolveData returns the argument the pipeline works on: the caller's object
// when mutable, otherwise a deep copy when the value knows how to copy itself.
func resolveData(arg prompt.Arg, mutable bool) prompt.Arg {
	if mutable {
		return arg
	}
	switch v := arg.Value.(type) {
	case *frame.Table:
		if v != nil {
			return prompt.Arg{Kind: arg.Kind, Value: v.Copy()}
		}
	case *frame.Series:
		if v != nil {
			return prompt.Arg{Kind: arg.Kind, Value: v.Copy()}
		}
	case *frame.Index:
		if v != nil {
			return prompt.Arg{Kind: arg.Kind, Value: v.Copy()}
		}
	case Copier:
		if !isNilPointer(v) {
			return prompt.Arg{Kind: arg.Kind, Value: v.Copy()}
		}
	}
	return arg
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
