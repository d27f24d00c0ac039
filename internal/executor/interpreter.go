package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// EntryPoint is the function every generated program must define.
const EntryPoint = "process"

// ResultName is the scope variable holding the value returned by EntryPoint.
const ResultName = "_result_"

var (
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	packagePattern = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Scope is the namespace of one program run: the positional arguments going
// in and the named values coming out.
type Scope struct {
	Args []any
	Vars map[string]any
}

// NewScope returns a fresh scope for args.
func NewScope(args ...any) *Scope {
	return &Scope{Args: args, Vars: make(map[string]any)}
}

// Result returns the value bound by the last run, if any.
func (s *Scope) Result() (any, bool) {
	v, ok := s.Vars[ResultName]
	return v, ok
}

// Interpreter runs Go source in-process with a new yaegi interpreter per call.
// It offers no isolation: programs share the process, its memory and its
// filesystem.
type Interpreter struct {
	Stdout io.Writer
	Stderr io.Writer
	// Symbols added on top of the standard library and frame/chart exports.
	Extra map[string]map[string]reflect.Value
}

// NewInterpreter returns an interpreter writing program output to stdout.
func NewInterpreter() *Interpreter {
	return &Interpreter{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run defines source, calls its process function with args, and returns the
// result.
func (in *Interpreter) Run(ctx context.Context, source string, args []any) (any, error) {
	scope := NewScope(args...)
	if err := in.RunScope(ctx, source, scope); err != nil {
		return nil, err
	}
	v, _ := scope.Result()
	return v, nil
}

// RunScope is Run over an explicit scope; on success the result is bound
// under ResultName.
func (in *Interpreter) RunScope(ctx context.Context, source string, scope *Scope) (err error) {
	i, err := in.newInterp()
	if err != nil {
		return err
	}

	if _, err := i.EvalWithContext(ctx, source); err != nil {
		return fmt.Errorf("failed to define program: %w", err)
	}

	fnValue, err := i.Eval(entryPointName(source))
	if err != nil {
		return fmt.Errorf("program does not define %s: %w", EntryPoint, err)
	}
	if fnValue.Kind() != reflect.Func {
		return fmt.Errorf("%s is a %s, not a function", EntryPoint, fnValue.Kind())
	}

	argsIn, err := convertArgs(fnValue.Type(), scope.Args)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", EntryPoint, r)
		}
	}()

	out := fnValue.Call(argsIn)
	result, err := collectResult(out)
	if err != nil {
		return err
	}
	if scope.Vars == nil {
		scope.Vars = make(map[string]any)
	}
	scope.Vars[ResultName] = result
	return nil
}

func (in *Interpreter) newInterp() (*interp.Interpreter, error) {
	opts := interp.Options{Stdout: in.Stdout, Stderr: in.Stderr}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	i := interp.New(opts)
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load standard library symbols: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("failed to load frame symbols: %w", err)
	}
	if len(in.Extra) > 0 {
		if err := i.Use(in.Extra); err != nil {
			return nil, fmt.Errorf("failed to load extra symbols: %w", err)
		}
	}
	return i, nil
}

// entryPointName qualifies process with the program's package when it
// declares one other than main.
func entryPointName(source string) string {
	m := packagePattern.FindStringSubmatch(source)
	if m == nil || m[1] == "main" {
		return EntryPoint
	}
	return m[1] + "." + EntryPoint
}

func convertArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	n := fnType.NumIn()
	if fnType.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%s takes at least %d arguments, got %d", EntryPoint, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", EntryPoint, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if fnType.IsVariadic() && i >= n-1 {
			want = fnType.In(n - 1).Elem()
		} else {
			want = fnType.In(i)
		}
		v, err := convertArg(arg, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertArg(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot pass nil as %s", want)
	}
	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(want):
		return v, nil
	case v.Type().ConvertibleTo(want) && convertibleKinds(v.Kind(), want.Kind()):
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), want)
}

// convertibleKinds limits conversion to numeric widening and same-kind
// conversions, so an int is never turned into a string.
func convertibleKinds(from, to reflect.Kind) bool {
	if from == to {
		return true
	}
	return isNumberKind(from) && isNumberKind(to)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// collectResult maps the return values of process onto a single result.
// A trailing non-nil error fails the run.
func collectResult(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, fmt.Errorf("%s returned an error: %w", EntryPoint, out[n-1].Interface().(error))
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return valueOf(out[0]), nil
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = valueOf(v)
		}
		return values, nil
	}
}

func valueOf(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}
	return v.Interface()
}
