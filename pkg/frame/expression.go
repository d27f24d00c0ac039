package frame

import (
	"fmt"
	"math"
	"sync"

	"github.com/Knetic/govaluate"
)

////////////////////////////////////////////////////////////////////////////////
// Row expressions for Eval and Query
////////////////////////////////////////////////////////////////////////////////

// ExpressionFunctionRegistry holds the functions callable from expressions.
type ExpressionFunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]govaluate.ExpressionFunction
}

var globalExprFuncRegistry = &ExpressionFunctionRegistry{functions: builtinFunctions()}

// RegisterExpressionFunction makes fn callable as name(...) in Eval and Query.
func RegisterExpressionFunction(name string, fn govaluate.ExpressionFunction) {
	globalExprFuncRegistry.mu.Lock()
	defer globalExprFuncRegistry.mu.Unlock()
	globalExprFuncRegistry.functions[name] = fn
}

// getWhitelistedFunctions returns a snapshot of the registered functions.
func getWhitelistedFunctions() map[string]govaluate.ExpressionFunction {
	globalExprFuncRegistry.mu.RLock()
	defer globalExprFuncRegistry.mu.RUnlock()
	whitelist := make(map[string]govaluate.ExpressionFunction, len(globalExprFuncRegistry.functions))
	for k, v := range globalExprFuncRegistry.functions {
		whitelist[k] = v
	}
	return whitelist
}

// ValidateExpression checks that expr parses with the registered functions.
func ValidateExpression(expr string) error {
	_, err := govaluate.NewEvaluableExpressionWithFunctions(expr, getWhitelistedFunctions())
	return err
}

func builtinFunctions() map[string]govaluate.ExpressionFunction {
	unary := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
			}
			x, ok := args[0].(float64)
			if !ok {
				return nil, fmt.Errorf("%s expects a number, got %T", name, args[0])
			}
			return f(x), nil
		}
	}
	return map[string]govaluate.ExpressionFunction{
		"abs":   unary("abs", math.Abs),
		"sqrt":  unary("sqrt", math.Sqrt),
		"round": unary("round", math.Round),
		"floor": unary("floor", math.Floor),
		"ceil":  unary("ceil", math.Ceil),
		"isnull": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("isnull expects 1 argument, got %d", len(args))
			}
			return args[0] == nil, nil
		},
	}
}

// Eval computes expr for every row and returns the results as a new series
// named name. Column names are the expression variables; numeric cells are
// passed as float64. The table is not modified.
func (t *Table) Eval(name, expr string) (*Series, error) {
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expr, getWhitelistedFunctions())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expr, err)
	}

	values := make([]any, t.Len())
	for i := range values {
		v, err := compiled.Evaluate(t.exprParams(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		values[i] = v
	}
	return NewSeries(name, values...), nil
}

// Query returns the rows for which expr evaluates to true.
func (t *Table) Query(expr string) (*Table, error) {
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expr, getWhitelistedFunctions())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expr, err)
	}

	var rows []int
	for i := 0; i < t.Len(); i++ {
		v, err := compiled.Evaluate(t.exprParams(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		keep, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("query %q returned %T, expected bool", expr, v)
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return t.Take(rows), nil
}

func (t *Table) exprParams(row int) map[string]interface{} {
	params := make(map[string]interface{}, len(t.columns))
	for _, c := range t.columns {
		v := c.At(row)
		if n, ok := v.(int64); ok {
			params[c.Name()] = float64(n)
			continue
		}
		params[c.Name()] = v
	}
	return params
}
