// Package expression evaluates the restricted expression language used by
// condition nodes, event trigger filters, and transform nodes.
//
// Expressions are compiled by expr-lang and evaluated against a plain data
// environment. The evaluator has no I/O, reflection, or host capability:
// an expression can read the data it is given and nothing else. This
// replaces the arbitrary script bodies the feature grew up with.
package expression

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/itchyny/gojq"
)

// Evaluator compiles and runs expressions, caching compiled programs.
// Safe for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

// Eval evaluates the expression against env and returns its raw result.
func (e *Evaluator) Eval(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, errors.New("empty expression")
	}

	program, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	if env == nil {
		env = map[string]any{}
	}

	out, err := vm.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", expression, err)
	}

	return out, nil
}

// EvalBool evaluates the expression and coerces the result to a boolean.
func (e *Evaluator) EvalBool(expression string, env map[string]any) (bool, error) {
	out, err := e.Eval(expression, env)
	if err != nil {
		return false, err
	}

	return Truthy(out), nil
}

func (e *Evaluator) getOrCompile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.cache[expression]
	e.mu.RUnlock()

	if ok {
		return program, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", expression, err)
	}

	e.cache[expression] = program

	return program, nil
}

// Truthy converts an evaluation result to a boolean.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}

		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}

// EvalJQ runs a jq query against the input and returns its first result.
// The input is normalized through JSON so gojq only ever sees the types it
// understands.
func EvalJQ(query string, input any) (any, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("parsing jq query %q: %w", query, err)
	}

	normalized, err := normalize(input)
	if err != nil {
		return nil, err
	}

	iter := q.Run(normalized)

	out, ok := iter.Next()
	if !ok {
		return nil, nil
	}

	if err, isErr := out.(error); isErr {
		return nil, fmt.Errorf("running jq query %q: %w", query, err)
	}

	return out, nil
}

func normalize(input any) (any, error) {
	if input == nil {
		return nil, nil
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("normalizing jq input: %w", err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalizing jq input: %w", err)
	}

	return out, nil
}
