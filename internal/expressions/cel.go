package expressions

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/rendis/typeview/pkg/schema"
)

// CELEngine implements the Engine interface using Google's Common Expression Language.
// Thread-safe: compiled programs are cached and reused across goroutines.
type CELEngine struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// celVariables lists the top-level variables of the renderer environment.
var celVariables = []string{"stage", "total_stages", "slide", "vars", "now"}

// NewCELEngine creates a new CEL expression engine with a sandboxed environment.
// The environment exposes the renderer data:
//   - stage, total_stages: int
//   - slide: map(string, dyn) with title, header and footer
//   - vars:  map(string, dyn) deck variables
//   - now:   string, RFC3339 timestamp
func NewCELEngine() (*CELEngine, error) {
	mapType := cel.MapType(cel.StringType, cel.DynType)

	env, err := cel.NewEnv(
		cel.Variable("stage", cel.IntType),
		cel.Variable("total_stages", cel.IntType),
		cel.Variable("slide", mapType),
		cel.Variable("vars", mapType),
		cel.Variable("now", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &CELEngine{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return "cel"
}

// Compile type-checks and caches expression.
func (e *CELEngine) Compile(expression string) error {
	if expression == "" {
		return schema.NewError(schema.ErrCodeValidation, "empty CEL expression")
	}
	_, err := e.getOrCompile(expression)
	return err
}

// Evaluate compiles (or retrieves from cache) a CEL expression and evaluates it
// against the provided data. Lists and maps are returned as native Go values.
func (e *CELEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty CEL expression")
	}

	prg, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.ContextEval(ctx, buildActivation(data))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeExecution,
			"CEL evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	return nativeValue(out)
}

// getOrCompile returns a cached compiled program or compiles and caches a new one.
func (e *CELEngine) getOrCompile(expression string) (cel.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring write lock.
	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL compile error in %q: %s", expression, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": expression})
	}

	prg, err := e.env.Program(ast, cel.InterruptCheckFrequency(100))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL program error for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = prg
	return prg, nil
}

// buildActivation creates the evaluation activation map from the data.
// Missing keys get zero values to prevent CEL runtime errors.
func buildActivation(data map[string]any) map[string]any {
	activation := make(map[string]any, len(celVariables))

	for _, key := range celVariables {
		if v, ok := data[key]; ok && v != nil {
			activation[key] = v
			continue
		}
		switch key {
		case "stage", "total_stages":
			activation[key] = 0
		case "now":
			activation[key] = ""
		default:
			activation[key] = map[string]any{}
		}
	}

	return activation
}

var (
	anySliceType = reflect.TypeOf([]any{})
	anyMapType   = reflect.TypeOf(map[string]any{})
)

// nativeValue converts CEL aggregates into plain Go slices and maps.
func nativeValue(v ref.Val) (any, error) {
	switch v.(type) {
	case traits.Lister:
		return v.ConvertToNative(anySliceType)
	case traits.Mapper:
		return v.ConvertToNative(anyMapType)
	}
	return v.Value(), nil
}

var _ Engine = (*CELEngine)(nil)
