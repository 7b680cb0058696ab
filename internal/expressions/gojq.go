package expressions

import (
	"context"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/rendis/typeview/pkg/schema"
)

// GoJQEngine implements the Engine interface using GoJQ. The renderer data is
// the input object, so `.slide.title` and `.vars` address it.
// Thread-safe: compiled *Code objects are cached and reused across goroutines.
type GoJQEngine struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewGoJQEngine creates a new GoJQ expression engine.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{
		cache: make(map[string]*gojq.Code),
	}
}

// Name returns the engine identifier.
func (e *GoJQEngine) Name() string {
	return "jq"
}

// Compile parses, compiles and caches expression.
func (e *GoJQEngine) Compile(expression string) error {
	if expression == "" {
		return schema.NewError(schema.ErrCodeValidation, "empty jq expression")
	}
	_, err := e.getOrCompile(expression)
	return err
}

// Evaluate compiles (or retrieves from cache) a jq expression and evaluates it
// against the provided data. Integer values are normalized before the run.
//
// jq expressions can produce multiple outputs. When there is exactly one output,
// it is returned directly. When there are multiple outputs, they are collected
// into a slice and returned as []any.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	results, err := e.EvaluateAll(ctx, expression, data)
	if err != nil {
		return nil, err
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// EvaluateAll is like Evaluate but always returns a slice of all outputs,
// even if there is only one or zero results.
func (e *GoJQEngine) EvaluateAll(ctx context.Context, expression string, data map[string]any) ([]any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty jq expression")
	}

	code, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	var input any = map[string]any{}
	if data != nil {
		input = normalizeForJQ(data)
	}
	iter := code.RunWithContext(ctx, input)

	var results []any
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, schema.NewErrorf(schema.ErrCodeExecution,
				"jq evaluation failed for %q: %s", expression, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, val)
	}

	return results, nil
}

// getOrCompile returns a cached compiled code or compiles and caches a new one.
func (e *GoJQEngine) getOrCompile(expression string) (*gojq.Code, error) {
	e.mu.RLock()
	if code, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return code, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring write lock.
	if code, ok := e.cache[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	code, err := gojq.Compile(query,
		// Sandbox: return empty env to block $ENV and env access.
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = code
	return code, nil
}

// normalizeForJQ converts Go native types to the types gojq accepts.
// String slices become []any and sized integers become int.
func normalizeForJQ(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalizeForJQ(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeForJQ(v)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case int64:
		return int(val)
	case int32:
		return int(val)
	case uint64:
		return int(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

var _ Engine = (*GoJQEngine)(nil)
