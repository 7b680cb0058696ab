package expressions

import "context"

// Engine evaluates expressions that compute slide content at render time.
// Three implementations: Expr (default), CEL and GoJQ.
type Engine interface {
	Name() string
	// Compile checks the expression and caches its program without running it.
	Compile(expression string) error
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
