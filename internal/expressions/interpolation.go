package expressions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rendis/typeview/pkg/schema"
)

// Interpolator resolves ${{...}} references in static deck text. Each
// reference is an expression evaluated against the namespaces given to
// Resolve (typically `vars` and `deck`).
type Interpolator struct {
	engine Engine
}

// NewInterpolator creates an Interpolator. A nil engine selects the expr engine.
func NewInterpolator(engine Engine) *Interpolator {
	if engine == nil {
		engine = NewExprEngine()
	}
	return &Interpolator{engine: engine}
}

// Resolve replaces every ${{ expression }} in input with its value.
// Unclosed, nested and empty references are errors, as is a reference that
// names an unknown namespace or evaluates to nil.
func (interp *Interpolator) Resolve(ctx context.Context, input string, scope map[string]any) (string, error) {
	if !HasInterpolation(input) {
		return input, nil
	}

	var result strings.Builder
	result.Grow(len(input))

	i := 0
	for i < len(input) {
		// Look for ${{ marker.
		idx := strings.Index(input[i:], "${{")
		if idx == -1 {
			result.WriteString(input[i:])
			break
		}

		// Write everything before the marker.
		result.WriteString(input[i : i+idx])
		start := i + idx + 3 // skip "${{".

		// Find the closing }}.
		end := strings.Index(input[start:], "}}")
		if end == -1 {
			return "", schema.NewError(schema.ErrCodeInterpolation, "unclosed ${{ expression")
		}
		end += start

		expr := strings.TrimSpace(input[start:end])

		// Reject recursive interpolation: no nested ${{ inside the expression.
		if strings.Contains(expr, "${{") {
			return "", schema.NewError(schema.ErrCodeInterpolation,
				"nested interpolation not allowed: ${{...}} cannot contain ${{")
		}

		if expr == "" {
			return "", schema.NewError(schema.ErrCodeInterpolation, "empty variable reference: ${{  }}")
		}

		val, err := interp.resolveExpr(ctx, expr, scope)
		if err != nil {
			return "", err
		}
		result.WriteString(marshalInline(val))

		i = end + 2 // skip "}}".
	}

	return result.String(), nil
}

// ResolveContent resolves every block of c.
func (interp *Interpolator) ResolveContent(ctx context.Context, c schema.Content, scope map[string]any) (schema.Content, error) {
	if c == nil {
		return nil, nil
	}
	out := make(schema.Content, len(c))
	for i, block := range c {
		resolved, err := interp.Resolve(ctx, block, scope)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// resolveExpr evaluates a single reference like "vars.speaker".
func (interp *Interpolator) resolveExpr(ctx context.Context, expr string, scope map[string]any) (any, error) {
	namespace := leadingIdent(expr)
	if namespace != "" && !literalIdents[namespace] {
		if _, ok := scope[namespace]; !ok && isPathLike(expr) {
			available := mapKeys(scope)
			return nil, schema.NewErrorf(schema.ErrCodeInterpolation,
				"unknown namespace %q in ${{%s}}; available: %s", namespace, expr, strings.Join(available, ", ")).
				WithDetails(map[string]any{"expression": expr, "available_namespaces": available})
		}
	}

	val, err := interp.engine.Evaluate(ctx, expr, scope)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeInterpolation,
			"cannot resolve ${{%s}}: %s", expr, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expr})
	}
	if val == nil {
		return nil, schema.NewErrorf(schema.ErrCodeInterpolation,
			"${{%s}} resolved to nothing", expr).
			WithDetails(map[string]any{"expression": expr})
	}
	return val, nil
}

var literalIdents = map[string]bool{"true": true, "false": true, "nil": true}

// leadingIdent returns the identifier an expression starts with, if any.
func leadingIdent(expr string) string {
	end := 0
	for end < len(expr) {
		c := expr[end]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (end > 0 && c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return expr[:end]
}

// isPathLike reports whether expr is a plain dotted path such as vars.a.b.
func isPathLike(expr string) bool {
	for _, seg := range strings.Split(expr, ".") {
		if seg == "" || leadingIdent(seg) != seg {
			return false
		}
	}
	return true
}

// marshalInline converts a resolved value into its inline text form.
// Complex values (maps, slices) are JSON-encoded.
func marshalInline(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// mapKeys returns sorted keys from a map[string]any.
func mapKeys(m map[string]any) []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasInterpolation checks if s contains any ${{...}} references.
func HasInterpolation(s string) bool {
	return strings.Contains(s, "${{")
}
