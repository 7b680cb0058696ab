package expressions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rendis/typeview/internal/slide"
	"github.com/rendis/typeview/pkg/schema"
)

// DefaultEngine is used when a render spec names no engine.
const DefaultEngine = "expr"

// SlideMeta is the slide information exposed to renderers as `slide`.
type SlideMeta struct {
	Title  string
	Header string
	Footer string
}

// Registry holds the expression engines by name and adapts render specs into
// slide renderers.
type Registry struct {
	engines map[string]Engine
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source used for the `now` variable.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithEngine registers an additional engine, replacing any engine of the same name.
func WithEngine(e Engine) Option {
	return func(r *Registry) { r.engines[e.Name()] = e }
}

// NewRegistry creates a registry with the expr, cel and jq engines.
func NewRegistry(opts ...Option) (*Registry, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}

	r := &Registry{
		engines: map[string]Engine{
			"expr": NewExprEngine(),
			"cel":  celEngine,
			"jq":   NewGoJQEngine(),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the engine registered under name. The empty name selects the
// default engine.
func (r *Registry) Get(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	e, ok := r.engines[strings.ToLower(name)]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound,
			"unknown expression engine %q; available: %s", name, strings.Join(r.Names(), ", ")).
			WithDetails(map[string]any{"engine": name, "available_engines": r.Names()})
	}
	return e, nil
}

// Compile checks spec against its engine without evaluating it.
func (r *Registry) Compile(spec *schema.RenderSpec) error {
	if spec == nil {
		return schema.NewError(schema.ErrCodeInvalidArgument, "render spec is nil")
	}
	e, err := r.Get(spec.Engine)
	if err != nil {
		return err
	}
	return e.Compile(spec.Expression)
}

// StageRenderer adapts spec into a stage renderer. The expression is compiled
// up front. At render time it sees the resolved target stage; meta carries the
// header and footer after deck defaults are applied, as for SlideRenderer.
func (r *Registry) StageRenderer(spec *schema.RenderSpec, vars map[string]any, meta SlideMeta) (slide.StageRenderer, error) {
	if err := r.Compile(spec); err != nil {
		return nil, err
	}
	e, _ := r.Get(spec.Engine)
	frozen := deepCopyMap(vars)
	expression := spec.Expression

	return func(ctx context.Context, rc slide.RenderContext) (schema.Content, error) {
		out, err := e.Evaluate(ctx, expression, r.data(rc.Stage, rc.TotalStages, meta, frozen))
		if err != nil {
			return nil, err
		}
		return ToContent(out), nil
	}, nil
}

// SlideRenderer adapts spec into a renderer for a slide without stages. A
// result that is not a string renders as empty text.
func (r *Registry) SlideRenderer(spec *schema.RenderSpec, vars map[string]any, meta SlideMeta) (slide.Renderer, error) {
	if err := r.Compile(spec); err != nil {
		return nil, err
	}
	e, _ := r.Get(spec.Engine)
	frozen := deepCopyMap(vars)
	expression := spec.Expression

	return func(ctx context.Context) (string, error) {
		out, err := e.Evaluate(ctx, expression, r.data(0, 1, meta, frozen))
		if err != nil {
			return "", err
		}
		return ToText(out), nil
	}, nil
}

// data builds the variables every renderer sees.
func (r *Registry) data(stage, total int, meta SlideMeta, vars map[string]any) map[string]any {
	if vars == nil {
		vars = map[string]any{}
	}
	return map[string]any{
		"stage":        stage,
		"total_stages": total,
		"slide": map[string]any{
			"title":  meta.Title,
			"header": meta.Header,
			"footer": meta.Footer,
		},
		"vars": vars,
		"now":  r.now().Format(time.RFC3339),
	}
}

// ToContent converts an evaluation result into stage content. Strings are a
// single block, lists contribute one block per element and nil contributes
// nothing. Any other value is printed with fmt.Sprint.
func ToContent(v any) schema.Content {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return schema.Text(val)
	case []string:
		return schema.Blocks(val...)
	case []any:
		blocks := make([]string, 0, len(val))
		for _, item := range val {
			blocks = append(blocks, scalarText(item))
		}
		return schema.Blocks(blocks...)
	default:
		return schema.Text(fmt.Sprint(val))
	}
}

// ToText converts a slide renderer result into body text. Only strings count.
func ToText(v any) string {
	s, _ := v.(string)
	return s
}

func scalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = deepCopyAny(v)
	}
	return cp
}

// deepCopyAny recursively deep-copies maps and slices. Other values are
// returned as is.
func deepCopyAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, item := range val {
			cp[i] = deepCopyAny(item)
		}
		return cp
	default:
		return v
	}
}
