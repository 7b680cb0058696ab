// Package deck reads presentation files and turns them into slides.
package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rendis/typeview/internal/expressions"
	"github.com/rendis/typeview/internal/slide"
	"github.com/rendis/typeview/internal/validation"
	"github.com/rendis/typeview/pkg/schema"
)

// Format is the encoding of a deck file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .json is read as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Deck is a validated deck with its slides built.
type Deck struct {
	Definition *schema.DeckDefinition
	Slides     []*slide.Slide
	Warnings   []schema.ValidationIssue
}

// Loader decodes, validates and builds decks.
type Loader struct {
	validator *validation.DeckValidator
	registry  *expressions.Registry
	interp    *expressions.Interpolator
	logger    *slog.Logger
}

// NewLoader creates a Loader. schedules may be nil to skip auto-advance checks.
func NewLoader(registry *expressions.Registry, schedules validation.ScheduleParser, logger *slog.Logger) (*Loader, error) {
	if registry == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidArgument, "expression registry is nil")
	}
	v, err := validation.NewDeckValidator(registry, schedules)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	exprEngine, err := registry.Get("expr")
	if err != nil {
		return nil, err
	}
	return &Loader{
		validator: v,
		registry:  registry,
		interp:    expressions.NewInterpolator(exprEngine),
		logger:    logger,
	}, nil
}

// Read returns the raw deck file at path. "-" reads standard input.
func Read(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "read deck %q: %s", path, err.Error()).WithCause(err)
	}
	return data, nil
}

// Load reads the deck at path. "-" reads standard input as YAML.
func (l *Loader) Load(ctx context.Context, path string) (*Deck, error) {
	data, err := Read(path)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "deck read", slog.String("path", path), slog.Int("bytes", len(data)))

	def, result, err := l.Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	d, err := l.Build(ctx, def)
	if err != nil {
		return nil, err
	}
	d.Warnings = append(result.Warnings, d.Warnings...)
	return d, nil
}

// Decode parses data, validates the raw document against the deck schema,
// unmarshals it and applies the semantic rules. The returned result carries the warnings; any
// validation error is returned as a VALIDATION_ERROR.
func (l *Loader) Decode(data []byte, format Format) (*schema.DeckDefinition, *schema.ValidationResult, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, nil, err
	}

	result := l.validator.ValidateRaw(doc)
	if !result.Valid() {
		return nil, result, result.ToError()
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "deck cannot be represented as JSON").WithCause(err)
	}
	var def schema.DeckDefinition
	if err := json.Unmarshal(normalized, &def); err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "decode deck").WithCause(err)
	}

	result.Merge(l.validator.ValidateSemantic(&def))
	if !result.Valid() {
		return nil, result, result.ToError()
	}
	return &def, result, nil
}

// Validate decodes data and returns every structural or semantic issue
// without building slides. Only malformed input is returned as an error.
func (l *Loader) Validate(data []byte, format Format) (*schema.ValidationResult, error) {
	_, result, err := l.Decode(data, format)
	if result != nil {
		return result, nil
	}
	return nil, err
}

// decodeDocument parses data into plain maps and slices.
func decodeDocument(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, schema.NewError(schema.ErrCodeNoContent, "deck file is empty")
	}

	var doc any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "invalid JSON deck: %s", err.Error()).WithCause(err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "invalid YAML deck: %s", err.Error()).WithCause(err)
		}
	}
	return doc, nil
}

// Build resolves ${{ }} references in static text and turns every slide
// definition into a slide. Render specs become expression renderers that see
// the deck vars.
func (l *Loader) Build(ctx context.Context, def *schema.DeckDefinition) (*Deck, error) {
	if def == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidArgument, "deck definition is nil")
	}
	if len(def.Slides) == 0 {
		return nil, schema.NewError(schema.ErrCodeNoContent, "deck has no slides")
	}

	resolved, err := l.interpolate(ctx, def)
	if err != nil {
		return nil, err
	}

	slides := make([]*slide.Slide, 0, len(resolved.Slides))
	for i := range resolved.Slides {
		s, err := l.buildSlide(&resolved.Slides[i], resolved)
		if err != nil {
			return nil, schema.NewErrorf(codeOf(err), "slides[%d]: %s", i, messageOf(err)).
				WithSlide(resolved.Slides[i].Title).
				WithCause(err)
		}
		slides = append(slides, s)
	}

	l.logger.InfoContext(ctx, "deck built",
		slog.String("title", resolved.Title),
		slog.Int("slides", len(slides)),
	)
	return &Deck{Definition: resolved, Slides: slides}, nil
}

func (l *Loader) buildSlide(sd *schema.SlideDefinition, def *schema.DeckDefinition) (*slide.Slide, error) {
	opts := slide.Options{
		Title:   sd.Title,
		Header:  sd.Header,
		Footer:  sd.Footer,
		Content: sd.Content,
	}

	meta := expressions.SlideMeta{
		Title:  sd.Title,
		Header: firstNonEmpty(sd.Header, def.Header),
		Footer: firstNonEmpty(sd.Footer, def.Footer),
	}

	if len(sd.Stages) == 0 && sd.Render != nil {
		render, err := l.registry.SlideRenderer(sd.Render, def.Vars, meta)
		if err != nil {
			return nil, err
		}
		opts.Render = render
	}

	for _, st := range sd.Stages {
		stage := slide.Stage{Content: st.Content, Mode: st.Mode}
		if st.Render != nil {
			render, err := l.registry.StageRenderer(st.Render, def.Vars, meta)
			if err != nil {
				return nil, err
			}
			stage.Render = render
		}
		opts.Stages = append(opts.Stages, stage)
	}

	return slide.New(opts)
}

// interpolate returns a copy of def with every static text field resolved.
func (l *Loader) interpolate(ctx context.Context, def *schema.DeckDefinition) (*schema.DeckDefinition, error) {
	out := *def
	scope := map[string]any{
		"vars": orEmpty(def.Vars),
		"deck": map[string]any{"title": def.Title, "header": def.Header, "footer": def.Footer},
	}

	var err error
	fail := func(path string, cause error) {
		err = schema.NewErrorf(schema.ErrCodeInterpolation, "%s: %s", path, messageOf(cause)).WithCause(cause)
	}
	text := func(path string, s *string) {
		if err != nil || !expressions.HasInterpolation(*s) {
			return
		}
		r, rerr := l.interp.Resolve(ctx, *s, scope)
		if rerr != nil {
			fail(path, rerr)
			return
		}
		*s = r
	}
	content := func(path string, c *schema.Content) {
		if err != nil {
			return
		}
		r, rerr := l.interp.ResolveContent(ctx, *c, scope)
		if rerr != nil {
			fail(path, rerr)
			return
		}
		*c = r
	}

	// Deck-level text resolves first so slides see the resolved values.
	text("title", &out.Title)
	text("header", &out.Header)
	text("footer", &out.Footer)
	scope["deck"] = map[string]any{"title": out.Title, "header": out.Header, "footer": out.Footer}

	out.Slides = make([]schema.SlideDefinition, len(def.Slides))
	for i, sd := range def.Slides {
		path := fmt.Sprintf("slides[%d]", i)
		sd.Stages = append([]schema.StageDefinition(nil), sd.Stages...)
		text(path+".title", &sd.Title)
		text(path+".header", &sd.Header)
		text(path+".footer", &sd.Footer)
		content(path+".content", &sd.Content)
		for j := range sd.Stages {
			content(fmt.Sprintf("%s.stages[%d].content", path, j), &sd.Stages[j].Content)
		}
		out.Slides[i] = sd
	}

	if err != nil {
		return nil, err
	}
	return &out, nil
}

// codeOf returns the error code of err, or VALIDATION_ERROR for plain errors.
func codeOf(err error) string {
	if te, ok := err.(*schema.TypeviewError); ok {
		return te.Code
	}
	return schema.ErrCodeValidation
}

// messageOf returns the message of err without its code prefix.
func messageOf(err error) string {
	if te, ok := err.(*schema.TypeviewError); ok {
		return te.Message
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
