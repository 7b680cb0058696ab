package validation

import (
	"strconv"
	"strings"

	"github.com/rendis/typeview/pkg/schema"
)

// DeckValidator orchestrates the two-stage validation pipeline:
// 1. Structural (JSON Schema)
// 2. Semantic (expressions, schedules, ignored or missing content)
type DeckValidator struct {
	jsonSchema *JSONSchemaValidator
	exprs      ExpressionCompiler
	schedules  ScheduleParser
}

// NewDeckValidator creates a DeckValidator. exprs and schedules may be nil to
// skip the corresponding checks.
func NewDeckValidator(exprs ExpressionCompiler, schedules ScheduleParser) (*DeckValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &DeckValidator{
		jsonSchema: jsv,
		exprs:      exprs,
		schedules:  schedules,
	}, nil
}

// Validate runs the full pipeline and returns an aggregated result.
// Structural errors short-circuit: the semantic stage is skipped.
func (dv *DeckValidator) Validate(def *schema.DeckDefinition) *schema.ValidationResult {
	if def == nil {
		r := &schema.ValidationResult{}
		r.AddError("", schema.ErrCodeValidation, "deck definition is nil")
		return r
	}

	result := structuralResult(dv.jsonSchema.ValidateDefinition(def), slideTitles(def))
	if !result.Valid() {
		return result
	}

	result.Merge(dv.ValidateSemantic(def))
	return result
}

// ValidateRaw runs the structural stage over a raw decoded document.
func (dv *DeckValidator) ValidateRaw(doc any) *schema.ValidationResult {
	return structuralResult(dv.jsonSchema.ValidateDocument(doc), rawSlideTitles(doc))
}

// ValidateSemantic runs only the semantic stage. Callers are expected to have
// checked the same deck with ValidateRaw.
func (dv *DeckValidator) ValidateSemantic(def *schema.DeckDefinition) *schema.ValidationResult {
	return validateSemantic(def, dv.exprs, dv.schedules)
}

// ValidateDefinition satisfies the Validator interface.
func (dv *DeckValidator) ValidateDefinition(def *schema.DeckDefinition) error {
	return dv.Validate(def).ToError()
}

// ValidateDocument satisfies the Validator interface.
func (dv *DeckValidator) ValidateDocument(doc any) error {
	return dv.ValidateRaw(doc).ToError()
}

// structuralResult converts the JSON Schema validator's error output into a
// ValidationResult with one issue per violation. Violations under
// /slides/<n> are attached to that slide.
func structuralResult(err error, titles []string) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if err == nil {
		return result
	}

	te, ok := err.(*schema.TypeviewError)
	if !ok {
		result.AddError("", schema.ErrCodeValidation, err.Error())
		return result
	}

	violations, _ := te.Details["violations"].([]string)
	if len(violations) == 0 {
		result.AddError("", schema.ErrCodeValidation, te.Message)
		return result
	}

	for _, v := range violations {
		pointer, msg, found := strings.Cut(v, ": ")
		if !found {
			result.AddError("", schema.ErrCodeValidation, v)
			continue
		}
		path := pointerToPath(pointer)
		if idx, ok := slideIndex(pointer); ok {
			title := ""
			if idx < len(titles) {
				title = titles[idx]
			}
			result.Slide(idx, title).AddError(path, schema.ErrCodeValidation, msg)
			continue
		}
		result.AddError(path, schema.ErrCodeValidation, msg)
	}
	return result
}

// pointerToPath turns a JSON pointer such as /slides/2/stages/0/mode into the
// deck path slides[2].stages[0].mode.
func pointerToPath(pointer string) string {
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// slideIndex extracts n from a pointer under /slides/<n>.
func slideIndex(pointer string) (int, bool) {
	rest, ok := strings.CutPrefix(pointer, "/slides/")
	if !ok {
		return 0, false
	}
	seg, _, _ := strings.Cut(rest, "/")
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func slideTitles(def *schema.DeckDefinition) []string {
	titles := make([]string, len(def.Slides))
	for i, s := range def.Slides {
		titles[i] = s.Title
	}
	return titles
}

// rawSlideTitles reads slide titles from an undecoded document. Entries that
// are not objects with a string title yield "".
func rawSlideTitles(doc any) []string {
	m, _ := doc.(map[string]any)
	slides, _ := m["slides"].([]any)
	titles := make([]string, len(slides))
	for i, s := range slides {
		sm, _ := s.(map[string]any)
		titles[i], _ = sm["title"].(string)
	}
	return titles
}
