package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/typeview/pkg/schema"
)

func TestDeckValidator_Valid(t *testing.T) {
	dv, err := NewDeckValidator(fakeCompiler{}, nil)
	require.NoError(t, err)

	r := dv.Validate(minimalDeck())
	assert.True(t, r.Valid())
	assert.NoError(t, dv.ValidateDefinition(minimalDeck()))
}

func TestDeckValidator_Nil(t *testing.T) {
	dv, err := NewDeckValidator(nil, nil)
	require.NoError(t, err)

	r := dv.Validate(nil)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0].Message, "nil")
}

func TestDeckValidator_StructuralShortCircuits(t *testing.T) {
	exprs := fakeCompiler{bad: map[string]error{"x": schema.NewError(schema.ErrCodeValidation, "bad")}}
	dv, err := NewDeckValidator(exprs, nil)
	require.NoError(t, err)

	def := &schema.DeckDefinition{Slides: []schema.SlideDefinition{
		{Title: "", Render: &schema.RenderSpec{Expression: "x"}},
	}}
	r := dv.Validate(def)
	require.False(t, r.Valid())
	for _, issue := range r.Errors {
		assert.NotEqual(t, "bad", issue.Message, "only structural issues are reported")
		require.NotNil(t, issue.Slide)
		assert.Equal(t, 0, issue.Slide.Index)
	}
}

func TestDeckValidator_SemanticAfterStructural(t *testing.T) {
	exprs := fakeCompiler{bad: map[string]error{"x": schema.NewError(schema.ErrCodeValidation, "bad")}}
	dv, err := NewDeckValidator(exprs, nil)
	require.NoError(t, err)

	def := &schema.DeckDefinition{Slides: []schema.SlideDefinition{
		{Title: "a", Render: &schema.RenderSpec{Expression: "x"}},
	}}
	err = dv.ValidateDefinition(def)
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeValidation))
	assert.Contains(t, err.Error(), "bad")
}

func TestDeckValidator_ValidateRaw(t *testing.T) {
	dv, err := NewDeckValidator(nil, nil)
	require.NoError(t, err)

	r := dv.ValidateRaw(decodeDoc(t, `{"slides": [{"title": "a", "notes": "x"}]}`))
	require.False(t, r.Valid())
	require.Len(t, r.Errors, 1)
	issue := r.Errors[0]
	assert.Equal(t, "slides[0]", issue.Path)
	assert.Contains(t, issue.Message, "notes")
	assert.NotContains(t, issue.Message, "at '")
	require.NotNil(t, issue.Slide)
	assert.Equal(t, schema.SlideRef{Index: 0, Title: "a"}, *issue.Slide)

	assert.NoError(t, dv.ValidateDocument(decodeDoc(t, `{"slides": [{"title": "a"}]}`)))
}

func TestDeckValidator_StructuralPaths(t *testing.T) {
	dv, err := NewDeckValidator(nil, nil)
	require.NoError(t, err)

	r := dv.ValidateRaw(decodeDoc(t, `{
		"slides": [{"title": "Intro"}, {"title": "Agenda", "stages": [{"mode": "merge"}]}],
		"theme": {"sidebar": {}}
	}`))
	require.Len(t, r.Errors, 2)

	byPath := map[string]schema.ValidationIssue{}
	for _, issue := range r.Errors {
		byPath[issue.Path] = issue
	}

	mode, ok := byPath["slides[1].stages[0].mode"]
	require.True(t, ok, "got %v", r.Errors)
	require.NotNil(t, mode.Slide)
	assert.Equal(t, schema.SlideRef{Index: 1, Title: "Agenda"}, *mode.Slide)

	theme, ok := byPath["theme"]
	require.True(t, ok, "got %v", r.Errors)
	assert.Nil(t, theme.Slide)
	assert.Contains(t, theme.Message, "sidebar")

	assert.Equal(t, []int{1}, r.FailingSlides())
}

func TestDeckValidator_ValidateSemanticSkipsSchema(t *testing.T) {
	dv, err := NewDeckValidator(nil, nil)
	require.NoError(t, err)

	// An empty deck violates minItems but has nothing for the semantic rules.
	def := &schema.DeckDefinition{}
	assert.True(t, dv.ValidateSemantic(def).Valid())
	assert.False(t, dv.Validate(def).Valid())
}

func TestPointerToPath(t *testing.T) {
	assert.Equal(t, "", pointerToPath("/"))
	assert.Equal(t, "theme.title", pointerToPath("/theme/title"))
	assert.Equal(t, "slides[2].stages[0].mode", pointerToPath("/slides/2/stages/0/mode"))
}
