package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationResult_EmptyIsValid(t *testing.T) {
	r := &ValidationResult{}
	assert.True(t, r.Valid())
	assert.NoError(t, r.ToError())
}

func TestValidationResult_AddError(t *testing.T) {
	r := &ValidationResult{}
	r.AddError("slides[0].render.engine", ErrCodeValidation, "unknown engine")

	assert.False(t, r.Valid())
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "slides[0].render.engine", r.Errors[0].Path)
	assert.Equal(t, ErrCodeValidation, r.Errors[0].Code)
	assert.Equal(t, "unknown engine", r.Errors[0].Message)
	assert.Equal(t, SeverityError, r.Errors[0].Severity)
}

func TestValidationResult_AddWarning(t *testing.T) {
	r := &ValidationResult{}
	r.AddWarning("slides[1].stages[0]", ErrCodeValidation, "render wins over content")

	assert.True(t, r.Valid(), "warnings alone should not make result invalid")
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, SeverityWarning, r.Warnings[0].Severity)
}

func TestValidationResult_Merge(t *testing.T) {
	r1 := &ValidationResult{}
	r1.AddError("/", ErrCodeValidation, "err1")
	r1.AddWarning("/", ErrCodeValidation, "warn1")

	r2 := &ValidationResult{}
	r2.AddError("slides[0]", ErrCodeInvalidArgument, "err2")
	r2.AddWarning("slides[1]", ErrCodeValidation, "warn2")

	r1.Merge(r2)
	r1.Merge(nil)

	assert.Len(t, r1.Errors, 2)
	assert.Len(t, r1.Warnings, 2)
}

func TestValidationResult_ToError(t *testing.T) {
	t.Run("single error keeps its message", func(t *testing.T) {
		r := &ValidationResult{}
		r.AddError("slides[0].title", ErrCodeValidation, "title is required")

		err := r.ToError()
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrCodeValidation))
		assert.Contains(t, err.Error(), "title is required")
	})

	t.Run("multiple errors are summarized", func(t *testing.T) {
		r := &ValidationResult{}
		r.AddError("a", ErrCodeValidation, "one")
		r.AddError("b", ErrCodeValidation, "two")
		r.AddWarning("c", ErrCodeValidation, "three")

		err := r.ToError()
		require.Error(t, err)
		te, ok := err.(*TypeviewError)
		require.True(t, ok)
		assert.Equal(t, "deck has 2 errors", te.Message)
		assert.Equal(t, 2, te.Details["error_count"])
		assert.Equal(t, 1, te.Details["warning_count"])
	})
}

func TestValidationResult_SlideIssues(t *testing.T) {
	r := &ValidationResult{}
	r.AddError("", ErrCodeValidation, "deck is empty")
	intro := r.Slide(2, "Intro")
	intro.AddError("slides[2].stages[0].mode", ErrCodeInvalidArgument, "unknown stage mode \"merge\"")
	intro.AddWarning("slides[2].render", ErrCodeValidation, "render ignored")
	r.Slide(0, "").AddError("slides[0].title", ErrCodeInvalidArgument, "slide title is required")
	r.Slide(2, "Intro").AddError("slides[2].render", ErrCodeValidation, "bad expression")

	require.Len(t, r.Errors, 4)
	assert.Nil(t, r.Errors[0].Slide)
	require.NotNil(t, r.Errors[1].Slide)
	assert.Equal(t, SlideRef{Index: 2, Title: "Intro"}, *r.Errors[1].Slide)
	assert.Equal(t, []int{0, 2}, r.FailingSlides())

	assert.Equal(t, "(deck): deck is empty [VALIDATION_ERROR]", r.Errors[0].String())
	assert.Equal(t, `slides[2].stages[0].mode (slide 3 "Intro"): unknown stage mode "merge" [INVALID_ARGUMENT]`, r.Errors[1].String())
	assert.Equal(t, "slides[0].title (slide 1)", r.Errors[2].Location())
	assert.Equal(t, `slides[2].render (slide 3 "Intro")`, r.Warnings[0].Location())
}

func TestValidationResult_ToErrorNamesSlide(t *testing.T) {
	r := &ValidationResult{}
	r.Slide(1, "Agenda").AddError("slides[1].render", ErrCodeValidation, "bad expression")

	err := r.ToError()
	var te *TypeviewError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Agenda", te.Slide)
	assert.Equal(t, []int{1}, te.Details["slides"])
	assert.Equal(t, `[VALIDATION_ERROR] slide "Agenda": bad expression`, err.Error())
}
