package schema

import (
	"fmt"
	"slices"
)

// ValidationSeverity tells whether an issue blocks the deck from loading.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// SlideRef identifies the slide an issue was found on. Index is 0-based.
type SlideRef struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
}

// ValidationIssue is one problem found in a deck file. Path uses the deck's
// field names, for example slides[2].stages[0].mode; an empty path is the
// deck itself.
type ValidationIssue struct {
	Path     string             `json:"path"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
	Slide    *SlideRef          `json:"slide,omitempty"`
}

// Location is the path followed by the 1-based slide number and title, as
// shown to presenters.
func (i ValidationIssue) Location() string {
	path := i.Path
	if path == "" || path == "/" {
		path = "(deck)"
	}
	switch {
	case i.Slide == nil:
		return path
	case i.Slide.Title == "":
		return fmt.Sprintf("%s (slide %d)", path, i.Slide.Index+1)
	}
	return fmt.Sprintf("%s (slide %d %q)", path, i.Slide.Index+1, i.Slide.Title)
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s [%s]", i.Location(), i.Message, i.Code)
}

// ValidationResult collects the issues of a deck. Warnings never prevent a
// deck from loading.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Valid reports whether the deck has no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// AddError records a deck-level error.
func (r *ValidationResult) AddError(path, code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityError,
	})
}

// AddWarning records a deck-level warning.
func (r *ValidationResult) AddWarning(path, code, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityWarning,
	})
}

// Slide returns a recorder that attaches its issues to one slide.
func (r *ValidationResult) Slide(index int, title string) SlideIssues {
	return SlideIssues{result: r, ref: SlideRef{Index: index, Title: title}}
}

// SlideIssues records issues belonging to a single slide.
type SlideIssues struct {
	result *ValidationResult
	ref    SlideRef
}

// AddError records an error on the slide.
func (s SlideIssues) AddError(path, code, message string) {
	ref := s.ref
	s.result.Errors = append(s.result.Errors, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityError, Slide: &ref,
	})
}

// AddWarning records a warning on the slide.
func (s SlideIssues) AddWarning(path, code, message string) {
	ref := s.ref
	s.result.Warnings = append(s.result.Warnings, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityWarning, Slide: &ref,
	})
}

// Merge appends the issues of other.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// FailingSlides returns the indices of slides with at least one error, in
// deck order and without repeats.
func (r *ValidationResult) FailingSlides() []int {
	seen := make(map[int]bool)
	var out []int
	for _, issue := range r.Errors {
		if issue.Slide == nil || seen[issue.Slide.Index] {
			continue
		}
		seen[issue.Slide.Index] = true
		out = append(out, issue.Slide.Index)
	}
	slices.Sort(out)
	return out
}

// ToError returns nil for a valid deck, otherwise a VALIDATION_ERROR. A
// single error on one slide names that slide.
func (r *ValidationResult) ToError() error {
	if r.Valid() {
		return nil
	}

	first := r.Errors[0]
	msg := first.Message
	if len(r.Errors) > 1 {
		msg = fmt.Sprintf("deck has %d errors", len(r.Errors))
	}

	details := map[string]any{
		"error_count":   len(r.Errors),
		"warning_count": len(r.Warnings),
		"errors":        r.Errors,
		"warnings":      r.Warnings,
	}
	if slides := r.FailingSlides(); len(slides) > 0 {
		details["slides"] = slides
	}

	err := NewError(ErrCodeValidation, msg).WithDetails(details)
	if len(r.Errors) == 1 && first.Slide != nil && first.Slide.Title != "" {
		err = err.WithSlide(first.Slide.Title)
	}
	return err
}
