// Package slide holds the slide model: titled units of content that may be
// revealed in stages, and the resolver that turns a (slide, stage) pair into
// body text.
package slide

import (
	"context"

	"github.com/rendis/typeview/pkg/schema"
)

// Options configures a Slide. When Stages is non-empty, Render is ignored.
type Options struct {
	Title   string
	Header  string
	Footer  string
	Content schema.Content
	Stages  []Stage
	Render  Renderer
}

// Slide is immutable after construction and safe to share.
type Slide struct {
	title   string
	header  string
	footer  string
	content schema.Content
	body    body
}

// New builds a Slide. It fails when the title is empty or a stage declares an
// unknown mode.
func New(opts Options) (*Slide, error) {
	if opts.Title == "" {
		return nil, schema.NewError(schema.ErrCodeInvalidArgument, "slide requires a title")
	}

	s := &Slide{
		title:   opts.Title,
		header:  opts.Header,
		footer:  opts.Footer,
		content: append(schema.Content(nil), opts.Content...),
	}

	if len(opts.Stages) == 0 {
		s.body = staticBody{renderer: opts.Render}
		return s, nil
	}

	stages := make([]Stage, len(opts.Stages))
	for i, st := range opts.Stages {
		if !st.Mode.Valid() {
			return nil, schema.NewErrorf(schema.ErrCodeInvalidArgument,
				"stage %d has unknown mode %q", i, st.Mode).
				WithSlide(opts.Title)
		}
		st.Content = append(schema.Content(nil), st.Content...)
		stages[i] = st
	}
	s.body = stagedBody{stages: stages}
	return s, nil
}

// Title returns the slide title.
func (s *Slide) Title() string { return s.title }

// Header returns the per-slide header override, or "".
func (s *Slide) Header() string { return s.header }

// Footer returns the per-slide footer override, or "".
func (s *Slide) Footer() string { return s.footer }

// StageCount is the number of stages, never less than one.
func (s *Slide) StageCount() int { return s.body.stageCount() }

// HasStages reports whether the slide declares any stage.
func (s *Slide) HasStages() bool {
	_, ok := s.body.(stagedBody)
	return ok
}

// RenderStage computes the body text for the given stage. Out-of-range stages
// are clamped. Renderer errors are returned as RENDER_ERROR with the original
// error as cause.
func (s *Slide) RenderStage(ctx context.Context, stage int) (string, error) {
	return s.body.render(ctx, s, stage)
}
