package engine

import (
	"context"

	"github.com/rendis/typeview/pkg/schema"
)

// RenderFunc paints a single target.
type RenderFunc func(ctx context.Context, t Target) error

// AutoPlay renders the whole deck without input, in the order given by Frames.
// It positions the navigator with Seek and never calls Advance or Retreat.
// The first render error aborts the run.
func AutoPlay(ctx context.Context, nav *Navigator, policy schema.NonInteractivePolicy, render RenderFunc) error {
	frames := Frames(nav, policy)
	if len(frames) == 0 {
		return schema.NewError(schema.ErrCodeNoContent, "presentation has no slides")
	}

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return schema.NewError(schema.ErrCodeExecution, "auto-play cancelled").WithCause(err)
		}
		if err := render(ctx, nav.Seek(f.Slide, f.Stage)); err != nil {
			return err
		}
	}
	return nil
}

// Frames lists the positions auto-play visits. Slides come in order. A slide
// with stages contributes every stage under NonInteractiveAll; any other
// slide contributes only its final stage.
func Frames(nav *Navigator, policy schema.NonInteractivePolicy) []Position {
	var out []Position
	for i, s := range nav.Slides() {
		last := s.StageCount() - 1
		first := last
		if s.HasStages() && policy != schema.NonInteractiveFinal {
			first = 0
		}
		for stage := first; stage <= last; stage++ {
			out = append(out, Position{Slide: i, Stage: stage})
		}
	}
	return out
}
