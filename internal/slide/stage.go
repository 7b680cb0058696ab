package slide

import (
	"context"
	"strings"

	"github.com/rendis/typeview/pkg/schema"
)

// RenderContext is handed to stage renderers. Every renderer invoked during a
// single RenderStage call sees the same Stage: the resolved target index, even
// when it is computing the contribution of an earlier stage.
type RenderContext struct {
	Stage       int
	TotalStages int
	Slide       *Slide
}

// StageRenderer computes a stage's contribution at render time. It may block.
type StageRenderer func(ctx context.Context, rc RenderContext) (schema.Content, error)

// Renderer computes the whole body of a slide that declares no stages.
type Renderer func(ctx context.Context) (string, error)

// Stage is one incremental reveal step. Render takes precedence over Content.
type Stage struct {
	Content schema.Content
	Render  StageRenderer
	Mode    schema.StageMode
}

// body is the rendering source of a slide, fixed at construction.
type body interface {
	stageCount() int
	render(ctx context.Context, s *Slide, stage int) (string, error)
}

// staticBody renders slides without stages: the legacy renderer when present,
// the base content otherwise.
type staticBody struct {
	renderer Renderer
}

func (b staticBody) stageCount() int { return 1 }

func (b staticBody) render(ctx context.Context, s *Slide, _ int) (string, error) {
	if b.renderer == nil {
		return s.content.String(), nil
	}
	out, err := b.renderer(ctx)
	if err != nil {
		return "", schema.NewErrorf(schema.ErrCodeRender, "slide renderer failed: %s", err.Error()).
			WithSlide(s.title).
			WithCause(err)
	}
	return out, nil
}

// stagedBody renders slides with at least one stage.
type stagedBody struct {
	stages []Stage
}

func (b stagedBody) stageCount() int { return len(b.stages) }

func (b stagedBody) render(ctx context.Context, s *Slide, stage int) (string, error) {
	target := clamp(stage, 0, len(b.stages)-1)
	rc := RenderContext{Stage: target, TotalStages: len(b.stages), Slide: s}

	lines := NormalizeToLines(s.content)

	from := target
	if b.stages[target].Mode.OrDefault() == schema.StageModeAccumulate {
		from = 0
	}
	for i := from; i <= target; i++ {
		part, err := b.contribution(ctx, s, i, rc)
		if err != nil {
			return "", err
		}
		lines = append(lines, part...)
	}
	return strings.Join(lines, "\n"), nil
}

// contribution realizes the lines a single stage adds. Nothing is cached:
// renderers run again on every call.
func (b stagedBody) contribution(ctx context.Context, s *Slide, idx int, rc RenderContext) ([]string, error) {
	st := b.stages[idx]
	if st.Render == nil {
		return NormalizeToLines(st.Content), nil
	}
	out, err := st.Render(ctx, rc)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeRender, "stage %d renderer failed: %s", idx, err.Error()).
			WithSlide(s.title).
			WithCause(err).
			WithDetails(map[string]any{"stage": idx, "target_stage": rc.Stage})
	}
	return NormalizeToLines(out), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
