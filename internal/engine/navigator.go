package engine

import (
	"context"
	"sync"

	"github.com/rendis/typeview/internal/slide"
	"github.com/rendis/typeview/pkg/schema"
)

// Position identifies a (slide, stage) pair.
type Position struct {
	Slide int `json:"slide"`
	Stage int `json:"stage"`
}

// Target is what the presentation driver paints.
type Target struct {
	SlideIndex int
	StageIndex int
	Slide      *slide.Slide
}

// Position returns the (slide, stage) pair of the target.
func (t Target) Position() Position {
	return Position{Slide: t.SlideIndex, Stage: t.StageIndex}
}

// Render computes the body text of the target.
func (t Target) Render(ctx context.Context) (string, error) {
	if t.Slide == nil {
		return "", schema.NewError(schema.ErrCodeNoContent, "no slide to render")
	}
	return t.Slide.RenderStage(ctx, t.StageIndex)
}

// TransitionHook is called after the navigator moves.
type TransitionHook func(from, to Position)

// Navigator tracks the current slide and, for every slide, the stage it was
// last left at. Indices are always kept within bounds.
type Navigator struct {
	mu      sync.Mutex
	slides  []*slide.Slide
	stages  map[int]int // slide position -> current stage
	current int
	running bool
	hooks   []TransitionHook
}

// NewNavigator creates an empty Navigator.
func NewNavigator() *Navigator {
	return &Navigator{stages: make(map[int]int)}
}

// AddSlide appends a slide with its stage index at 0. Slides cannot be added
// while the presentation is running.
func (n *Navigator) AddSlide(s *slide.Slide) error {
	if s == nil {
		return schema.NewError(schema.ErrCodeInvalidArgument, "slide is nil")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return schema.NewError(schema.ErrCodeConflict, "cannot add slides while the presentation is running").
			WithSlide(s.Title())
	}
	n.stages[len(n.slides)] = 0
	n.slides = append(n.slides, s)
	return nil
}

// Add constructs a slide from opts and appends it.
func (n *Navigator) Add(opts slide.Options) (*slide.Slide, error) {
	s, err := slide.New(opts)
	if err != nil {
		return nil, err
	}
	if err := n.AddSlide(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of slides.
func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.slides)
}

// Slides returns a copy of the slide sequence.
func (n *Navigator) Slides() []*slide.Slide {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*slide.Slide(nil), n.slides...)
}

// Start marks the presentation as running. It fails with NO_CONTENT when no
// slides were added. Starting an already running navigator is a no-op.
func (n *Navigator) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.slides) == 0 {
		return schema.NewError(schema.ErrCodeNoContent, "presentation has no slides")
	}
	n.running = true
	return nil
}

// Stop marks the presentation as stopped. It is idempotent.
func (n *Navigator) Stop() {
	n.mu.Lock()
	n.running = false
	n.mu.Unlock()
}

// Running reports whether Start succeeded and Stop was not called since.
func (n *Navigator) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// OnTransition registers a hook called after every move.
func (n *Navigator) OnTransition(hook TransitionHook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks = append(n.hooks, hook)
}

// Advance moves one stage forward, or to the next slide when the current one
// is on its last stage. It reports false at the final stage of the final
// slide and when the navigator is not running.
func (n *Navigator) Advance() bool {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return false
	}

	from := n.position()
	cur := n.stages[n.current]
	last := n.slides[n.current].StageCount() - 1

	switch {
	case cur < last:
		n.stages[n.current] = cur + 1
	case n.current < len(n.slides)-1:
		n.current++
	default:
		n.mu.Unlock()
		return false
	}

	to := n.position()
	hooks := n.hooks
	n.mu.Unlock()

	n.fire(hooks, from, to)
	return true
}

// Retreat moves one stage back, or to the previous slide at whatever stage it
// was last left at. It reports false at the first stage of the first slide
// and when the navigator is not running.
func (n *Navigator) Retreat() bool {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return false
	}

	from := n.position()
	cur := n.stages[n.current]

	switch {
	case cur > 0:
		n.stages[n.current] = cur - 1
	case n.current > 0:
		n.current--
	default:
		n.mu.Unlock()
		return false
	}

	to := n.position()
	hooks := n.hooks
	n.mu.Unlock()

	n.fire(hooks, from, to)
	return true
}

// Current returns the render target at the current position. The zero Target
// is returned when no slides were added.
func (n *Navigator) Current() Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target()
}

// Seek positions the navigator directly, clamping both indices. Transition
// hooks are not fired.
func (n *Navigator) Seek(slideIdx, stage int) Target {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.slides) == 0 {
		return Target{}
	}
	n.current = clamp(slideIdx, 0, len(n.slides)-1)
	n.stages[n.current] = clamp(stage, 0, n.slides[n.current].StageCount()-1)
	return n.target()
}

// target must be called with mu held.
func (n *Navigator) target() Target {
	if len(n.slides) == 0 {
		return Target{}
	}
	return Target{
		SlideIndex: n.current,
		StageIndex: n.stages[n.current],
		Slide:      n.slides[n.current],
	}
}

// position must be called with mu held.
func (n *Navigator) position() Position {
	return Position{Slide: n.current, Stage: n.stages[n.current]}
}

func (n *Navigator) fire(hooks []TransitionHook, from, to Position) {
	for _, hook := range hooks {
		hook(from, to)
	}
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
