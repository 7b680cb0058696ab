// Package presenter paints slides on a terminal and turns key presses and
// auto-advance ticks into navigation.
package presenter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rendis/typeview/internal/engine"
	"github.com/rendis/typeview/internal/logging"
	"github.com/rendis/typeview/internal/scheduler"
	"github.com/rendis/typeview/internal/terminal"
	"github.com/rendis/typeview/internal/theme"
	"github.com/rendis/typeview/pkg/schema"
)

// Terminal is the I/O surface a presentation is painted on.
type Terminal interface {
	IsInteractive() bool
	ClearScreen() error
	WriteLine(s string) error
	SetRawMode(enabled bool) error
	// Keys starts the single key subscription. stop ends it.
	Keys(ctx context.Context) (keys <-chan terminal.Key, stop func(), err error)
}

const (
	noticeLastSlide  = "(Last slide)"
	noticeFirstSlide = "(First slide)"
	controlsHint     = "←/p prev · →/n/space next · q quit"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionNext
	actionPrev
)

// Presenter runs one presentation over a navigator.
type Presenter struct {
	nav    *engine.Navigator
	term   Terminal
	opts   Options
	theme  theme.Theme
	logger *slog.Logger

	notice string
}

// New creates a Presenter. A nil logger discards records.
func New(nav *engine.Navigator, term Terminal, opts Options, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Presenter{
		nav:    nav,
		term:   term,
		opts:   opts,
		theme:  opts.resolvedTheme(),
		logger: logger,
	}
}

// Interactive reports whether Run will take keyboard input.
func (p *Presenter) Interactive() bool {
	return p.opts.KeyboardNavigation && p.term.IsInteractive()
}

// Run presents the deck until the user quits, input ends, ctx is done or,
// without keyboard input, every frame has been written. A navigator can be
// driven by one presenter at a time.
func (p *Presenter) Run(ctx context.Context) error {
	if p.nav.Running() {
		return schema.NewError(schema.ErrCodeConflict, "presentation is already running")
	}
	ctx = logging.WithSession(ctx, logging.NewSessionID())
	if err := p.nav.Start(); err != nil {
		return err
	}
	defer p.nav.Stop()

	interactive := p.Interactive()
	p.logger.InfoContext(ctx, "presentation started",
		slog.String("event", schema.EventPresentationStarted),
		slog.Int("slides", p.nav.Len()),
		slog.Bool("interactive", interactive),
	)
	defer p.logger.InfoContext(ctx, "presentation stopped",
		slog.String("event", schema.EventPresentationStopped))

	if !interactive {
		return p.runAutoPlay(ctx)
	}
	return p.runInteractive(ctx)
}

func (p *Presenter) runAutoPlay(ctx context.Context) error {
	first := true
	return engine.AutoPlay(ctx, p.nav, p.opts.NonInteractiveStages, func(ctx context.Context, t engine.Target) error {
		ctx = logging.WithPosition(ctx, t.SlideIndex, t.StageIndex)
		body, err := t.Render(ctx)
		if err != nil {
			p.logger.ErrorContext(ctx, "render failed",
				slog.String("event", schema.EventRenderFailed),
				slog.String("error", err.Error()))
			return err
		}
		if !first {
			if err := p.term.WriteLine(""); err != nil {
				return err
			}
		}
		first = false
		return p.writeFrame(ctx, p.compose(t, body, false))
	})
}

func (p *Presenter) runInteractive(ctx context.Context) (err error) {
	if err := p.term.SetRawMode(true); err != nil {
		return err
	}
	defer func() {
		if rerr := p.term.SetRawMode(false); rerr != nil {
			p.logger.ErrorContext(ctx, "cannot restore terminal", slog.String("error", rerr.Error()))
			err = errors.Join(err, rerr)
		}
	}()

	keys, stop, err := p.term.Keys(ctx)
	if err != nil {
		return err
	}
	defer stop()

	var ticks <-chan time.Time
	var advancer *scheduler.AutoAdvancer
	if p.opts.AutoAdvance != "" {
		advancer, err = scheduler.NewAutoAdvancer(p.opts.AutoAdvance, p.logger)
		if err != nil {
			return err
		}
		if ticks, err = advancer.Start(ctx); err != nil {
			return err
		}
		defer advancer.Stop()
	}

	if err := p.paint(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			act := keyAction(k)
			if act == actionNone {
				continue
			}
			if act == actionQuit {
				return nil
			}
			if p.navigate(ctx, act) {
				return nil
			}
			if advancer != nil {
				advancer.Reset()
			}
		case _, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			if p.navigate(ctx, actionNext) {
				return nil
			}
		}
		if err := p.paint(ctx); err != nil {
			return err
		}
	}
}

// navigate applies a move and reports whether the presentation should end.
func (p *Presenter) navigate(ctx context.Context, act action) bool {
	from := p.nav.Current().Position()

	switch act {
	case actionNext:
		if p.nav.Advance() {
			p.logMove(ctx, from, true)
			return false
		}
		if p.opts.ExitOnLastSlide {
			return true
		}
		p.notice = noticeLastSlide
	case actionPrev:
		if p.nav.Retreat() {
			p.logMove(ctx, from, false)
			return false
		}
		p.notice = noticeFirstSlide
	}

	p.logger.DebugContext(ctx, "navigation boundary",
		slog.String("event", schema.EventBoundaryHit),
		slog.String("notice", p.notice))
	return false
}

func (p *Presenter) logMove(ctx context.Context, from engine.Position, forward bool) {
	to := p.nav.Current().Position()
	event := schema.EventStageRetreated
	switch {
	case forward && from.Slide == to.Slide:
		event = schema.EventStageAdvanced
	case forward:
		event = schema.EventSlideAdvanced
	case from.Slide != to.Slide:
		event = schema.EventSlideRetreated
	}
	ctx = logging.WithPosition(ctx, to.Slide, to.Stage)
	p.logger.DebugContext(ctx, "navigated",
		slog.String("event", event),
		slog.Int("from_slide", from.Slide),
		slog.Int("from_stage", from.Stage))
}

// paint renders the current target as one interactive frame. A render
// failure is logged and shown as a notice; the presentation goes on.
func (p *Presenter) paint(ctx context.Context) error {
	t := p.nav.Current()
	ctx = logging.WithPosition(ctx, t.SlideIndex, t.StageIndex)

	body, err := t.Render(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "render failed",
			slog.String("event", schema.EventRenderFailed),
			slog.String("error", err.Error()))
		p.notice = "Render error: " + renderMessage(err)
		body = ""
	}

	f := p.compose(t, body, true)
	p.notice = ""

	if p.opts.ClearOnRender {
		if err := p.term.ClearScreen(); err != nil {
			return err
		}
	}
	return p.writeFrame(ctx, f)
}

func (p *Presenter) writeFrame(ctx context.Context, f frame) error {
	for _, line := range f.lines(p.theme) {
		if err := p.term.WriteLine(line); err != nil {
			return err
		}
	}
	p.logger.DebugContext(ctx, "frame rendered", slog.String("event", schema.EventFrameRendered))
	return nil
}

func keyAction(k terminal.Key) action {
	if k.Code == terminal.KeyCtrlC {
		return actionQuit
	}
	if k.Alt {
		return actionNone
	}
	switch k.Code {
	case terminal.KeySpace, terminal.KeyRight, terminal.KeyPageDown:
		return actionNext
	case terminal.KeyLeft, terminal.KeyPageUp:
		return actionPrev
	case terminal.KeyRune:
		switch k.Rune {
		case 'q', 'Q':
			return actionQuit
		case 'n':
			return actionNext
		case 'p':
			return actionPrev
		}
	}
	return actionNone
}

func renderMessage(err error) string {
	var te *schema.TypeviewError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
