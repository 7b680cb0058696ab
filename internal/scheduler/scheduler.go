package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rendis/typeview/internal/logging"
	"github.com/rendis/typeview/pkg/schema"
)

// parser accepts standard 5-field cron specs and descriptors such as
// "@every 10s" or "@hourly".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse parses an auto-advance schedule. A schedule that never fires, such
// as "0 0 30 2 *", is rejected.
func Parse(spec string) (cron.Schedule, error) {
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidArgument,
			"parse auto-advance schedule %q: %s", spec, err.Error()).WithCause(err)
	}
	if schedule.Next(time.Now()).IsZero() {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidArgument,
			"auto-advance schedule %q never fires", spec)
	}
	return schedule, nil
}

// Validate reports whether spec is a valid auto-advance schedule.
func Validate(spec string) error {
	_, err := Parse(spec)
	return err
}

// AutoAdvancer emits a tick every time its cron schedule fires. The presenter
// treats each tick as a forward key.
type AutoAdvancer struct {
	spec     string
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	reset  chan struct{}
	ticks  chan time.Time
}

// NewAutoAdvancer parses spec and creates an AutoAdvancer.
func NewAutoAdvancer(spec string, logger *slog.Logger) (*AutoAdvancer, error) {
	schedule, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AutoAdvancer{
		spec:     spec,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Spec returns the schedule the advancer was created with.
func (a *AutoAdvancer) Spec() string {
	return a.spec
}

// NextAfter returns the first firing time strictly after t.
func (a *AutoAdvancer) NextAfter(t time.Time) time.Time {
	return a.schedule.Next(t)
}

// Start launches the background loop. The returned channel is closed when ctx
// is cancelled or Stop is called. A tick is dropped when the previous one has
// not been consumed yet.
func (a *AutoAdvancer) Start(ctx context.Context) (<-chan time.Time, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil, schema.NewError(schema.ErrCodeConflict, "auto-advancer already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.reset = make(chan struct{}, 1)
	a.ticks = make(chan time.Time, 1)

	logger := logging.LogWith(ctx, a.logger)
	go a.loop(loopCtx, logger, a.ticks, a.reset, a.done)
	logger.Debug("auto-advance started",
		slog.String("schedule", a.Spec()),
		slog.Time("next", a.NextAfter(a.now())))
	return a.ticks, nil
}

func (a *AutoAdvancer) loop(ctx context.Context, logger *slog.Logger, ticks chan time.Time, reset <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer close(ticks)

	for {
		now := a.now()
		next := a.NextAfter(now)
		if next.IsZero() {
			logger.Warn("auto-advance schedule has no further firings")
			return
		}
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-reset:
			timer.Stop()
			drain(ticks)
		case t := <-timer.C:
			select {
			case ticks <- t:
			default:
				logger.Debug("auto-advance tick dropped")
			}
		}
	}
}

func drain(ticks chan time.Time) {
	select {
	case <-ticks:
	default:
	}
}

// Reset restarts the countdown to the next firing from now and discards a
// tick that has not been consumed yet. Used after manual navigation so a
// slide gets its full interval. It is a no-op when stopped.
func (a *AutoAdvancer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reset == nil {
		return
	}
	drain(a.ticks)
	select {
	case a.reset <- struct{}{}:
	default:
	}
}

// Stop shuts the loop down and waits for it to exit. It is idempotent.
func (a *AutoAdvancer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel == nil {
		return
	}

	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil
	a.reset = nil
	a.ticks = nil

	a.logger.Debug("auto-advance stopped")
}
