package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/typeview/pkg/schema"
)

func TestParse(t *testing.T) {
	for _, spec := range []string{"@every 10s", "*/5 * * * *", "@hourly", "0 9 * * 1-5"} {
		_, err := Parse(spec)
		assert.NoError(t, err, spec)
	}

	for _, spec := range []string{"", "often", "* * *", "@every banana", "0 0 30 2 *"} {
		err := Validate(spec)
		require.Error(t, err, spec)
		assert.True(t, schema.HasCode(err, schema.ErrCodeInvalidArgument), spec)
	}
}

func TestAutoAdvancer_NextAfter(t *testing.T) {
	a, err := NewAutoAdvancer("@every 10s", nil)
	require.NoError(t, err)
	assert.Equal(t, "@every 10s", a.Spec())

	from := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(10*time.Second), a.NextAfter(from))

	daily, err := NewAutoAdvancer("30 9 * * *", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC), daily.NextAfter(from))
}

func TestNewAutoAdvancer_InvalidSpec(t *testing.T) {
	_, err := NewAutoAdvancer("nope", nil)
	require.Error(t, err)
}

func TestAutoAdvancer_Ticks(t *testing.T) {
	a, err := NewAutoAdvancer("@every 1s", nil)
	require.NoError(t, err)

	ticks, err := a.Start(context.Background())
	require.NoError(t, err)
	defer a.Stop()

	select {
	case <-ticks:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a tick")
	}
}

func TestAutoAdvancer_StartTwice(t *testing.T) {
	a, err := NewAutoAdvancer("@every 1h", nil)
	require.NoError(t, err)

	_, err = a.Start(context.Background())
	require.NoError(t, err)
	defer a.Stop()

	_, err = a.Start(context.Background())
	assert.Error(t, err)
}

func TestAutoAdvancer_StopClosesChannel(t *testing.T) {
	a, err := NewAutoAdvancer("@every 1h", nil)
	require.NoError(t, err)

	ticks, err := a.Start(context.Background())
	require.NoError(t, err)

	a.Reset()
	a.Stop()
	a.Stop()
	a.Reset()

	_, open := <-ticks
	assert.False(t, open)

	// Restart after stop.
	ticks, err = a.Start(context.Background())
	require.NoError(t, err)
	a.Stop()
	_, open = <-ticks
	assert.False(t, open)
}

func TestAutoAdvancer_ContextCancel(t *testing.T) {
	a, err := NewAutoAdvancer("@every 1h", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ticks, err := a.Start(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-ticks:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	a.Stop()
}

// exhaustedSchedule has no firing times left.
type exhaustedSchedule struct{}

func (exhaustedSchedule) Next(time.Time) time.Time { return time.Time{} }

func TestAutoAdvancer_ExhaustedScheduleClosesWithoutTicks(t *testing.T) {
	a := &AutoAdvancer{
		spec:     "exhausted",
		schedule: exhaustedSchedule{},
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}

	ticks, err := a.Start(context.Background())
	require.NoError(t, err)
	defer a.Stop()

	select {
	case _, open := <-ticks:
		assert.False(t, open, "no tick expected from an exhausted schedule")
	case <-time.After(time.Second):
		t.Fatal("tick channel not closed")
	}
}

func TestAutoAdvancer_ResetDiscardsPendingTick(t *testing.T) {
	a, err := NewAutoAdvancer("@every 1s", nil)
	require.NoError(t, err)

	ticks, err := a.Start(context.Background())
	require.NoError(t, err)
	defer a.Stop()

	require.Eventually(t, func() bool { return len(ticks) == 1 }, 3*time.Second, 10*time.Millisecond)

	a.Reset()
	assert.Equal(t, 0, len(ticks))

	select {
	case <-ticks:
		t.Fatal("tick delivered right after reset")
	case <-time.After(500 * time.Millisecond):
	}
}
