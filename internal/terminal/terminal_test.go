package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/typeview/pkg/schema"
)

func collect(t *testing.T, keys <-chan Key) []Key {
	t.Helper()
	var out []Key
	timeout := time.After(2 * time.Second)
	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return out
			}
			out = append(out, k)
		case <-timeout:
			t.Fatal("key channel was not closed")
		}
	}
}

func TestTerminal_NotInteractiveOverBuffers(t *testing.T) {
	term := New(strings.NewReader(""), &bytes.Buffer{})
	assert.False(t, term.IsInteractive())

	_, _, err := term.Size()
	assert.True(t, schema.HasCode(err, schema.ErrCodeTerminal))
}

func TestTerminal_RawModeRequiresTerminal(t *testing.T) {
	term := New(strings.NewReader(""), &bytes.Buffer{})

	err := term.SetRawMode(true)
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeTerminal))
	assert.False(t, term.Raw())

	assert.NoError(t, term.SetRawMode(false))
}

func TestTerminal_Output(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader(""), &out)

	require.NoError(t, term.ClearScreen())
	require.NoError(t, term.WriteLine("Intro"))
	require.NoError(t, term.WriteLine("a\nb"))

	assert.Equal(t, "\x1b[2J\x1b[HIntro\na\nb\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestTerminal_WriteError(t *testing.T) {
	term := New(strings.NewReader(""), failingWriter{})
	err := term.WriteLine("x")
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeTerminal))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestTerminal_KeysUntilEOF(t *testing.T) {
	term := New(strings.NewReader("n \x1b[Dq\x1b"), &bytes.Buffer{})

	keys, stop, err := term.Keys(context.Background())
	require.NoError(t, err)
	defer stop()

	assert.Equal(t, []Key{
		RuneKey('n'),
		{Code: KeySpace},
		{Code: KeyLeft},
		RuneKey('q'),
		{Code: KeyEscape},
	}, collect(t, keys))
}

func TestTerminal_SingleSubscription(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := New(pr, &bytes.Buffer{})

	keys, stop, err := term.Keys(context.Background())
	require.NoError(t, err)

	_, _, err = term.Keys(context.Background())
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeConflict))

	go func() { _, _ = pw.Write([]byte("n")) }()
	assert.Equal(t, RuneKey('n'), <-keys)

	stop()
	stop()

	// The reader exits once its pending read returns.
	go func() { _, _ = pw.Write([]byte("x")) }()
	assert.Empty(t, collect(t, keys))

	_, stop2, err := term.Keys(context.Background())
	require.NoError(t, err)
	stop2()
}

func TestTerminal_KeysStopOnContext(t *testing.T) {
	pr, pw := io.Pipe()
	term := New(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	keys, stop, err := term.Keys(ctx)
	require.NoError(t, err)
	defer stop()

	cancel()
	require.NoError(t, pw.Close())
	assert.Empty(t, collect(t, keys))
}

func TestTerminal_EscapeThenKeyInSeparateReads(t *testing.T) {
	pr, pw := io.Pipe()
	term := New(pr, &bytes.Buffer{})

	keys, stop, err := term.Keys(context.Background())
	require.NoError(t, err)
	defer stop()

	go func() {
		_, _ = pw.Write([]byte{0x1b})
		_, _ = pw.Write([]byte("q"))
		_ = pw.Close()
	}()
	assert.Equal(t, []Key{{Code: KeyEscape}, RuneKey('q')}, collect(t, keys))
}
