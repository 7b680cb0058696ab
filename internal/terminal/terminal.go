// Package terminal drives the host terminal: raw mode, screen clearing, line
// output and decoded key input.
package terminal

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/rendis/typeview/pkg/schema"
)

const clearScreen = "\x1b[2J\x1b[H"

const (
	keyBuffer  = 16
	readBuffer = 256
)

type fder interface {
	Fd() uintptr
}

// Terminal reads keys from in and writes frames to out. When both are
// terminals the presentation can run interactively.
type Terminal struct {
	in  io.Reader
	out io.Writer

	mu        sync.Mutex
	state     *term.State
	listening bool
}

// New creates a Terminal over the given streams.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Std creates a Terminal over the process's stdin and stdout.
func Std() *Terminal {
	return New(os.Stdin, os.Stdout)
}

// IsInteractive reports whether both streams are attached to a terminal.
func (t *Terminal) IsInteractive() bool {
	_, inOK := fdOf(t.in)
	_, outOK := fdOf(t.out)
	return inOK && outOK
}

// Size returns the output terminal's width and height.
func (t *Terminal) Size() (width, height int, err error) {
	fd, ok := fdOf(t.out)
	if !ok {
		return 0, 0, schema.NewError(schema.ErrCodeTerminal, "output is not a terminal")
	}
	width, height, err = term.GetSize(fd)
	if err != nil {
		return 0, 0, schema.NewError(schema.ErrCodeTerminal, "cannot read terminal size").WithCause(err)
	}
	return width, height, nil
}

// SetRawMode switches the input terminal into or out of raw mode. Enabling
// an already raw terminal and disabling a cooked one are no-ops.
func (t *Terminal) SetRawMode(enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !enabled {
		if t.state == nil {
			return nil
		}
		fd, _ := fdOf(t.in)
		state := t.state
		t.state = nil
		if err := term.Restore(fd, state); err != nil {
			return schema.NewError(schema.ErrCodeTerminal, "cannot restore terminal mode").WithCause(err)
		}
		return nil
	}

	if t.state != nil {
		return nil
	}
	fd, ok := fdOf(t.in)
	if !ok {
		return schema.NewError(schema.ErrCodeTerminal, "input is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return schema.NewError(schema.ErrCodeTerminal, "cannot enable raw mode").WithCause(err)
	}
	t.state = state
	return nil
}

// Raw reports whether raw mode is active.
func (t *Terminal) Raw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != nil
}

// ClearScreen erases the screen and homes the cursor.
func (t *Terminal) ClearScreen() error {
	return t.write(clearScreen)
}

// WriteLine writes s followed by a line break. Raw mode disables the
// terminal's newline translation, so every break is written as CRLF then.
func (t *Terminal) WriteLine(s string) error {
	if t.Raw() {
		return t.write(strings.ReplaceAll(s, "\n", "\r\n") + "\r\n")
	}
	return t.write(s + "\n")
}

func (t *Terminal) write(s string) error {
	if _, err := io.WriteString(t.out, s); err != nil {
		return schema.NewError(schema.ErrCodeTerminal, "write failed").WithCause(err)
	}
	return nil
}

// Keys starts delivering decoded key presses. Only one subscription may be
// active at a time; stop ends it and may be called more than once. The
// channel is closed when the input ends, ctx is done or stop is called.
//
// A read blocked on the input is not interrupted by stop: the reader
// goroutine exits after its next read returns.
func (t *Terminal) Keys(ctx context.Context) (<-chan Key, func(), error) {
	t.mu.Lock()
	if t.listening {
		t.mu.Unlock()
		return nil, nil, schema.NewError(schema.ErrCodeConflict, "key input is already being read")
	}
	t.listening = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	keys := make(chan Key, keyBuffer)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			t.mu.Lock()
			t.listening = false
			t.mu.Unlock()
		})
	}

	go t.readKeys(ctx, keys)
	return keys, stop, nil
}

func (t *Terminal) readKeys(ctx context.Context, keys chan<- Key) {
	defer close(keys)

	var dec Decoder
	buf := make([]byte, readBuffer)
	for {
		n, err := t.in.Read(buf)
		if ctx.Err() != nil {
			return
		}
		batch := dec.Feed(buf[:n])
		if err != nil {
			batch = append(batch, dec.Flush()...)
		}
		for _, k := range batch {
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func fdOf(v any) (int, bool) {
	f, ok := v.(fder)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}
