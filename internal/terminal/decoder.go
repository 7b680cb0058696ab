package terminal

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

const (
	esc = 0x1b

	// maxSequence bounds how long an unterminated escape sequence may grow
	// before it is discarded.
	maxSequence = 32
)

// Decoder turns raw terminal input into key presses. Escape sequences are
// tokenized by ansi.DecodeSequence; only the mapping from sequence to key
// lives here.
//
// Each Feed is treated as one read from the terminal. A partial CSI/SS3
// sequence or UTF-8 rune is kept until the next Feed, but an ESC that ends
// the input is reported as KeyEscape right away: terminals write a whole
// sequence at once, so a trailing lone ESC is the Esc key.
type Decoder struct {
	pending []byte
	parser  *ansi.Parser
}

// Feed decodes data, prefixed with whatever was left over from the previous
// call, and returns the complete keys found.
func (d *Decoder) Feed(data []byte) []Key {
	if d.parser == nil {
		d.parser = ansi.NewParser()
		d.parser.SetDataSize(maxSequence)
	}

	buf := append(d.pending, data...)
	d.pending = nil

	var keys []Key
	for len(buf) > 0 {
		key, n := d.decodeOne(buf)
		if n == 0 {
			d.pending = append([]byte(nil), buf...)
			break
		}
		if key.Code != KeyNone {
			keys = append(keys, key)
		}
		buf = buf[n:]
	}

	if len(d.pending) == 1 && d.pending[0] == esc {
		d.pending = nil
		keys = append(keys, Key{Code: KeyEscape})
	}
	return keys
}

// Flush reports whatever is still buffered. A partial escape sequence
// becomes KeyEscape; a partial rune is dropped.
func (d *Decoder) Flush() []Key {
	pending := d.pending
	d.pending = nil
	if len(pending) > 0 && pending[0] == esc {
		return []Key{{Code: KeyEscape}}
	}
	return nil
}

// Pending reports whether a partial sequence is buffered.
func (d *Decoder) Pending() bool {
	return len(d.pending) > 0
}

// decodeOne decodes the key at the start of b. It returns n == 0 when more
// input is needed.
func (d *Decoder) decodeOne(b []byte) (Key, int) {
	if b[0] >= 0xc0 && !utf8.FullRune(b) {
		return Key{}, 0
	}

	window := b
	if len(window) > maxSequence {
		window = window[:maxSequence]
	}
	seq, _, n, state := ansi.DecodeSequence(window, ansi.NormalState, d.parser)
	if state != ansi.NormalState {
		if len(window) == maxSequence {
			return Key{}, maxSequence
		}
		return Key{}, 0
	}

	switch {
	case len(seq) == 1:
		return byteKey(seq[0]), n
	case ansi.HasCsiPrefix(seq):
		return d.csiKey(), n
	case string(seq) == "\x1bO":
		if len(b) <= n {
			return Key{}, 0
		}
		return ss3Key(b[n]), n + 1
	case ansi.HasEscPrefix(seq):
		if len(seq) != 2 {
			return Key{}, n
		}
		inner := byteKey(seq[1])
		if inner.Code == KeyNone {
			return Key{}, n
		}
		inner.Alt = true
		return inner, n
	}

	r, _ := utf8.DecodeRune(seq)
	if r == utf8.RuneError {
		return Key{}, n
	}
	return RuneKey(r), n
}

func byteKey(c byte) Key {
	switch {
	case c == esc:
		return Key{Code: KeyEscape}
	case c == 0x03:
		return Key{Code: KeyCtrlC}
	case c == '\r' || c == '\n':
		return Key{Code: KeyEnter}
	case c == '\t':
		return Key{Code: KeyTab}
	case c == 0x7f || c == 0x08:
		return Key{Code: KeyBackspace}
	case c == ' ':
		return Key{Code: KeySpace}
	case c < 0x20 || c >= utf8.RuneSelf:
		return Key{}
	}
	return RuneKey(rune(c))
}

// csiKey maps the sequence last decoded by the parser.
func (d *Decoder) csiKey() Key {
	cmd := ansi.Cmd(d.parser.Command())
	if cmd.Prefix() != 0 || cmd.Intermediate() != 0 {
		return Key{}
	}

	switch cmd.Final() {
	case 'A':
		return Key{Code: KeyUp}
	case 'B':
		return Key{Code: KeyDown}
	case 'C':
		return Key{Code: KeyRight}
	case 'D':
		return Key{Code: KeyLeft}
	case 'H':
		return Key{Code: KeyHome}
	case 'F':
		return Key{Code: KeyEnd}
	case '~':
		param, _ := d.parser.Param(0, 0)
		switch param {
		case 1, 7:
			return Key{Code: KeyHome}
		case 4, 8:
			return Key{Code: KeyEnd}
		case 5:
			return Key{Code: KeyPageUp}
		case 6:
			return Key{Code: KeyPageDown}
		}
	}
	return Key{}
}

// ss3Key maps ESC O <final>.
func ss3Key(final byte) Key {
	switch final {
	case 'A':
		return Key{Code: KeyUp}
	case 'B':
		return Key{Code: KeyDown}
	case 'C':
		return Key{Code: KeyRight}
	case 'D':
		return Key{Code: KeyLeft}
	case 'H':
		return Key{Code: KeyHome}
	case 'F':
		return Key{Code: KeyEnd}
	}
	return Key{}
}
