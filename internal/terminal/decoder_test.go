package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoder_Feed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{"printable", "nq", []Key{RuneKey('n'), RuneKey('q')}},
		{"space enter ctrl-c", " \r\x03", []Key{{Code: KeySpace}, {Code: KeyEnter}, {Code: KeyCtrlC}}},
		{"backspace and tab", "\x7f\t", []Key{{Code: KeyBackspace}, {Code: KeyTab}}},
		{"csi arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{{Code: KeyUp}, {Code: KeyDown}, {Code: KeyRight}, {Code: KeyLeft}}},
		{"ss3 arrows", "\x1bOC\x1bOD", []Key{{Code: KeyRight}, {Code: KeyLeft}}},
		{"page keys", "\x1b[5~\x1b[6~", []Key{{Code: KeyPageUp}, {Code: KeyPageDown}}},
		{"home end variants", "\x1b[H\x1b[1~\x1bOF\x1b[4~", []Key{{Code: KeyHome}, {Code: KeyHome}, {Code: KeyEnd}, {Code: KeyEnd}}},
		{"modified arrow", "\x1b[1;5C", []Key{{Code: KeyRight}}},
		{"unknown csi dropped", "\x1b[2~x", []Key{RuneKey('x')}},
		{"alt rune", "\x1bq", []Key{{Code: KeyRune, Rune: 'q', Alt: true}}},
		{"double escape", "\x1b\x1b[C", []Key{{Code: KeyEscape}, {Code: KeyRight}}},
		{"escape then ctrl-c", "\x1b\x03", []Key{{Code: KeyEscape}, {Code: KeyCtrlC}}},
		{"trailing escape", "n\x1b", []Key{RuneKey('n'), {Code: KeyEscape}}},
		{"mouse report dropped", "\x1b[<0;3;4Mq", []Key{RuneKey('q')}},
		{"utf8 rune", "é→", []Key{RuneKey('é'), RuneKey('→')}},
		{"other controls dropped", "\x01\x02n", []Key{RuneKey('n')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			assert.Equal(t, tt.want, d.Feed([]byte(tt.in)))
			assert.False(t, d.Pending())
		})
	}
}

func TestDecoder_SplitSequence(t *testing.T) {
	var d Decoder

	assert.Empty(t, d.Feed([]byte("\x1b[")))
	assert.True(t, d.Pending())
	assert.Empty(t, d.Feed([]byte("6")))
	assert.Equal(t, []Key{{Code: KeyPageDown}, RuneKey('n')}, d.Feed([]byte("~n")))
	assert.False(t, d.Pending())
}

func TestDecoder_SplitRune(t *testing.T) {
	var d Decoder
	raw := []byte("→")

	assert.Empty(t, d.Feed(raw[:1]))
	assert.Equal(t, []Key{RuneKey('→')}, d.Feed(raw[1:]))
}

func TestDecoder_LoneEscapeEndsRead(t *testing.T) {
	var d Decoder

	assert.Equal(t, []Key{{Code: KeyEscape}}, d.Feed([]byte{0x1b}))
	assert.False(t, d.Pending())
	assert.Equal(t, []Key{RuneKey('q')}, d.Feed([]byte("q")))

	assert.Equal(t, []Key{{Code: KeyEscape}}, d.Feed([]byte{0x1b}))
	assert.Equal(t, []Key{{Code: KeySpace}}, d.Feed([]byte(" ")))
}

func TestDecoder_SplitSS3(t *testing.T) {
	var d Decoder

	assert.Empty(t, d.Feed([]byte("\x1bO")))
	assert.True(t, d.Pending())
	assert.Equal(t, []Key{{Code: KeyLeft}}, d.Feed([]byte("D")))
}

func TestDecoder_Flush(t *testing.T) {
	var d Decoder
	assert.Empty(t, d.Feed([]byte("\x1b[1")))
	assert.Equal(t, []Key{{Code: KeyEscape}}, d.Flush())
	assert.False(t, d.Pending())
	assert.Empty(t, d.Flush())
}

func TestDecoder_OverlongSequenceDiscarded(t *testing.T) {
	var d Decoder
	seq := "\x1b["
	for len(seq) < maxSequence+4 {
		seq += "1;"
	}
	keys := d.Feed([]byte(seq + "n"))
	assert.Contains(t, keys, RuneKey('n'))
	assert.False(t, d.Pending())
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "q", RuneKey('q').String())
	assert.Equal(t, "right", Key{Code: KeyRight}.String())
	assert.Equal(t, "alt+q", Key{Code: KeyRune, Rune: 'q', Alt: true}.String())
	assert.Equal(t, "key(99)", Key{Code: KeyCode(99)}.String())
}
