package terminal

import "fmt"

// KeyCode classifies a decoded key press.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyRune
	KeySpace
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyCtrlC
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[KeyCode]string{
	KeyNone:      "none",
	KeySpace:     "space",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyEscape:    "esc",
	KeyCtrlC:     "ctrl+c",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
}

// Key is a single key press. Rune is set only for KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
	Alt  bool
}

// RuneKey returns the key for a printable rune.
func RuneKey(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

func (k Key) String() string {
	name := keyNames[k.Code]
	if k.Code == KeyRune {
		name = string(k.Rune)
	}
	if name == "" {
		name = fmt.Sprintf("key(%d)", int(k.Code))
	}
	if k.Alt {
		return "alt+" + name
	}
	return name
}
