// Package theme styles the regions of a painted frame.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/typeview/pkg/schema"
)

// StyleFn decorates a piece of text for display.
type StyleFn func(string) string

// Theme holds one style per frame region. A nil field in a partial theme
// means "keep the base style".
type Theme struct {
	Header         StyleFn
	Title          StyleFn
	Footer         StyleFn
	Controls       StyleFn
	SlideIndicator StyleFn
	Body           StyleFn
	Notice         StyleFn
}

// ANSI palette indices used by the default theme.
const (
	colorGreen   = "2"
	colorYellow  = "3"
	colorMagenta = "5"
	colorCyan    = "6"
	colorWhite   = "7"
	colorGray    = "8"
)

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		Header:         perLine(newStyle().Faint(true).Foreground(lipgloss.Color(colorGreen))),
		Title:          perLine(newStyle().Bold(true).Foreground(lipgloss.Color(colorCyan))),
		Footer:         perLine(newStyle().Faint(true).Foreground(lipgloss.Color(colorGray))),
		Controls:       perLine(newStyle().Faint(true).Foreground(lipgloss.Color(colorGray))),
		SlideIndicator: perLine(newStyle().Foreground(lipgloss.Color(colorYellow))),
		Body:           perLine(newStyle().Foreground(lipgloss.Color(colorWhite))),
		Notice:         perLine(newStyle().Foreground(lipgloss.Color(colorMagenta))),
	}
}

// Plain returns a theme that leaves text untouched.
func Plain() Theme {
	id := func(s string) string { return s }
	return Theme{
		Header:         id,
		Title:          id,
		Footer:         id,
		Controls:       id,
		SlideIndicator: id,
		Body:           id,
		Notice:         id,
	}
}

// Merge returns base with every non-nil field of partial replacing its
// counterpart.
func Merge(base, partial Theme) Theme {
	out := base
	for _, f := range []struct {
		dst *StyleFn
		src StyleFn
	}{
		{&out.Header, partial.Header},
		{&out.Title, partial.Title},
		{&out.Footer, partial.Footer},
		{&out.Controls, partial.Controls},
		{&out.SlideIndicator, partial.SlideIndicator},
		{&out.Body, partial.Body},
		{&out.Notice, partial.Notice},
	} {
		if f.src != nil {
			*f.dst = f.src
		}
	}
	return out
}

// FromSpec builds a partial theme from region style specs. Regions missing
// from specs stay nil so the result can be merged over another theme.
func FromSpec(specs map[string]schema.StyleSpec) (Theme, error) {
	var t Theme
	for region, spec := range specs {
		fn := perLine(Style(spec))
		switch region {
		case schema.RegionHeader:
			t.Header = fn
		case schema.RegionTitle:
			t.Title = fn
		case schema.RegionFooter:
			t.Footer = fn
		case schema.RegionControls:
			t.Controls = fn
		case schema.RegionSlideIndicator:
			t.SlideIndicator = fn
		case schema.RegionBody:
			t.Body = fn
		case schema.RegionNotice:
			t.Notice = fn
		default:
			return Theme{}, schema.NewErrorf(schema.ErrCodeValidation, "unknown theme region %q", region).
				WithDetails(map[string]any{"regions": schema.ThemeRegions})
		}
	}
	return t, nil
}

// Style converts a StyleSpec into a lipgloss style.
func Style(spec schema.StyleSpec) lipgloss.Style {
	st := newStyle().
		Bold(spec.Bold).
		Faint(spec.Faint).
		Italic(spec.Italic).
		Underline(spec.Underline)
	if spec.Foreground != "" {
		st = st.Foreground(lipgloss.Color(spec.Foreground))
	}
	if spec.Background != "" {
		st = st.Background(lipgloss.Color(spec.Background))
	}
	return st
}

func newStyle() lipgloss.Style {
	return lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// perLine applies st to each non-empty line on its own, so lipgloss never
// pads a multi-line block to its widest line.
func perLine(st lipgloss.Style) StyleFn {
	return func(s string) string {
		if !strings.Contains(s, "\n") {
			if s == "" {
				return s
			}
			return st.Render(s)
		}
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			if line != "" {
				lines[i] = st.Render(line)
			}
		}
		return strings.Join(lines, "\n")
	}
}
