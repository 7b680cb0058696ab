package presenter

import (
	"fmt"
	"strings"

	"github.com/rendis/typeview/internal/engine"
	"github.com/rendis/typeview/internal/theme"
)

// frame holds the unstyled text of every region of one paint. Empty regions
// are left out of the output.
type frame struct {
	header    string
	indicator string
	title     string
	body      string
	footer    string
	notice    string
	controls  string
}

func (p *Presenter) compose(t engine.Target, body string, interactive bool) frame {
	f := frame{
		title:  t.Slide.Title(),
		body:   body,
		header: firstNonEmpty(t.Slide.Header(), p.opts.Header),
		footer: firstNonEmpty(t.Slide.Footer(), p.opts.Footer),
	}
	if p.opts.ShowSlideIndicator {
		f.indicator = p.indicator(t)
	}
	if interactive {
		f.notice = p.notice
		if p.opts.ShowControls {
			f.controls = controlsHint
		}
	}
	return f
}

// indicator reads "Slide i/n", then "· Step s/m" for staged slides, then the
// presentation title.
func (p *Presenter) indicator(t engine.Target) string {
	parts := []string{fmt.Sprintf("Slide %d/%d", t.SlideIndex+1, p.nav.Len())}
	if p.opts.ShowStageIndicator && t.Slide.HasStages() {
		parts = append(parts, fmt.Sprintf("Step %d/%d", t.StageIndex+1, t.Slide.StageCount()))
	}
	if p.opts.Title != "" {
		parts = append(parts, p.opts.Title)
	}
	return strings.Join(parts, " · ")
}

// lines styles each region once and lays the frame out top to bottom.
func (f frame) lines(th theme.Theme) []string {
	var out []string
	add := func(style theme.StyleFn, text string) {
		if text != "" {
			out = append(out, style(text))
		}
	}

	add(th.Header, f.header)
	add(th.SlideIndicator, f.indicator)
	if len(out) > 0 {
		out = append(out, "")
	}
	add(th.Title, f.title)
	out = append(out, "")
	add(th.Body, f.body)

	if f.footer != "" || f.notice != "" || f.controls != "" {
		out = append(out, "")
	}
	add(th.Footer, f.footer)
	add(th.Notice, f.notice)
	add(th.Controls, f.controls)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
