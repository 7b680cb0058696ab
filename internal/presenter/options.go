package presenter

import (
	"github.com/rendis/typeview/internal/scheduler"
	"github.com/rendis/typeview/internal/theme"
	"github.com/rendis/typeview/pkg/schema"
)

// Options configures a presentation run.
type Options struct {
	Title  string
	Header string // default header, overridden per slide
	Footer string // default footer, overridden per slide

	ClearOnRender      bool
	ShowControls       bool
	ShowSlideIndicator bool
	ShowStageIndicator bool
	KeyboardNavigation bool
	ExitOnLastSlide    bool

	NonInteractiveStages schema.NonInteractivePolicy

	// Theme is a partial theme merged over the base theme.
	Theme theme.Theme
	// NoColor selects the plain base theme.
	NoColor bool

	// AutoAdvance is a cron spec; every tick moves forward. Empty disables it.
	AutoAdvance string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ClearOnRender:        true,
		ShowControls:         true,
		ShowSlideIndicator:   true,
		ShowStageIndicator:   true,
		KeyboardNavigation:   true,
		NonInteractiveStages: schema.NonInteractiveAll,
	}
}

// Apply overlays the set fields of a deck options block.
func (o Options) Apply(p *schema.PresentationOptions) (Options, error) {
	if p == nil {
		return o, nil
	}
	setBool(&o.ClearOnRender, p.ClearOnRender)
	setBool(&o.ShowControls, p.ShowControls)
	setBool(&o.ShowSlideIndicator, p.ShowSlideIndicator)
	setBool(&o.ShowStageIndicator, p.ShowStageIndicator)
	setBool(&o.KeyboardNavigation, p.KeyboardNavigation)
	setBool(&o.ExitOnLastSlide, p.ExitOnLastSlide)

	if p.NonInteractiveStages != "" {
		policy, err := schema.ParseNonInteractivePolicy(p.NonInteractiveStages)
		if err != nil {
			return o, err
		}
		o.NonInteractiveStages = policy
	}
	if p.AutoAdvance != "" {
		if err := scheduler.Validate(p.AutoAdvance); err != nil {
			return o, err
		}
		o.AutoAdvance = p.AutoAdvance
	}
	return o, nil
}

// WithThemeSpec merges region styles over the current partial theme.
func (o Options) WithThemeSpec(specs map[string]schema.StyleSpec) (Options, error) {
	if len(specs) == 0 {
		return o, nil
	}
	partial, err := theme.FromSpec(specs)
	if err != nil {
		return o, err
	}
	o.Theme = theme.Merge(o.Theme, partial)
	return o, nil
}

// resolvedTheme is the full theme used for painting.
func (o Options) resolvedTheme() theme.Theme {
	base := theme.Default()
	if o.NoColor {
		base = theme.Plain()
	}
	return theme.Merge(base, o.Theme)
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
