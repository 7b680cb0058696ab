package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DeckDefinition is the serializable deck format read from YAML or JSON files.
type DeckDefinition struct {
	Title   string               `json:"title,omitempty"`
	Header  string               `json:"header,omitempty"`
	Footer  string               `json:"footer,omitempty"`
	Vars    map[string]any       `json:"vars,omitempty"`
	Options *PresentationOptions `json:"options,omitempty"`
	Theme   map[string]StyleSpec `json:"theme,omitempty"`
	Slides  []SlideDefinition    `json:"slides"`
}

// SlideDefinition describes a single slide.
// When Stages is non-empty, Render is ignored.
type SlideDefinition struct {
	Title   string            `json:"title"`
	Header  string            `json:"header,omitempty"`
	Footer  string            `json:"footer,omitempty"`
	Content Content           `json:"content,omitempty"`
	Stages  []StageDefinition `json:"stages,omitempty"`
	Render  *RenderSpec       `json:"render,omitempty"`
}

// StageDefinition describes one incremental reveal step of a slide.
// When Render is set, Content is ignored.
type StageDefinition struct {
	Content Content     `json:"content,omitempty"`
	Render  *RenderSpec `json:"render,omitempty"`
	Mode    StageMode   `json:"mode,omitempty"` // replace | append | accumulate (default: accumulate)
}

// RenderSpec binds a dynamic renderer to an expression evaluated at render time.
type RenderSpec struct {
	Engine     string `json:"engine,omitempty"` // expr | cel | jq (default: expr)
	Expression string `json:"expression"`
}

// StageMode controls how a stage combines with base content and earlier stages.
type StageMode string

const (
	StageModeReplace    StageMode = "replace"
	StageModeAppend     StageMode = "append"
	StageModeAccumulate StageMode = "accumulate"
)

// Valid reports whether m is a known mode. The empty mode is valid and means accumulate.
func (m StageMode) Valid() bool {
	switch m {
	case "", StageModeReplace, StageModeAppend, StageModeAccumulate:
		return true
	}
	return false
}

// OrDefault returns m, or accumulate when m is empty.
func (m StageMode) OrDefault() StageMode {
	if m == "" {
		return StageModeAccumulate
	}
	return m
}

// NonInteractivePolicy selects which stages auto-play renders.
type NonInteractivePolicy string

const (
	NonInteractiveAll   NonInteractivePolicy = "all"
	NonInteractiveFinal NonInteractivePolicy = "final"
)

// ParseNonInteractivePolicy parses "all" or "final". The empty string yields "all".
func ParseNonInteractivePolicy(s string) (NonInteractivePolicy, error) {
	switch NonInteractivePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", NonInteractiveAll:
		return NonInteractiveAll, nil
	case NonInteractiveFinal:
		return NonInteractiveFinal, nil
	}
	return "", NewErrorf(ErrCodeInvalidArgument, "unknown non-interactive stage policy %q (want all or final)", s)
}

// PresentationOptions is the deck-level options block. Nil fields keep the
// value configured elsewhere.
type PresentationOptions struct {
	ClearOnRender        *bool  `json:"clear_on_render,omitempty"`
	ShowControls         *bool  `json:"show_controls,omitempty"`
	ShowSlideIndicator   *bool  `json:"show_slide_indicator,omitempty"`
	ShowStageIndicator   *bool  `json:"show_stage_indicator,omitempty"`
	KeyboardNavigation   *bool  `json:"keyboard_navigation,omitempty"`
	ExitOnLastSlide      *bool  `json:"exit_on_last_slide,omitempty"`
	NonInteractiveStages string `json:"non_interactive_stages,omitempty"`
	AutoAdvance          string `json:"auto_advance,omitempty"`
}

// Theme regions a StyleSpec can be attached to.
const (
	RegionHeader         = "header"
	RegionTitle          = "title"
	RegionFooter         = "footer"
	RegionControls       = "controls"
	RegionSlideIndicator = "slide_indicator"
	RegionBody           = "body"
	RegionNotice         = "notice"
)

// ThemeRegions lists every theme region in paint order.
var ThemeRegions = []string{
	RegionHeader, RegionSlideIndicator, RegionTitle, RegionBody,
	RegionFooter, RegionNotice, RegionControls,
}

// StyleSpec describes a theme region style in deck or settings files.
type StyleSpec struct {
	Foreground string `json:"fg,omitempty"`
	Background string `json:"bg,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
	Faint      bool   `json:"faint,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty"`
}

// Content is a line-sequence source: one text block or an ordered list of blocks.
// In files it is written either as a string or as a list of strings.
type Content []string

// Text returns content holding a single block. An empty block is no content.
func Text(s string) Content {
	if s == "" {
		return nil
	}
	return Content{s}
}

// Blocks returns content holding the given blocks in order.
func Blocks(blocks ...string) Content {
	if len(blocks) == 0 {
		return nil
	}
	return Content(append([]string(nil), blocks...))
}

// String joins the blocks with line breaks.
func (c Content) String() string {
	return strings.Join(c, "\n")
}

// UnmarshalJSON accepts a string, a list of strings or null.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	}
	var blocks []string
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("content must be a string or a list of strings: %w", err)
	}
	*c = Content(blocks)
	return nil
}

// MarshalJSON writes a single block as a string and anything else as a list.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}
