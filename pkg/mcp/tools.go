package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/typeview/internal/engine"
	"github.com/rendis/typeview/pkg/schema"
)

// SlideOutline describes one slide in an outline.
type SlideOutline struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	Header    string `json:"header,omitempty"`
	Footer    string `json:"footer,omitempty"`
	Stages    int    `json:"stages"`
	HasStages bool   `json:"has_stages"`
}

// Outline is the typeview.outline result.
type Outline struct {
	Title  string         `json:"title,omitempty"`
	Slides []SlideOutline `json:"slides"`
}

// Frame is one rendered (slide, stage) body.
type Frame struct {
	Slide  int    `json:"slide"`
	Stage  int    `json:"stage"`
	Stages int    `json:"stages"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Transcript is the typeview.transcript result.
type Transcript struct {
	Policy schema.NonInteractivePolicy `json:"policy"`
	Frames []Frame                     `json:"frames"`
}

// handleOutline lists the slides.
func (s *TypeviewServer) handleOutline(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := Outline{Title: s.title, Slides: make([]SlideOutline, 0, s.nav.Len())}
	for i, sl := range s.nav.Slides() {
		out.Slides = append(out.Slides, SlideOutline{
			Index:     i,
			Title:     sl.Title(),
			Header:    sl.Header(),
			Footer:    sl.Footer(),
			Stages:    sl.StageCount(),
			HasStages: sl.HasStages(),
		})
	}
	return marshalResult(out)
}

// handleRender renders one slide at a stage.
func (s *TypeviewServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("slide")
	if err != nil {
		return mcp.NewToolResultError("slide is required"), nil
	}
	stage := req.GetInt("stage", 0)

	slides := s.nav.Slides()
	if idx < 0 || idx >= len(slides) {
		return mcp.NewToolResultError(fmt.Sprintf("slide %d out of range (deck has %d slides)", idx, len(slides))), nil
	}

	frame, renderErr := s.render(ctx, engine.Position{Slide: idx, Stage: clamp(stage, 0, slides[idx].StageCount()-1)})
	if renderErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", renderErr)), nil
	}
	return marshalResult(frame)
}

// handleTranscript renders the frames a non-interactive run would print.
func (s *TypeviewServer) handleTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policy := s.policy
	if raw := req.GetString("policy", ""); raw != "" {
		p, err := schema.ParseNonInteractivePolicy(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		policy = p
	}

	positions := engine.Frames(s.nav, policy)
	out := Transcript{Policy: policy, Frames: make([]Frame, 0, len(positions))}
	for _, pos := range positions {
		frame, err := s.render(ctx, pos)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
		}
		out.Frames = append(out.Frames, frame)
	}
	return marshalResult(out)
}

// render reads the slide directly and leaves the navigator position alone.
func (s *TypeviewServer) render(ctx context.Context, pos engine.Position) (Frame, error) {
	sl := s.nav.Slides()[pos.Slide]
	body, err := sl.RenderStage(ctx, pos.Stage)
	if err != nil {
		s.logger.Warn("preview render failed",
			slog.Int("slide", pos.Slide),
			slog.Int("stage", pos.Stage),
			slog.String("error", err.Error()),
		)
		return Frame{}, err
	}
	return Frame{
		Slide:  pos.Slide,
		Stage:  pos.Stage,
		Stages: sl.StageCount(),
		Title:  sl.Title(),
		Body:   body,
	}, nil
}

// --- Helpers ---

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
