package schema

// Event names used in structured logs for presentation lifecycle and navigation.
const (
	EventPresentationStarted = "presentation_started"
	EventPresentationStopped = "presentation_stopped"

	EventStageAdvanced  = "stage_advanced"
	EventStageRetreated = "stage_retreated"
	EventSlideAdvanced  = "slide_advanced"
	EventSlideRetreated = "slide_retreated"

	EventFrameRendered = "frame_rendered"
	EventRenderFailed  = "render_failed"
	EventBoundaryHit   = "boundary_hit"
)
