package validation

import (
	"fmt"
	"strings"

	"github.com/rendis/typeview/pkg/schema"
)

// validateSemantic performs the checks JSON Schema cannot express: render
// expressions compile, the auto-advance schedule parses, and content that
// would be ignored or is missing is flagged.
func validateSemantic(def *schema.DeckDefinition, exprs ExpressionCompiler, schedules ScheduleParser) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	titles := make(map[string]int, len(def.Slides))
	for i := range def.Slides {
		path := fmt.Sprintf("slides[%d]", i)
		s := &def.Slides[i]
		issues := result.Slide(i, s.Title)
		validateSlideSemantic(s, path, exprs, issues)

		key := strings.TrimSpace(s.Title)
		if first, seen := titles[key]; seen {
			issues.AddWarning(path+".title", schema.ErrCodeValidation,
				fmt.Sprintf("duplicate slide title %q (first used by slides[%d])", s.Title, first))
		} else {
			titles[key] = i
		}
	}

	if def.Options != nil {
		validateOptions(def.Options, schedules, result)
	}

	for region := range def.Theme {
		if !knownRegion(region) {
			result.AddError("theme."+region, schema.ErrCodeValidation,
				fmt.Sprintf("unknown theme region %q; available: %s", region, strings.Join(schema.ThemeRegions, ", ")))
		}
	}

	return result
}

// validateSlideSemantic checks a single slide and its stages.
func validateSlideSemantic(s *schema.SlideDefinition, path string, exprs ExpressionCompiler, issues schema.SlideIssues) {
	if strings.TrimSpace(s.Title) == "" {
		issues.AddError(path+".title", schema.ErrCodeInvalidArgument, "slide title is required")
	}

	if len(s.Stages) > 0 && s.Render != nil {
		issues.AddWarning(path+".render", schema.ErrCodeValidation,
			"slide declares stages; its render expression is ignored")
	}
	if len(s.Stages) == 0 && s.Render != nil {
		validateRender(s.Render, path+".render", exprs, issues)
	}
	if len(s.Stages) == 0 && s.Render == nil && len(s.Content) == 0 {
		issues.AddWarning(path, schema.ErrCodeNoContent, "slide has no content, stages or render expression")
	}

	for j := range s.Stages {
		st := &s.Stages[j]
		stagePath := fmt.Sprintf("%s.stages[%d]", path, j)

		if !st.Mode.Valid() {
			issues.AddError(stagePath+".mode", schema.ErrCodeInvalidArgument,
				fmt.Sprintf("unknown stage mode %q", st.Mode))
		}
		if st.Render != nil {
			if len(st.Content) > 0 {
				issues.AddWarning(stagePath+".content", schema.ErrCodeValidation,
					"stage declares a render expression; its content is ignored")
			}
			validateRender(st.Render, stagePath+".render", exprs, issues)
		}
	}
}

// validateRender compiles a render expression. A nil compiler skips the check.
func validateRender(spec *schema.RenderSpec, path string, exprs ExpressionCompiler, issues schema.SlideIssues) {
	if exprs == nil {
		return
	}
	if err := exprs.Compile(spec); err != nil {
		code := schema.ErrCodeValidation
		msg := err.Error()
		if te, ok := err.(*schema.TypeviewError); ok {
			code = te.Code
			msg = te.Message
		}
		issues.AddError(path, code, msg)
	}
}

// validateOptions checks the deck options block.
func validateOptions(opts *schema.PresentationOptions, schedules ScheduleParser, result *schema.ValidationResult) {
	if _, err := schema.ParseNonInteractivePolicy(opts.NonInteractiveStages); err != nil {
		result.AddError("options.non_interactive_stages", schema.ErrCodeInvalidArgument, err.Error())
	}
	if opts.AutoAdvance != "" && schedules != nil {
		if err := schedules(opts.AutoAdvance); err != nil {
			result.AddError("options.auto_advance", schema.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid auto_advance schedule %q: %s", opts.AutoAdvance, err.Error()))
		}
	}
	if opts.AutoAdvance != "" && opts.KeyboardNavigation != nil && !*opts.KeyboardNavigation {
		result.AddWarning("options.auto_advance", schema.ErrCodeValidation,
			"auto_advance only applies to interactive presentations; keyboard_navigation is disabled")
	}
}

func knownRegion(name string) bool {
	for _, r := range schema.ThemeRegions {
		if r == name {
			return true
		}
	}
	return false
}
