package validation

import "github.com/rendis/typeview/pkg/schema"

// Validator checks deck definitions before a presentation is built.
// Uses JSON Schema Draft 2020-12 for the structural pass.
type Validator interface {
	ValidateDefinition(def *schema.DeckDefinition) error
	ValidateDocument(doc any) error
}

// ExpressionCompiler compiles render specs without evaluating them.
type ExpressionCompiler interface {
	Compile(spec *schema.RenderSpec) error
}

// ScheduleParser parses an auto-advance schedule.
type ScheduleParser func(spec string) error

var (
	_ Validator = (*DeckValidator)(nil)
	_ Validator = (*JSONSchemaValidator)(nil)
)
