package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/typeview/pkg/schema"
)

const deckSchemaURL = "https://typeview.dev/schemas/deck.json"

// deckSchemaJSON is the JSON Schema for DeckDefinition validation.
// Embedded as a constant to avoid filesystem dependencies.
const deckSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://typeview.dev/schemas/deck.json",
  "type": "object",
  "required": ["slides"],
  "properties": {
    "title": { "type": "string" },
    "header": { "type": "string" },
    "footer": { "type": "string" },
    "vars": { "type": "object" },
    "options": { "$ref": "#/$defs/options" },
    "theme": {
      "type": "object",
      "properties": {
        "header": { "$ref": "#/$defs/style" },
        "title": { "$ref": "#/$defs/style" },
        "footer": { "$ref": "#/$defs/style" },
        "controls": { "$ref": "#/$defs/style" },
        "slide_indicator": { "$ref": "#/$defs/style" },
        "body": { "$ref": "#/$defs/style" },
        "notice": { "$ref": "#/$defs/style" }
      },
      "additionalProperties": false
    },
    "slides": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/$defs/slide" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "content": {
      "oneOf": [
        { "type": "string" },
        { "type": "array", "items": { "type": "string" } },
        { "type": "null" }
      ]
    },
    "render": {
      "type": "object",
      "required": ["expression"],
      "properties": {
        "engine": { "type": "string", "enum": ["", "expr", "cel", "jq"] },
        "expression": { "type": "string", "minLength": 1 }
      },
      "additionalProperties": false
    },
    "stage": {
      "type": "object",
      "properties": {
        "content": { "$ref": "#/$defs/content" },
        "render": { "$ref": "#/$defs/render" },
        "mode": { "type": "string", "enum": ["", "replace", "append", "accumulate"] }
      },
      "additionalProperties": false
    },
    "slide": {
      "type": "object",
      "required": ["title"],
      "properties": {
        "title": { "type": "string", "minLength": 1 },
        "header": { "type": "string" },
        "footer": { "type": "string" },
        "content": { "$ref": "#/$defs/content" },
        "stages": {
          "type": "array",
          "items": { "$ref": "#/$defs/stage" }
        },
        "render": { "$ref": "#/$defs/render" }
      },
      "additionalProperties": false
    },
    "options": {
      "type": "object",
      "properties": {
        "clear_on_render": { "type": "boolean" },
        "show_controls": { "type": "boolean" },
        "show_slide_indicator": { "type": "boolean" },
        "show_stage_indicator": { "type": "boolean" },
        "keyboard_navigation": { "type": "boolean" },
        "exit_on_last_slide": { "type": "boolean" },
        "non_interactive_stages": { "type": "string", "enum": ["", "all", "final"] },
        "auto_advance": { "type": "string" }
      },
      "additionalProperties": false
    },
    "style": {
      "type": "object",
      "properties": {
        "fg": { "type": "string" },
        "bg": { "type": "string" },
        "bold": { "type": "boolean" },
        "faint": { "type": "boolean" },
        "italic": { "type": "boolean" },
        "underline": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator validates decks against the embedded deck schema.
// It is safe for concurrent use.
type JSONSchemaValidator struct {
	deckSchema *jsonschema.Schema
}

// NewJSONSchemaValidator creates a new JSONSchemaValidator with the deck schema pre-compiled.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(deckSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal deck schema: %w", err)
	}
	if err := c.AddResource(deckSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add deck schema resource: %w", err)
	}

	deckSchema, err := c.Compile(deckSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile deck schema: %w", err)
	}

	return &JSONSchemaValidator{deckSchema: deckSchema}, nil
}

// ValidateDefinition validates a DeckDefinition against the deck JSON Schema.
func (v *JSONSchemaValidator) ValidateDefinition(def *schema.DeckDefinition) error {
	if def == nil {
		return schema.NewError(schema.ErrCodeValidation, "deck definition is nil")
	}
	return v.ValidateDocument(def)
}

// ValidateDocument validates any JSON-compatible value, typically a freshly
// decoded deck file, against the deck JSON Schema. Unknown fields are reported
// here because struct decoding would drop them silently.
func (v *JSONSchemaValidator) ValidateDocument(doc any) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "deck document is empty")
	}

	value, err := toJSONValue(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize deck").WithCause(err)
	}

	if err := v.deckSchema.Validate(value); err != nil {
		return toTypeviewError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toTypeviewError converts a jsonschema.ValidationError into a TypeviewError
// listing every violation.
func toTypeviewError(err error) *schema.TypeviewError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error messages
// with their instance locations. A leaf without a location of its own is
// reported at its nearest located ancestor.
func collectViolations(verr *jsonschema.ValidationError) []string {
	return collectAt(verr, nil)
}

func collectAt(verr *jsonschema.ValidationError, parent []string) []string {
	loc := verr.InstanceLocation
	if len(loc) == 0 {
		loc = parent
	}
	if len(verr.Causes) == 0 {
		msg := verr.Error()
		if rest, ok := strings.CutPrefix(msg, "at '"); ok {
			if _, after, found := strings.Cut(rest, "': "); found {
				msg = after
			}
		}
		return []string{fmt.Sprintf("/%s: %s", strings.Join(loc, "/"), msg)}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectAt(cause, loc)...)
	}
	return violations
}

var _ Validator = (*JSONSchemaValidator)(nil)
