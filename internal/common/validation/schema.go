package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CanonicalRequestSchema describes a queue message body. Email and
// DiningTime are only required to be non-empty strings.
const CanonicalRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["Location", "Cuisine", "DiningDate", "DiningTime", "NumberOfPeople", "Email"],
  "properties": {
    "RequestID":      {"type": "string"},
    "Location":       {"type": "string", "minLength": 1},
    "Cuisine":        {"type": "string", "minLength": 1},
    "DiningDate":     {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "DiningTime":     {"type": "string", "minLength": 1},
    "NumberOfPeople": {"type": "integer", "minimum": 1},
    "Email":          {"type": "string", "minLength": 1}
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual violations.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator checks JSON documents against one compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schema once.
func NewValidator(schema string) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// NewCanonicalRequestValidator compiles CanonicalRequestSchema.
func NewCanonicalRequestValidator() (*Validator, error) {
	return NewValidator(CanonicalRequestSchema)
}

// ValidateJSON validates a raw document. A document that is not JSON at all is
// reported as an error rather than a result.
func (v *Validator) ValidateJSON(doc []byte) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
