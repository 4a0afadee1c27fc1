package validation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema used to check request bodies before they
// are decoded.
type Schema struct {
	compiled *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// CodeMalformedJSON marks documents that could not be parsed. The other two
// are gojsonschema result types.
const (
	CodeMalformedJSON = "MALFORMED_JSON"
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
)

// Compile parses schemaJSON into a reusable Schema.
func Compile(schemaJSON string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks doc against the schema. An empty document is validated as
// an empty object.
func (s *Schema) Validate(doc []byte) *ValidationResult {
	if len(bytes.TrimSpace(doc)) == 0 {
		doc = []byte("{}")
	}

	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    CodeMalformedJSON,
			}},
		}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   fieldOf(re),
			Message: re.Description(),
			Code:    re.Type(),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

// fieldOf names the offending property. gojsonschema reports a missing
// required property against its parent, so the property name is taken from
// the error details instead.
func fieldOf(re gojsonschema.ResultError) string {
	if re.Type() == CodeRequired {
		if prop, ok := re.Details()["property"].(string); ok {
			if parent := re.Field(); parent != "" && parent != "(root)" {
				return parent + "." + prop
			}
			return prop
		}
	}
	return re.Field()
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// IsMalformed reports whether the document could not be parsed as JSON at all.
func (vr *ValidationResult) IsMalformed() bool {
	for _, err := range vr.Errors {
		if err.Code == CodeMalformedJSON {
			return true
		}
	}
	return false
}
