// Package schema checks YAML documents against JSON schemas before they are
// decoded into typed structs, so a malformed matrix or overlay file fails with
// every problem listed instead of the first decode error.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Document string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed validation: %s", e.Document, strings.Join(e.Problems, "; "))
}

// ValidateYAML parses raw as YAML and validates it against the JSON schema.
// name identifies the document in errors.
func ValidateYAML(name string, schemaJSON, raw []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return &ValidationError{Document: name, Problems: problems}
	}

	return nil
}
