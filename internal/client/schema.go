package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resultSchemaURL = "schema://validation-result.json"

// resultSchema describes the shape of a validation result. It checks types
// only: every field is optional and extra fields are allowed.
const resultSchema = `{
  "type": "object",
  "properties": {
    "results": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "question":               {"type": ["string", "null"]},
          "best_matching_syllabus": {"type": ["string", "null"]},
          "similarity_score":       {"type": ["number", "string", "null"]},
          "coherent":               {"type": ["string", "null"]}
        }
      }
    },
    "accuracy":               {"type": ["number", "string", "null"]},
    "precision":              {"type": ["number", "string", "null"]},
    "recall":                 {"type": ["number", "string", "null"]},
    "f1_score":               {"type": ["number", "string", "null"]},
    "confusion_matrix_image": {"type": ["string", "null"]}
  }
}`

var compiledResultSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(resultSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resultSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(resultSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
})

// decodeResult checks raw against the result schema and decodes it.
func decodeResult(raw []byte) (*Result, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compiledResultSchema()
	if err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	return &res, nil
}
