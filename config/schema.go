package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Structural schema for the YAML configuration. Credentials are not
// required here because the environment may supply them; that check
// happens after the merge in Load.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["testrail"],
  "additionalProperties": false,
  "properties": {
    "testrail": {
      "type": "object",
      "required": ["base_url", "project_id"],
      "additionalProperties": false,
      "properties": {
        "base_url": {"type": "string", "minLength": 1},
        "username": {"type": "string"},
        "api_key": {"type": "string"},
        "project_id": {"type": "integer", "minimum": 1},
        "suite_id": {"type": "integer", "minimum": 1},
        "timeout": {"type": "integer", "minimum": 1}
      }
    },
    "cases": {
      "type": "object",
      "additionalProperties": {
        "anyOf": [
          {"type": ["string", "integer"]},
          {"type": "array", "items": {"type": ["string", "integer"]}}
        ]
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("railbridge.schema.json", schemaJSON)

// validateSchema checks the raw YAML document against the embedded
// schema. The document is round-tripped through JSON so the validator
// sees plain JSON types.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return fmt.Errorf("normalizing document: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
