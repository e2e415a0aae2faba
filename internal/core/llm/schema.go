package llm

import (
	"encoding/json"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// fieldSchema accepts either {"value","confidence"} or a bare scalar.
func fieldSchema() map[string]any {
	scalar := map[string]any{"type": []any{"string", "number"}}
	return map[string]any{
		"anyOf": []any{
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"value":      scalar,
					"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
				},
				"required": []any{"value"},
			},
			scalar,
			map[string]any{"type": "null"},
		},
	}
}

// ResponseSchema returns the JSON Schema for the extraction reply of docType.
func ResponseSchema(docType constants.DocumentType) map[string]any {
	names := document.FieldNames(docType)
	if len(names) == 0 {
		return map[string]any{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type":    "object",
			"properties": map[string]any{
				"rawText": map[string]any{"type": "string"},
				"fields": map[string]any{
					"type":                 "object",
					"additionalProperties": fieldSchema(),
				},
			},
		}
	}
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = fieldSchema()
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// DetectionSchema is the schema of the classification reply.
func DetectionSchema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"documentType": map[string]any{"type": "string", "minLength": 1},
			"confidence":   map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		},
		"required": []any{"documentType"},
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
