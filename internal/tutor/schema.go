package tutor

// resultSchemaName identifies the compiled result schema in the cache.
const resultSchemaName = "session-result"

// resultSchema defines the JSON schema for the normalized result shape
// returned by the ingest and next-step endpoints. The reset
// acknowledgement is deliberately left unvalidated.
var resultSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action":     map[string]any{"type": []any{"string", "null"}},
		"next_node":  map[string]any{"type": []any{"string", "null"}},
		"from_node":  map[string]any{"type": []any{"string", "null"}},
		"confidence": map[string]any{"type": []any{"string", "null"}},
		"ui": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"rationale": map[string]any{"type": []any{"string", "null"}},
				"question": map[string]any{
					"type": []any{"object", "null"},
					"properties": map[string]any{
						"id":     map[string]any{"type": "string"},
						"prompt": map[string]any{"type": "string"},
						"choices": map[string]any{
							"type":  []any{"array", "null"},
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"id", "prompt"},
				},
				"options": map[string]any{
					"type":  []any{"array", "null"},
					"items": map[string]any{"type": "string"},
				},
			},
		},
		"graded": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"correct":  map[string]any{"type": "boolean"},
				"skill":    map[string]any{"type": "string"},
				"expected": map[string]any{"type": "string"},
			},
			"required": []any{"correct", "expected"},
		},
	},
}
