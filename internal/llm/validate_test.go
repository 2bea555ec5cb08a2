package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var lessonDraftSchema = &Schema{
	Name: "test-lesson",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "minLength": 1},
			"count": map[string]any{"type": "integer", "minimum": 0},
			"style": map[string]any{"type": "string", "enum": []string{"mixed", "vocab", "concept", "application"}},
			"answers": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"title", "count"},
	},
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"all fields", `{"title":"Osmosis","count":5,"style":"vocab","answers":[0,2]}`, true},
		{"optional fields left out", `{"title":"Diffusion","count":3}`, true},
		{"missing required", `{"title":"Enzymes"}`, false},
		{"wrong type", `{"title":"Mitosis","count":"ten"}`, false},
		{"below minimum", `{"title":"Mitosis","count":-1}`, false},
		{"empty title", `{"title":"","count":1}`, false},
		{"enum miss", `{"title":"Meiosis","count":4,"style":"essay"}`, false},
		{"bad array item", `{"title":"Osmosis","count":1,"answers":["two"]}`, false},
		{"malformed", `{not json}`, false},
		{"empty", ``, false},
		{"trailing data", `{"title":"a","count":1} {}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(lessonDraftSchema, json.RawMessage(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
			}
			if string(inv.Content) != tt.raw {
				t.Errorf("content = %q, want the rejected input", inv.Content)
			}
		})
	}
}

func TestValidateJSON_NilSchemaAcceptsAnything(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateJSON_SameNameDifferentSchemas(t *testing.T) {
	strict := &Schema{Name: "shared", Definition: map[string]any{"type": "object", "required": []any{"id"}}}
	loose := &Schema{Name: "shared", Definition: map[string]any{"type": "object"}}

	if err := ValidateJSON(strict, json.RawMessage(`{}`)); err == nil {
		t.Fatal("strict schema accepted an object without id")
	}
	if err := ValidateJSON(loose, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("loose schema rejected an empty object: %v", err)
	}
}

func TestValidateJSON_BadDefinition(t *testing.T) {
	broken := &Schema{Name: "broken", Definition: map[string]any{"type": 42}}
	var inv *ErrInvalidResponse
	if err := ValidateJSON(broken, json.RawMessage(`{}`)); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
