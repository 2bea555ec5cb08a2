package enrich

import "github.com/peerpath/peerpath/internal/llm"

// QuizItemSchema checks a single remote quiz item before it is handed to
// quizgen.NewQuizQuestion.
var QuizItemSchema = &llm.Schema{
	Name:        "quiz-item",
	Description: "A multiple-choice quiz question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"choices": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 4,
			},
			"answerIndex": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 3,
			},
			"explanation": map[string]any{"type": "string"},
			"type":        map[string]any{"type": "string"},
		},
		"required": []any{"question", "choices", "answerIndex"},
	},
}

// LessonItemSchema checks a single enriched lesson.
var LessonItemSchema = &llm.Schema{
	Name:        "lesson-item",
	Description: "An enriched lesson",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
			"short":   map[string]any{"type": "string"},
		},
	},
}

// QuizSetSchema is the object asked for when the provider supports native
// structured output. Items carry only the shape; limits are still checked
// per item so one bad question does not sink the set.
var QuizSetSchema = setSchema("quiz-set", "Multiple-choice quiz questions", "questions", QuizItemSchema)

// LessonSetSchema is the structured counterpart of LessonItemSchema.
var LessonSetSchema = setSchema("lesson-set", "Enriched lessons", "lessons", LessonItemSchema)

func setSchema(name, desc, key string, item *llm.Schema) *llm.Schema {
	return &llm.Schema{
		Name:        name,
		Description: desc,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				key: map[string]any{
					"type":  "array",
					"items": shapeOnly(item.Definition),
				},
			},
			"required":             []any{key},
			"additionalProperties": false,
		},
	}
}

var limitKeywords = map[string]bool{
	"minLength": true,
	"maxLength": true,
	"minItems":  true,
	"maxItems":  true,
	"minimum":   true,
	"maximum":   true,
}

// shapeOnly copies a schema definition without its length and range limits.
func shapeOnly(def map[string]any) map[string]any {
	out := make(map[string]any, len(def)+1)
	for k, v := range def {
		if limitKeywords[k] {
			continue
		}
		switch v := v.(type) {
		case map[string]any:
			if k == "properties" {
				props := make(map[string]any, len(v))
				for name, p := range v {
					if sub, ok := p.(map[string]any); ok {
						props[name] = shapeOnly(sub)
					}
				}
				out[k] = props
			} else {
				out[k] = shapeOnly(v)
			}
		default:
			out[k] = v
		}
	}
	if out["type"] == "object" {
		out["additionalProperties"] = false
	}
	return out
}
