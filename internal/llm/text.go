package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONArray is returned when a completion holds no bracketed array.
var ErrNoJSONArray = errors.New("no JSON array in completion")

// textContent wraps completion text as a JSON string.
func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// Text returns the completion text of a schema-less response. Content that
// is not a JSON string is returned as is.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	raw := strings.TrimSpace(string(r.Content))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
	}
	return raw
}

// StripCodeFences removes a surrounding Markdown code fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONArray returns the span from the first '[' to the last ']'
// of a fence-stripped completion. Prose around the array is discarded.
func ExtractJSONArray(s string) (json.RawMessage, error) {
	s = StripCodeFences(s)
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return nil, ErrNoJSONArray
	}
	span := json.RawMessage(s[start : end+1])
	if !json.Valid(span) {
		return nil, &ErrInvalidResponse{Content: span, Err: ErrNoJSONArray}
	}
	return span, nil
}
