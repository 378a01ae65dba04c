package stages

import (
	"encoding/json"
	"strings"
)

// decodeModelJSON parses a model reply into v, tolerating markdown code
// fences and prose around the JSON object. Returns false when no parseable
// object is present.
func decodeModelJSON(raw string, v any) bool {
	candidate := strings.TrimSpace(raw)
	candidate = strings.TrimPrefix(candidate, "```json")
	candidate = strings.TrimPrefix(candidate, "```")
	candidate = strings.TrimSuffix(candidate, "```")
	candidate = strings.TrimSpace(candidate)

	if json.Unmarshal([]byte(candidate), v) == nil {
		return true
	}

	// Fall back to the outermost braces.
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(candidate[start:end+1]), v) == nil
}
