package crag

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractJSON pulls the first JSON object out of a model response,
// tolerating markdown fences and surrounding prose.
func extractJSON(s string) gjson.Result {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return gjson.Result{}
	}
	return gjson.Parse(s[start : end+1])
}

// yesNo interprets model booleans that may arrive as "yes"/"no" strings.
func yesNo(r gjson.Result) bool {
	switch strings.ToLower(strings.TrimSpace(r.String())) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}
