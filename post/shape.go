package post

import (
	"strings"

	"github.com/tripseek/tripseek/schema"
)

// TrimSummary shortens a free-text summary for display, cutting at a
// word boundary and appending an ellipsis.
func TrimSummary(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > maxLen/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// SynthesizeAddress fills missing addresses from city and state so every
// result renders with a location line.
func SynthesizeAddress(pois []schema.POI) {
	for i := range pois {
		if pois[i].Address != "" {
			continue
		}
		switch {
		case pois[i].City != "" && pois[i].State != "":
			pois[i].Address = pois[i].City + ", " + pois[i].State
		case pois[i].City != "":
			pois[i].Address = pois[i].City
		}
	}
}
