// Package destination normalizes user destination text into the set of
// city names treated as matches during retrieval filtering. It is a pure
// lookup over a static metro-area table; unknown cities pass through.
package destination

import (
	"regexp"
	"strings"
)

// metroAliases maps a primary city to every city/town in its metro area.
// Matching any member of a group (case-insensitive) returns the whole
// group.
var metroAliases = map[string][]string{
	// Miami-Fort Lauderdale-Pompano Beach MSA
	"Miami": {
		"Miami",
		"Miami Beach",
		"Hialeah",
		"Coral Gables",
		"Fort Lauderdale",
		"Hollywood",
		"Pompano Beach",
		"Boca Raton",
		"Deerfield Beach",
		"Aventura",
	},
	// Florida Keys
	"Key West": {
		"Key West",
		"Key Largo",
		"Islamorada",
		"Marathon",
		"Big Pine Key",
		"Tavernier",
	},
	// Orlando-Kissimmee-Sanford MSA
	"Orlando": {
		"Orlando",
		"Kissimmee",
		"Winter Park",
		"Lake Buena Vista",
		"Sanford",
		"Altamonte Springs",
	},
	// Tampa-St. Petersburg-Clearwater MSA
	"Tampa": {
		"Tampa",
		"St. Petersburg",
		"Clearwater",
		"Brandon",
		"Largo",
		"Palm Harbor",
	},
	"Jacksonville": {
		"Jacksonville",
		"Jacksonville Beach",
		"Neptune Beach",
		"Atlantic Beach",
		"St. Augustine",
	},
	"Naples": {
		"Naples",
		"Marco Island",
		"Bonita Springs",
	},
	"West Palm Beach": {
		"West Palm Beach",
		"Palm Beach",
		"Delray Beach",
		"Boynton Beach",
	},
}

var splitPattern = regexp.MustCompile(`(?i)\s+and\s+|,\s*|/\s*|\s*&\s*`)

// Parse splits a possibly compound destination string on "and", comma,
// "/" and "&" (case-insensitive), trimming whitespace and dropping empty
// segments. "Miami and Key West" becomes ["Miami", "Key West"].
func Parse(destination string) []string {
	if strings.TrimSpace(destination) == "" {
		return nil
	}
	parts := splitPattern.Split(destination, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandCity returns every city in the metro area of name, matched
// case-insensitively against primaries and aliases. Unknown cities come
// back as a single-element slice holding the input verbatim.
func ExpandCity(name string) []string {
	needle := strings.ToLower(strings.TrimSpace(name))
	for primary, aliases := range metroAliases {
		if needle == strings.ToLower(primary) {
			return aliases
		}
		for _, alias := range aliases {
			if needle == strings.ToLower(alias) {
				return aliases
			}
		}
	}
	return []string{name}
}

// ResolveValidCities unions ExpandCity over all parsed destinations and
// lower-cases the result for membership testing.
func ResolveValidCities(destinations []string) map[string]struct{} {
	valid := make(map[string]struct{})
	for _, dest := range destinations {
		for _, city := range ExpandCity(dest) {
			valid[strings.ToLower(city)] = struct{}{}
		}
	}
	return valid
}

// ResolveDestination is the common one-step form: parse then resolve.
func ResolveDestination(destination string) map[string]struct{} {
	return ResolveValidCities(Parse(destination))
}
