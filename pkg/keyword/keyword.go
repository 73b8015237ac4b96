package keyword

import "strings"

// Gate decides whether a fetched page belongs in the results. A page is
// accepted when every required keyword appears and no excluded keyword
// appears in its title or text. Both lists empty means accept all.
//
// The gate only affects result membership: rejected pages still have
// their links expanded by the crawl loop.
type Gate struct {
	required      []string
	excluded      []string
	caseSensitive bool
}

// NewGate creates a Gate. With caseSensitive false, matching lowercases
// both keywords and page content.
func NewGate(required, excluded []string, caseSensitive bool) *Gate {
	g := &Gate{caseSensitive: caseSensitive}
	g.required = g.prepare(required)
	g.excluded = g.prepare(excluded)
	return g
}

// Accept reports whether a page with the given title and text passes
// the keyword filters.
func (g *Gate) Accept(title, text string) bool {
	if len(g.required) == 0 && len(g.excluded) == 0 {
		return true
	}

	haystack := title + " " + text
	if !g.caseSensitive {
		haystack = strings.ToLower(haystack)
	}

	for _, keyword := range g.required {
		if !strings.Contains(haystack, keyword) {
			return false
		}
	}
	for _, keyword := range g.excluded {
		if strings.Contains(haystack, keyword) {
			return false
		}
	}
	return true
}

// Empty reports whether the gate has no keywords configured.
func (g *Gate) Empty() bool {
	return len(g.required) == 0 && len(g.excluded) == 0
}

func (g *Gate) prepare(keywords []string) []string {
	prepared := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if !g.caseSensitive {
			keyword = strings.ToLower(keyword)
		}
		prepared = append(prepared, keyword)
	}
	return prepared
}
