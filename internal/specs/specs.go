// Package specs pulls Tailwind-style design attributes out of component markup.
//
// Tokens are returned exactly as written; nothing is resolved against a theme.
// Each facet is a deduplicated, sorted set.
package specs

import (
	"regexp"
	"slices"
	"strings"
)

// Facet names, as exposed to callers.
const (
	FacetColors     = "colors"
	FacetAnimations = "animations"
	FacetBorders    = "borders"
	FacetSpacing    = "spacing"
	FacetFonts      = "fonts"
)

// Facets lists every facet in display order.
var Facets = []string{FacetColors, FacetAnimations, FacetBorders, FacetSpacing, FacetFonts}

// StyleSpec holds the attribute sets extracted from one body of text.
type StyleSpec struct {
	Colors     []string `json:"colors"`
	Animations []string `json:"animations"`
	Borders    []string `json:"borders"`
	Spacing    []string `json:"spacing"`
	Fonts      []string `json:"fonts"`
}

const palette = `slate|gray|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose`

var (
	colorPattern     = regexp.MustCompile(`\b(?:bg|text|border)-(?:` + palette + `)-\d+\b`)
	animationPattern = regexp.MustCompile(`\banimate-[\w-]+`)
	borderPattern    = regexp.MustCompile(`\brounded-(?:none|sm|md|lg|xl|2xl|3xl|full|\d+)\b`)
	spacingPattern   = regexp.MustCompile(`\b(?:p|m|px|py|pl|pr|pt|pb|mx|my|ml|mr|mt|mb)-\d+\b`)
	fontPattern      = regexp.MustCompile(`\btext-(?:xs|sm|base|lg|xl|2xl|3xl|4xl|5xl|6xl|7xl|8xl|9xl)\b`)
)

// Extract runs every pattern class over text. It never fails; text without
// matches yields empty (non-nil) sets.
func Extract(text string) StyleSpec {
	return StyleSpec{
		Colors:     uniqueMatches(colorPattern, text),
		Animations: uniqueMatches(animationPattern, text),
		Borders:    uniqueMatches(borderPattern, text),
		Spacing:    uniqueMatches(spacingPattern, text),
		Fonts:      uniqueMatches(fontPattern, text),
	}
}

// Facet returns one named facet. ok is false for unknown names.
func (s StyleSpec) Facet(name string) (values []string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FacetColors:
		return s.Colors, true
	case FacetAnimations:
		return s.Animations, true
	case FacetBorders:
		return s.Borders, true
	case FacetSpacing:
		return s.Spacing, true
	case FacetFonts:
		return s.Fonts, true
	}
	return []string{}, false
}

// AsMap returns every facet keyed by name.
func (s StyleSpec) AsMap() map[string][]string {
	out := make(map[string][]string, len(Facets))
	for _, f := range Facets {
		out[f], _ = s.Facet(f)
	}
	return out
}

// IsEmpty reports whether no facet matched anything.
func (s StyleSpec) IsEmpty() bool {
	return len(s.Colors)+len(s.Animations)+len(s.Borders)+len(s.Spacing)+len(s.Fonts) == 0
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
