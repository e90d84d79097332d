// Package categorize sorts component files into the catalog taxonomy.
package categorize

import (
	"path"
	"slices"
	"strings"
)

// Category names a bucket of components.
type Category string

const (
	Sections    Category = "sections"
	Navigation  Category = "navigation"
	Animations  Category = "animations"
	UI          Category = "ui"
	Cosmic      Category = "cosmic"
	MagicUI     Category = "magicui"
	Experiments Category = "experiments"
)

// All lists the local taxonomy in its canonical order. Listings and
// first-match lookups walk categories in this order.
var All = []Category{Sections, Navigation, Animations, UI, Cosmic, MagicUI, Experiments}

// String returns the category name.
func (c Category) String() string { return string(c) }

// IsKnown reports whether c belongs to the fixed local taxonomy.
func (c Category) IsKnown() bool { return slices.Contains(All, c) }

// Parse converts user input to a Category. "all" and "" return ok=false.
func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsKnown() {
		return c, true
	}
	return "", false
}

var navigationKeywords = []string{"nav", "header", "footer"}

// Local categorizes relPath, a slash path relative to the components directory.
//
// Directory segments win over filename keywords: cosmic, magicui and
// experiments directories claim everything below them. Under a ui directory
// the stem decides between sections, animations and ui. Files outside those
// directories are navigation when the stem mentions nav/header/footer and ui
// otherwise.
func Local(relPath string) Category {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	dirs := dirSegments(relPath)
	stem := strings.ToLower(Stem(relPath))

	switch {
	case slices.Contains(dirs, "cosmic"):
		return Cosmic
	case slices.Contains(dirs, "magicui"):
		return MagicUI
	case slices.Contains(dirs, "experiments"):
		return Experiments
	case slices.Contains(dirs, "ui"):
		if strings.Contains(stem, "section") {
			return Sections
		}
		if strings.Contains(stem, "animation") {
			return Animations
		}
		return UI
	}

	for _, kw := range navigationKeywords {
		if strings.Contains(stem, kw) {
			return Navigation
		}
	}
	return UI
}

// ParentDir categorizes by the name of the directory holding the file. Files at
// the top of the enumerated tree fall back to ui.
func ParentDir(relPath string) Category {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	dir := path.Dir(relPath)
	if dir == "." || dir == "/" || dir == "" {
		return UI
	}
	return Category(path.Base(dir))
}

// Stem returns the file name without its final extension.
func Stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func dirSegments(relPath string) []string {
	dir := path.Dir(relPath)
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(strings.Trim(dir, "/"), "/")
}
