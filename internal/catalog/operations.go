package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"uicatalog/internal/categorize"
	"uicatalog/internal/resolver"
	"uicatalog/internal/source"
	"uicatalog/internal/specs"
)

// ListResult maps each category to component paths relative to the
// components directory.
type ListResult struct {
	Components map[string][]string `json:"components"`
	Version    string              `json:"version,omitempty"`
	Note       string              `json:"note,omitempty"`
}

// List enumerates components, optionally restricted to one category. For a
// catalog using the fixed taxonomy an unknown category is an invalid
// argument; freeform catalogs accept any name.
//
// version is reported back but does not change the enumeration: listings
// always reflect the current tree.
func (c *Catalog) List(ctx context.Context, category, version string) (ListResult, error) {
	want := normalizeCategory(category)
	if want != "" && c.taxonomy() {
		if _, ok := categorize.Parse(want); !ok {
			return ListResult{}, invalidArgument("unknown category %q (expected all or one of %s)", category, joinCategories(categorize.All))
		}
	}

	records, err := c.components(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to enumerate components: %w", err)
	}

	result := ListResult{Components: map[string][]string{}}

	// Taxonomy listings always show every category, empty buckets included.
	if c.taxonomy() {
		for _, cat := range categorize.All {
			if want == "" || want == string(cat) {
				result.Components[string(cat)] = []string{}
			}
		}
	}

	for _, rec := range records {
		cat := string(rec.Category)
		if want != "" && want != cat {
			continue
		}
		result.Components[cat] = append(result.Components[cat], rec.RelPath)
	}

	if v := strings.TrimSpace(version); v != "" {
		result.Version = v
		result.Note = "Showing components at version: " + v
	}
	return result, nil
}

func joinCategories(cats []categorize.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// GetRequest holds the arguments of GetComponent.
type GetRequest struct {
	Name     string
	Version  string
	Category string

	IncludeDependencies bool
}

// ComponentResult is the full blueprint of one component.
type ComponentResult struct {
	Name         string                 `json:"name"`
	Path         string                 `json:"path"`
	Category     categorize.Category    `json:"category"`
	Version      string                 `json:"version"`
	Content      string                 `json:"content"`
	Specs        specs.StyleSpec        `json:"specs"`
	Dependencies []source.ContentBundle `json:"dependencies,omitempty"`
	Omitted      []resolver.Omission    `json:"omitted,omitempty"`
	Alternatives []Alternative          `json:"alternatives,omitempty"`
	Docs         *Docs                  `json:"docs,omitempty"`
}

// GetComponent looks name up (first match wins), fetches it at req.Version
// and extracts its style spec. With IncludeDependencies the resolver adds
// the imported local files; dependencies that cannot be fetched are listed
// under Omitted instead of failing the call.
func (c *Catalog) GetComponent(ctx context.Context, req GetRequest) (*ComponentResult, error) {
	defer c.logger.LogPerformance("get component", time.Now())

	rec, alts, err := c.find(ctx, req.Name, req.Category)
	if err != nil {
		return nil, err
	}

	var bundle resolver.Bundle
	if req.IncludeDependencies {
		bundle, err = c.resolver.Resolve(ctx, c.src, rec.Path, req.Version)
	} else {
		bundle.Root, err = c.src.Fetch(ctx, rec.Path, req.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rec.Path, err)
	}

	result := &ComponentResult{
		Name:         rec.Name,
		Path:         rec.Path,
		Category:     rec.Category,
		Version:      bundle.Root.Version,
		Content:      bundle.Root.Content,
		Specs:        specs.Extract(bundle.Root.Content),
		Dependencies: bundle.Dependencies,
		Omitted:      bundle.Omitted,
		Alternatives: alts,
		Docs:         c.docsFor(ctx, rec.Path),
	}

	if len(alts) > 0 {
		c.logger.Debug("Ambiguous component name", "name", rec.Name, "chosen", rec.Path, "alternatives", len(alts))
	}
	return result, nil
}

// SpecsResult carries a component's style spec, or a single facet of it.
type SpecsResult struct {
	Component string              `json:"component"`
	Path      string              `json:"path"`
	Specs     map[string][]string `json:"specs"`
}

// GetSpecs extracts the style spec of the latest version of name. property
// selects one facet; "" and "all" return every facet.
func (c *Catalog) GetSpecs(ctx context.Context, name, property, category string) (SpecsResult, error) {
	property = strings.ToLower(strings.TrimSpace(property))
	if property != "" && property != "all" && !slices.Contains(specs.Facets, property) {
		return SpecsResult{}, invalidArgument("unknown property '%s' (expected one of %s)", property, strings.Join(specs.Facets, ", "))
	}

	rec, _, err := c.find(ctx, name, category)
	if err != nil {
		return SpecsResult{}, err
	}

	bundle, err := c.src.Fetch(ctx, rec.Path, source.VersionLatest)
	if err != nil {
		return SpecsResult{}, fmt.Errorf("failed to fetch %s: %w", rec.Path, err)
	}

	extracted := specs.Extract(bundle.Content)
	result := SpecsResult{Component: rec.Name, Path: rec.Path}
	if property == "" || property == "all" {
		result.Specs = extracted.AsMap()
	} else {
		values, _ := extracted.Facet(property)
		result.Specs = map[string][]string{property: values}
	}
	return result, nil
}

// Match kinds reported by Search.
const (
	MatchName    = "name"
	MatchContent = "content"
)

// SearchHit is one component matched by Search.
type SearchHit struct {
	Name     string              `json:"name"`
	Category categorize.Category `json:"category"`
	Path     string              `json:"path"`
	Match    string              `json:"match"`
}

// SearchResult lists the hits for a query.
type SearchResult struct {
	Query          string      `json:"query"`
	Results        []SearchHit `json:"results"`
	IgnoredFilters []string    `json:"ignored_filters,omitempty"`
}

type searchFilters struct {
	category     string
	hasAnimation *bool
}

// Search matches query case-insensitively against component names, falling
// back to the redacted content of components whose name does not match.
//
// Supported filters are "category" (string) and "has_animation" (bool).
// Other keys are ignored and echoed back in IgnoredFilters.
func (c *Catalog) Search(ctx context.Context, query string, filters map[string]any) (SearchResult, error) {
	defer c.logger.LogPerformance("search components", time.Now())

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return SearchResult{}, invalidArgument("query cannot be empty")
	}

	sf, ignored, err := parseFilters(filters)
	if err != nil {
		return SearchResult{}, err
	}

	records, err := c.components(ctx)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to enumerate components: %w", err)
	}

	result := SearchResult{Query: needle, Results: []SearchHit{}, IgnoredFilters: ignored}
	for _, rec := range records {
		if sf.category != "" && string(rec.Category) != sf.category {
			continue
		}

		nameMatch := strings.Contains(strings.ToLower(rec.Name), needle)

		var content string
		if !nameMatch || sf.hasAnimation != nil {
			bundle, err := c.src.Fetch(ctx, rec.Path, source.VersionLatest)
			if err != nil {
				if stop := searchAbort(err); stop != nil {
					return SearchResult{}, stop
				}
				c.logger.Warn("Skipping unreadable component during search", "path", rec.Path, "error", err)
				continue
			}
			content = bundle.Content
		}

		match := MatchName
		if !nameMatch {
			if !strings.Contains(strings.ToLower(content), needle) {
				continue
			}
			match = MatchContent
		}

		if sf.hasAnimation != nil {
			animated := len(specs.Extract(content).Animations) > 0
			if animated != *sf.hasAnimation {
				continue
			}
		}

		result.Results = append(result.Results, SearchHit{
			Name:     rec.Name,
			Category: rec.Category,
			Path:     rec.Path,
			Match:    match,
		})
	}
	return result, nil
}

// searchAbort returns the error that should end a search early. Missing or
// unreadable files are skipped; quota exhaustion and cancellation are not.
func searchAbort(err error) error {
	var rateLimit *source.RateLimitError
	if errors.As(err, &rateLimit) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func parseFilters(filters map[string]any) (searchFilters, []string, error) {
	var (
		sf      searchFilters
		ignored []string
	)
	for key, raw := range filters {
		switch key {
		case "category":
			s, ok := raw.(string)
			if !ok {
				return sf, nil, invalidArgument("filter 'category' must be a string")
			}
			sf.category = normalizeCategory(s)
		case "has_animation":
			b, ok := raw.(bool)
			if !ok {
				return sf, nil, invalidArgument("filter 'has_animation' must be a boolean")
			}
			sf.hasAnimation = &b
		default:
			ignored = append(ignored, key)
		}
	}
	slices.Sort(ignored)
	return sf, ignored, nil
}

// ChangelogResult is either a component's revision log or the project's
// release list.
type ChangelogResult struct {
	Component    string
	Project      string
	Revisions    []source.Revision
	VersionRange string
}

// MarshalJSON emits {component, changelog} for a component and
// {project, releases} for the whole project.
func (r ChangelogResult) MarshalJSON() ([]byte, error) {
	revisions := r.Revisions
	if revisions == nil {
		revisions = []source.Revision{}
	}

	doc := map[string]any{}
	if r.Component != "" {
		doc["component"] = r.Component
		doc["changelog"] = revisions
	} else {
		doc["project"] = r.Project
		doc["releases"] = revisions
	}
	if r.VersionRange != "" {
		doc["version_range"] = r.VersionRange
	}
	return json.Marshal(doc)
}

// Changelog returns the revisions touching component, newest first, or the
// project's release tags when component is empty. versionRange is echoed
// back and does not filter the history.
func (c *Catalog) Changelog(ctx context.Context, component, versionRange, category string) (ChangelogResult, error) {
	result := ChangelogResult{VersionRange: strings.TrimSpace(versionRange)}

	var historyPath string
	if name := strings.TrimSpace(component); name != "" {
		rec, _, err := c.find(ctx, name, category)
		if err != nil {
			return ChangelogResult{}, err
		}
		result.Component = rec.Name
		historyPath = rec.Path
	} else {
		result.Project = c.opts.Name
	}

	revisions, err := c.src.History(ctx, historyPath)
	if err != nil {
		return ChangelogResult{}, fmt.Errorf("failed to read history: %w", err)
	}
	result.Revisions = revisions
	return result, nil
}
