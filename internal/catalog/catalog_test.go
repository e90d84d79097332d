package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uicatalog/internal/categorize"
	"uicatalog/internal/logging"
	"uicatalog/internal/security"
	"uicatalog/internal/source"
)

const heroSection = `import { cn } from "@/lib/utils"
import { Button } from "./button"
import { Missing } from "./missing"

export function HeroSection() {
  return (
    <section className="bg-blue-500 animate-fade-in rounded-xl p-4 text-2xl">
      <Button />
    </section>
  )
}
`

var secretKey = "sk-" + strings.Repeat("a1B2", 12)

func projectFiles() map[string]string {
	return map[string]string{
		"homepage/components/ui/hero-section.tsx": heroSection,
		"homepage/components/ui/hero-section.md": `---
title: Hero
description: Landing page hero with a fade-in headline.
---
Use above the fold.
`,
		"homepage/components/ui/button.tsx":           `export function Button() { return <button className="px-2" /> }`,
		"homepage/components/ui/leaky.tsx":            `const client = "` + secretKey + `"`,
		"homepage/components/ui/secret-panel.tsx":     `export const menu = "nav"`,
		"homepage/components/navbar.tsx":              `export function Navbar() { return <header>Menu</header> }`,
		"homepage/components/cosmic/hero-section.tsx": `export function CosmicHero() { return <div className="bg-slate-900" /> }`,
		"homepage/components/magicui/marquee.tsx":     `export function Marquee() { return <nav className="animate-marquee" /> }`,
		"homepage/lib/utils.ts":                       `export function cn() {}`,
		"homepage/lib/tokens.ts":                      `export const tokens = {}`,
		"homepage/tailwind.config.ts":                 `export default {}`,
		"homepage/package.json":                       `{"name": "site"}`,
		"homepage/.env":                               `OPENAI_KEY=abc`,
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func newLocalCatalog(t *testing.T) *Catalog {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	src, err := source.NewLocalSource(root, security.Default(), logging.NewDiscardLogger())
	require.NoError(t, err)

	return New(src, Options{
		Name:          "gtm-labs",
		AppDir:        DefaultAppDir,
		ComponentsDir: DefaultComponentsDir,
		LibDir:        DefaultLibDir,
	}, logging.NewDiscardLogger())
}

func asJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestGetSpecs_HeroSection(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetSpecs(context.Background(), "hero-section", "", "")
	require.NoError(t, err)

	assert.Equal(t, "hero-section", got.Component)
	assert.Equal(t, map[string][]string{
		"colors":     {"bg-blue-500"},
		"animations": {"animate-fade-in"},
		"borders":    {"rounded-xl"},
		"spacing":    {"p-4"},
		"fonts":      {"text-2xl"},
	}, got.Specs)
}

func TestGetSpecs_SingleFacet(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetSpecs(context.Background(), "hero-section", "Colors", "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"colors": {"bg-blue-500"}}, got.Specs)

	_, err = c.GetSpecs(context.Background(), "hero-section", "shadows", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetComponent_NotFound(t *testing.T) {
	c := newLocalCatalog(t)

	_, err := c.GetComponent(context.Background(), GetRequest{Name: "nonexistent-x", IncludeDependencies: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.JSONEq(t, `{"error":"Component 'nonexistent-x' not found"}`, asJSON(t, Failure(err)))
}

func TestGetComponent_Blueprint(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetComponent(context.Background(), GetRequest{Name: "hero-section", IncludeDependencies: true})
	require.NoError(t, err)

	assert.Equal(t, "homepage/components/ui/hero-section.tsx", got.Path)
	assert.Equal(t, categorize.Sections, got.Category)
	assert.Equal(t, source.VersionLatest, got.Version)
	assert.Equal(t, heroSection, got.Content)
	assert.Equal(t, []string{"animate-fade-in"}, got.Specs.Animations)

	var deps []string
	for _, d := range got.Dependencies {
		deps = append(deps, d.Path)
	}
	assert.Equal(t, []string{"homepage/lib/utils.ts", "homepage/components/ui/button.tsx"}, deps)

	require.Len(t, got.Omitted, 1)
	assert.Equal(t, "./missing", got.Omitted[0].Specifier)
	assert.Equal(t, "not found", got.Omitted[0].Reason)

	assert.Equal(t, []Alternative{{Path: "homepage/components/cosmic/hero-section.tsx", Category: categorize.Cosmic}}, got.Alternatives)

	require.NotNil(t, got.Docs)
	assert.Equal(t, "Hero", got.Docs.Title)
	assert.Equal(t, "Landing page hero with a fade-in headline.", got.Docs.Description)
	assert.Equal(t, "Use above the fold.", got.Docs.Body)
}

func TestGetComponent_WithoutDependencies(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetComponent(context.Background(), GetRequest{Name: "button"})
	require.NoError(t, err)
	assert.Empty(t, got.Dependencies)
	assert.Empty(t, got.Omitted)
	assert.Empty(t, got.Alternatives)
	assert.Nil(t, got.Docs)
	assert.NotContains(t, asJSON(t, got), `"dependencies"`)
}

func TestGetComponent_CategoryDisambiguates(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetComponent(context.Background(), GetRequest{Name: "hero-section", Category: "Cosmic"})
	require.NoError(t, err)
	assert.Equal(t, "homepage/components/cosmic/hero-section.tsx", got.Path)
	assert.Equal(t, []Alternative{{Path: "homepage/components/ui/hero-section.tsx", Category: categorize.Sections}}, got.Alternatives)

	_, err = c.GetComponent(context.Background(), GetRequest{Name: "hero-section", Category: "magicui"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestGetComponent_RedactsContent(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.GetComponent(context.Background(), GetRequest{Name: "leaky"})
	require.NoError(t, err)
	assert.NotContains(t, got.Content, secretKey)
	assert.Equal(t, `const client = "`+security.RedactedKey+`"`, got.Content)
}

func TestGetComponent_VersionWithoutHistory(t *testing.T) {
	c := newLocalCatalog(t)

	_, err := c.GetComponent(context.Background(), GetRequest{Name: "button", Version: "v1.0.0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrUnsupportedVersion)
	assert.NotEmpty(t, Failure(err).Error)
}

func TestList_AllCategories(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.List(context.Background(), "all", "")
	require.NoError(t, err)

	assert.Len(t, got.Components, len(categorize.All))
	assert.Equal(t, []string{"ui/hero-section.tsx"}, got.Components["sections"])
	assert.Equal(t, []string{"navbar.tsx"}, got.Components["navigation"])
	assert.Equal(t, []string{}, got.Components["animations"])
	assert.Equal(t, []string{"ui/button.tsx", "ui/leaky.tsx"}, got.Components["ui"])
	assert.Equal(t, []string{"cosmic/hero-section.tsx"}, got.Components["cosmic"])
	assert.Equal(t, []string{"magicui/marquee.tsx"}, got.Components["magicui"])
	assert.Empty(t, got.Version)
	assert.Empty(t, got.Note)
}

func TestList_CategoryAndVersion(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.List(context.Background(), "cosmic", "v2.0.0")
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"cosmic": {"cosmic/hero-section.tsx"}}, got.Components)
	assert.Equal(t, "v2.0.0", got.Version)
	assert.Equal(t, "Showing components at version: v2.0.0", got.Note)

	_, err = c.List(context.Background(), "widgets", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, Failure(err).Error, "sections, navigation")
}

func TestList_DirectoryCategories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())
	src, err := source.NewLocalSource(root, nil, nil, source.WithLocalCategorizer(categorize.ParentDir))
	require.NoError(t, err)
	c := New(src, Options{ComponentsDir: DefaultComponentsDir, FreeformCategories: true}, nil)

	got, err := c.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"ui":      {"navbar.tsx", "ui/button.tsx", "ui/hero-section.tsx", "ui/leaky.tsx"},
		"cosmic":  {"cosmic/hero-section.tsx"},
		"magicui": {"magicui/marquee.tsx"},
	}, got.Components)

	got, err = c.List(context.Background(), "widgets", "")
	require.NoError(t, err)
	assert.Empty(t, got.Components)
}

func TestExclusion_EnumerationAndFetchAgree(t *testing.T) {
	c := newLocalCatalog(t)
	ctx := context.Background()

	listed, err := c.List(ctx, "", "")
	require.NoError(t, err)
	for _, paths := range listed.Components {
		for _, p := range paths {
			assert.NotContains(t, p, "secret")
		}
	}

	_, err = c.GetComponent(ctx, GetRequest{Name: "secret-panel"})
	assert.JSONEq(t, `{"error":"Component 'secret-panel' not found"}`, asJSON(t, Failure(err)))

	_, err = c.Source().Fetch(ctx, "homepage/components/ui/secret-panel.tsx", "")
	assert.ErrorIs(t, err, source.ErrNotFound)

	_, err = c.ReadResource(ctx, "gtm-labs://config/.env")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestSearch_Nav(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.Search(context.Background(), "NAV", nil)
	require.NoError(t, err)

	assert.Equal(t, "nav", got.Query)
	assert.Equal(t, []SearchHit{
		{Name: "navbar", Category: categorize.Navigation, Path: "homepage/components/navbar.tsx", Match: MatchName},
		{Name: "marquee", Category: categorize.MagicUI, Path: "homepage/components/magicui/marquee.tsx", Match: MatchContent},
	}, got.Results)
}

func TestSearch_Filters(t *testing.T) {
	c := newLocalCatalog(t)
	ctx := context.Background()

	got, err := c.Search(ctx, "hero", map[string]any{"has_animation": true, "color_scheme": "dark"})
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "homepage/components/ui/hero-section.tsx", got.Results[0].Path)
	assert.Equal(t, []string{"color_scheme"}, got.IgnoredFilters)

	got, err = c.Search(ctx, "hero", map[string]any{"category": "cosmic"})
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, categorize.Cosmic, got.Results[0].Category)

	_, err = c.Search(ctx, "hero", map[string]any{"has_animation": "yes"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Search(ctx, "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearch_NoMatches(t *testing.T) {
	c := newLocalCatalog(t)

	got, err := c.Search(context.Background(), "zzz-nothing", nil)
	require.NoError(t, err)
	assert.NotNil(t, got.Results)
	assert.JSONEq(t, `{"query":"zzz-nothing","results":[]}`, asJSON(t, got))
}

func TestChangelog_WithoutHistory(t *testing.T) {
	c := newLocalCatalog(t)
	ctx := context.Background()

	got, err := c.Changelog(ctx, "", "v1.0.0..v1.2.0", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"project":"gtm-labs","releases":[],"version_range":"v1.0.0..v1.2.0"}`, asJSON(t, got))

	got, err = c.Changelog(ctx, "navbar", "", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"component":"navbar","changelog":[]}`, asJSON(t, got))

	_, err = c.Changelog(ctx, "ghost", "", "")
	assert.JSONEq(t, `{"error":"Component 'ghost' not found"}`, asJSON(t, Failure(err)))
}

// fakeSource is an in-memory source.Source with remote-style categories.
type fakeSource struct {
	kind      source.Kind
	records   []source.ComponentRecord
	files     map[string]string
	revisions map[string][]source.Revision
	fetchErr  error
}

func (f *fakeSource) Kind() source.Kind { return f.kind }

func (f *fakeSource) Enumerate(_ context.Context, dir string, filter source.Filter) ([]source.ComponentRecord, error) {
	var out []source.ComponentRecord
	for _, r := range f.records {
		if strings.HasPrefix(r.Path, dir+"/") && filter.Accepts(r.Path) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Fetch(_ context.Context, p, version string) (source.ContentBundle, error) {
	if f.fetchErr != nil {
		return source.ContentBundle{}, f.fetchErr
	}
	content, ok := f.files[p]
	if !ok {
		return source.ContentBundle{}, source.ErrNotFound
	}
	return source.ContentBundle{Path: p, Version: source.VersionLatest, Content: content}, nil
}

func (f *fakeSource) History(_ context.Context, p string) ([]source.Revision, error) {
	return f.revisions[p], nil
}

func remoteFixture() *fakeSource {
	return &fakeSource{
		kind: source.KindGitHub,
		records: []source.ComponentRecord{
			{Name: "primary", Path: "components/buttons/primary.tsx", RelPath: "buttons/primary.tsx", Category: "buttons"},
			{Name: "card", Path: "components/card.tsx", RelPath: "card.tsx", Category: "components"},
			{Name: "hero", Path: "components/ui/hero.tsx", RelPath: "ui/hero.tsx", Category: categorize.UI},
		},
		files: map[string]string{
			"components/buttons/primary.tsx": `export const Primary = () => <button className="bg-rose-500" />`,
			"components/card.tsx":            `export const Card = () => null`,
			"components/ui/hero.tsx":         `export const Hero = () => null`,
		},
		revisions: map[string][]source.Revision{
			"components/card.tsx": {{Version: "abc1234", Date: "2025-01-02T03:04:05Z", Message: "Add card"}},
			"":                    {{Version: "v1.0.0", Message: "v1.0.0"}},
		},
	}
}

func TestRemote_FreeformCategories(t *testing.T) {
	c := New(remoteFixture(), Options{Name: "marketing", Scheme: "marketing", ComponentsDir: "components"}, nil)
	ctx := context.Background()

	listed, err := c.List(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"ui":         {"ui/hero.tsx"},
		"buttons":    {"buttons/primary.tsx"},
		"components": {"card.tsx"},
	}, listed.Components)

	specsResult, err := c.GetSpecs(ctx, "primary", "colors", "buttons")
	require.NoError(t, err)
	assert.Equal(t, []string{"bg-rose-500"}, specsResult.Specs["colors"])

	log, err := c.Changelog(ctx, "card", "", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"component":"card","changelog":[{"version":"abc1234","date":"2025-01-02T03:04:05Z","message":"Add card"}]}`, asJSON(t, log))

	releases, err := c.Changelog(ctx, "", "", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"project":"marketing","releases":[{"version":"v1.0.0","message":"v1.0.0"}]}`, asJSON(t, releases))
}

func TestSearch_RateLimitStops(t *testing.T) {
	src := remoteFixture()
	src.fetchErr = &source.RateLimitError{}
	c := New(src, Options{ComponentsDir: "components"}, nil)

	_, err := c.Search(context.Background(), "zzz", nil)
	var rl *source.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Contains(t, Failure(err).Error, "set a GitHub token")
}

func TestSearch_SkipsUnreadable(t *testing.T) {
	src := remoteFixture()
	src.fetchErr = &source.UpstreamError{Status: 500, Message: "boom"}
	logger, buf := logging.NewTestLogger()
	c := New(src, Options{ComponentsDir: "components"}, logger)

	got, err := c.Search(context.Background(), "card", nil)
	require.NoError(t, err)
	assert.Equal(t, []SearchHit{{Name: "card", Category: "components", Path: "components/card.tsx", Match: MatchName}}, got.Results)
	assert.Contains(t, buf.String(), "Skipping unreadable component")
}

func TestFailure(t *testing.T) {
	assert.Equal(t, ErrorResult{}, Failure(nil))
	assert.Equal(t, "Resource not found", Failure(ErrResourceNotFound).Error)
	assert.Equal(t, "boom", Failure(errors.New("boom")).Error)
	assert.Contains(t, Failure(context.DeadlineExceeded).Error, "timed out")

	assert.Equal(t, "ok", Respond("ok", nil))
	assert.Equal(t, ErrorResult{Error: "boom"}, Respond("ok", errors.New("boom")))
}
