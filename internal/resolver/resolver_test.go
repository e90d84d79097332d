package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uicatalog/internal/logging"
	"uicatalog/internal/source"
)

// memSource is an in-memory source.Source keyed by path.
type memSource struct {
	files   map[string]string
	fail    map[string]error
	fetches []string
}

func (m *memSource) Kind() source.Kind { return "memory" }

func (m *memSource) Enumerate(context.Context, string, source.Filter) ([]source.ComponentRecord, error) {
	return nil, nil
}

func (m *memSource) Fetch(_ context.Context, p, version string) (source.ContentBundle, error) {
	m.fetches = append(m.fetches, p)
	if err, ok := m.fail[p]; ok {
		return source.ContentBundle{}, err
	}
	content, ok := m.files[p]
	if !ok {
		return source.ContentBundle{}, source.ErrNotFound
	}
	if version == "" {
		version = source.VersionLatest
	}
	return source.ContentBundle{Path: p, Version: version, Content: content}, nil
}

func (m *memSource) History(context.Context, string) ([]source.Revision, error) {
	return []source.Revision{}, nil
}

func depPaths(b Bundle) []string {
	out := make([]string, len(b.Dependencies))
	for i, d := range b.Dependencies {
		out[i] = d.Path
	}
	return out
}

func siteFiles() map[string]string {
	return map[string]string{
		"homepage/components/ui/hero-section.tsx": `import { cn } from "@/lib/utils"
import { Button } from "./button"
import { Missing } from "./missing"
import Outside from "../../../../etc/passwd"
import { motion } from "framer-motion"`,
		"homepage/lib/utils.ts":             `import { clsx } from "clsx"; import "./tokens"`,
		"homepage/lib/tokens.tsx":           `export const tokens = {}`,
		"homepage/components/ui/button.tsx": `import { cn } from "@/lib/utils"`,
	}
}

func TestResolve_ShallowByDefault(t *testing.T) {
	src := &memSource{files: siteFiles()}
	logger, buf := logging.NewTestLogger()
	r := New(Options{AppDir: "homepage"}, logger)
	require.Equal(t, 1, r.Depth())

	b, err := r.Resolve(context.Background(), src, "homepage/components/ui/hero-section.tsx", "latest")
	require.NoError(t, err)

	assert.Equal(t, "homepage/components/ui/hero-section.tsx", b.Root.Path)
	assert.Equal(t, []string{"homepage/lib/utils.ts", "homepage/components/ui/button.tsx"}, depPaths(b))

	require.Len(t, b.Omitted, 2)
	assert.Equal(t, Omission{
		Path:      "homepage/components/ui/missing.tsx",
		Specifier: "./missing",
		Importer:  "homepage/components/ui/hero-section.tsx",
		Reason:    "not found",
	}, b.Omitted[0])
	assert.Equal(t, "../../../../etc/passwd", b.Omitted[1].Specifier)
	assert.Empty(t, b.Omitted[1].Path)

	assert.NotContains(t, src.fetches, "homepage/lib/tokens.tsx", "depth 1 must not parse dependencies")
	assert.Contains(t, buf.String(), "Skipping dependency")
	assert.Contains(t, buf.String(), "./missing")
}

func TestResolve_Transitive(t *testing.T) {
	src := &memSource{files: siteFiles()}
	r := New(Options{AppDir: "homepage", Depth: 3}, nil)

	b, err := r.Resolve(context.Background(), src, "homepage/components/ui/hero-section.tsx", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"homepage/lib/utils.ts",
		"homepage/components/ui/button.tsx",
		"homepage/lib/tokens.tsx",
	}, depPaths(b), "utils is reached twice but bundled once")
}

func TestResolve_SelfImportAndCycleTerminate(t *testing.T) {
	src := &memSource{files: map[string]string{
		"c/a.tsx": `import "./a"; import "./b"`,
		"c/b.tsx": `import "./a"; import "./b.tsx"`,
	}}
	r := New(Options{Depth: MaxDepth + 5}, nil)
	assert.Equal(t, MaxDepth, r.Depth())

	b, err := r.Resolve(context.Background(), src, "c/a.tsx", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"c/b.tsx"}, depPaths(b))
	assert.Empty(t, b.Omitted)
}

func TestResolve_ExtensionFallback(t *testing.T) {
	src := &memSource{files: map[string]string{
		"app/page.tsx":             `import { Grid } from "@/components/grid"; import cfg from "./config"`,
		"components/grid/index.ts": `export const Grid = 1`,
		"app/config.js":            `module.exports = {}`,
	}}
	r := New(Options{AppDir: ""}, nil)

	b, err := r.Resolve(context.Background(), src, "app/page.tsx", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"components/grid/index.ts", "app/config.js"}, depPaths(b))
}

func TestResolve_ExplicitExtensionDoesNotShadowDefault(t *testing.T) {
	src := &memSource{files: map[string]string{
		"c/root.tsx":   `import "./theme.ts"` + "\n" + `import Theme from "./theme"` + "\n" + `import "./palette.ts"; import "./palette"`,
		"c/theme.ts":   `export const mode = "dark"`,
		"c/theme.tsx":  `export default function Theme() {}`,
		"c/palette.ts": `export const palette = {}`,
	}}

	b, err := New(Options{}, nil).Resolve(context.Background(), src, "c/root.tsx", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"c/theme.ts", "c/theme.tsx", "c/palette.ts"}, depPaths(b))
	assert.Empty(t, b.Omitted)
}

func TestResolve_UpstreamFailureIsOmission(t *testing.T) {
	rateLimited := &source.RateLimitError{}
	src := &memSource{
		files: map[string]string{"x/root.tsx": `import "./dep"`},
		fail:  map[string]error{"x/dep.tsx": rateLimited},
	}
	r := New(Options{}, nil)

	b, err := r.Resolve(context.Background(), src, "x/root.tsx", "")
	require.NoError(t, err)
	assert.Empty(t, b.Dependencies)
	require.Len(t, b.Omitted, 1)
	assert.Contains(t, b.Omitted[0].Reason, "rate limit")
	assert.NotContains(t, src.fetches, "x/dep.ts", "non-NotFound errors stop the candidate search")
}

func TestResolve_RootMissing(t *testing.T) {
	r := New(Options{}, nil)
	_, err := r.Resolve(context.Background(), &memSource{files: map[string]string{}}, "nope.tsx", "")
	assert.True(t, errors.Is(err, source.ErrNotFound))
}

func TestResolve_VersionPropagates(t *testing.T) {
	src := &memSource{files: map[string]string{
		"a.tsx": `import "./b"`,
		"b.tsx": `export {}`,
	}}
	b, err := New(Options{}, nil).Resolve(context.Background(), src, "a.tsx", "v1.2.0")
	require.NoError(t, err)
	require.Len(t, b.Dependencies, 1)
	assert.Equal(t, "v1.2.0", b.Dependencies[0].Version)
}

func TestResolve_LargeFanOut(t *testing.T) {
	var imports strings.Builder
	files := map[string]string{}
	for i := 0; i < 50; i++ {
		name := "n" + strings.Repeat("x", i)
		imports.WriteString(`import "./` + name + `"` + "\n")
		files["f/"+name+".tsx"] = `import "./root"`
	}
	files["f/root.tsx"] = imports.String()

	b, err := New(Options{Depth: 4}, nil).Resolve(context.Background(), &memSource{files: files}, "f/root.tsx", "")
	require.NoError(t, err)
	assert.Len(t, b.Dependencies, 50)
	assert.Empty(t, b.Omitted)
}
