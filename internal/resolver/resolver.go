// Package resolver builds the dependency bundle of a component by following
// its static local imports through a source.Source.
//
// Resolution is textual: specifiers are parsed with a regular expression and
// mapped to paths, nothing is type-checked or compiled. With Depth 1 only the
// root's direct imports are collected. Larger depths walk imports of imports;
// a visited set keyed by canonical path guarantees termination on cycles and
// self-imports.
//
// A dependency that cannot be fetched is reported as an Omission and logged;
// it never fails the whole bundle.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uicatalog/internal/logging"
	"uicatalog/internal/source"
)

const (
	// DefaultDepth collects direct imports only.
	DefaultDepth = 1

	// MaxDepth caps transitive walks regardless of configuration.
	MaxDepth = 10
)

// Options configures a Resolver.
type Options struct {
	// AppDir is the root-relative directory "@/" maps to.
	AppDir string

	// Depth is the number of import levels to follow. Zero means DefaultDepth.
	Depth int
}

// Omission records a dependency that was referenced but not included.
type Omission struct {
	Path      string `json:"path"`
	Specifier string `json:"specifier"`
	Importer  string `json:"importer"`
	Reason    string `json:"reason"`
}

// Bundle is a root artifact plus its resolved dependencies.
type Bundle struct {
	Root         source.ContentBundle   `json:"root"`
	Dependencies []source.ContentBundle `json:"dependencies"`
	Omitted      []Omission             `json:"omitted"`
}

// Resolver follows imports through one source.
type Resolver struct {
	appDir string
	depth  int
	logger *logging.AppLogger
}

// New returns a Resolver. A nil logger discards output.
func New(opts Options, logger *logging.AppLogger) *Resolver {
	depth := opts.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Resolver{appDir: opts.AppDir, depth: depth, logger: logger}
}

// Depth reports the effective import depth.
func (r *Resolver) Depth() int { return r.depth }

// Resolve fetches rootPath at version and collects its dependencies. Only a
// failure to fetch the root itself is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, src source.Source, rootPath, version string) (Bundle, error) {
	root, err := src.Fetch(ctx, rootPath, version)
	if err != nil {
		return Bundle{}, err
	}
	return r.Expand(ctx, src, root), nil
}

type queued struct {
	bundle source.ContentBundle
	level  int
}

// Expand collects dependencies for an already fetched root. Every
// dependency is fetched from src at the root's version.
func (r *Resolver) Expand(ctx context.Context, src source.Source, root source.ContentBundle) Bundle {
	defer r.logger.LogPerformance("resolve dependencies", time.Now())

	out := Bundle{
		Root:         root,
		Dependencies: []source.ContentBundle{},
		Omitted:      []Omission{},
	}

	visited := map[string]bool{root.Path: true}
	// resolvedTo remembers which file each extensionless specifier landed on.
	resolvedTo := map[string]string{}
	queue := []queued{{bundle: root, level: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.level >= r.depth {
			continue
		}

		for _, spec := range ParseImports(current.bundle.Content) {
			if ctx.Err() != nil {
				out.Omitted = append(out.Omitted, r.omit(current.bundle.Path, spec, "", ctx.Err()))
				continue
			}

			resolved, ok := ResolveSpecifier(current.bundle.Path, spec, r.appDir)
			if !ok {
				out.Omitted = append(out.Omitted, r.omit(current.bundle.Path, spec, "", errors.New("specifier leaves the project root")))
				continue
			}

			candidates := Candidates(resolved)
			if _, ok := resolvedTo[resolved]; ok || visited[candidates[0]] {
				continue
			}

			// A later candidate being visited says nothing about which file
			// this specifier picks, so only the fetched path is deduplicated.
			dep, err := fetchFirst(ctx, src, candidates, root.Version)
			if err != nil {
				out.Omitted = append(out.Omitted, r.omit(current.bundle.Path, spec, candidates[0], err))
				continue
			}
			resolvedTo[resolved] = dep.Path
			if visited[dep.Path] {
				continue
			}
			visited[dep.Path] = true

			out.Dependencies = append(out.Dependencies, dep)
			queue = append(queue, queued{bundle: dep, level: current.level + 1})
		}
	}

	return out
}

// fetchFirst returns the first candidate that exists. Errors other than
// NotFound (rate limits, upstream failures) stop the search.
func fetchFirst(ctx context.Context, src source.Source, candidates []string, version string) (source.ContentBundle, error) {
	for _, c := range candidates {
		b, err := src.Fetch(ctx, c, version)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, source.ErrNotFound) {
			return source.ContentBundle{}, err
		}
	}
	return source.ContentBundle{}, fmt.Errorf("%w: no file matches %v", source.ErrNotFound, candidates)
}

func (r *Resolver) omit(importer, spec, p string, err error) Omission {
	reason := err.Error()
	if errors.Is(err, source.ErrNotFound) {
		reason = "not found"
	}
	r.logger.Warn("Skipping dependency", "importer", importer, "specifier", spec, "path", p, "error", err)
	return Omission{Path: p, Specifier: spec, Importer: importer, Reason: reason}
}
