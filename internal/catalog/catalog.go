package catalog

import (
	"cmp"
	"context"
	"path"
	"slices"
	"strings"
	"time"

	"uicatalog/internal/categorize"
	"uicatalog/internal/logging"
	"uicatalog/internal/resolver"
	"uicatalog/internal/source"
)

// Defaults for a project laid out like the reference Next.js homepage.
const (
	DefaultScheme        = "gtm-labs"
	DefaultAppDir        = "homepage"
	DefaultComponentsDir = "homepage/components"
	DefaultLibDir        = "homepage/lib"
)

// DefaultExtensions is the component file allow-list.
var DefaultExtensions = []string{".tsx"}

// Options describes where things live inside a project. Directories are
// relative to the source root.
type Options struct {
	// Name is reported by the project-wide changelog.
	Name string

	// Scheme prefixes resource URIs, as in gtm-labs://components/ui/button.
	Scheme string

	AppDir        string
	ComponentsDir string
	LibDir        string

	// Extensions filters component enumeration.
	Extensions []string

	// FreeformCategories marks a local source that categorizes by directory
	// name instead of the fixed taxonomy. Remote sources are always freeform.
	FreeformCategories bool

	// Resolver follows imports for get_component. Nil builds one with the
	// default depth rooted at AppDir.
	Resolver *resolver.Resolver
}

// Catalog serves one project through one source.
type Catalog struct {
	src      source.Source
	opts     Options
	resolver *resolver.Resolver
	logger   *logging.AppLogger
}

// New returns a Catalog reading from src. Zero-valued options fall back to
// the package defaults. A nil logger discards output.
func New(src source.Source, opts Options, logger *logging.AppLogger) *Catalog {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.Scheme == "" {
		opts.Scheme = DefaultScheme
	}
	if opts.Name == "" {
		opts.Name = opts.Scheme
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	opts.AppDir = trimDir(opts.AppDir)
	opts.ComponentsDir = trimDir(opts.ComponentsDir)
	opts.LibDir = trimDir(opts.LibDir)

	res := opts.Resolver
	if res == nil {
		res = resolver.New(resolver.Options{AppDir: opts.AppDir}, logger)
	}

	return &Catalog{
		src:      src,
		opts:     opts,
		resolver: res,
		logger:   logger.With("project", opts.Name),
	}
}

// Name returns the project name.
func (c *Catalog) Name() string { return c.opts.Name }

// Scheme returns the resource URI scheme.
func (c *Catalog) Scheme() string { return c.opts.Scheme }

// Source returns the backing source.
func (c *Catalog) Source() source.Source { return c.src }

// taxonomy reports whether records use the fixed local category set.
func (c *Catalog) taxonomy() bool {
	return c.src.Kind() == source.KindLocal && !c.opts.FreeformCategories
}

// components enumerates the component directory and orders the records for
// lookups: known categories in taxonomy order first, then any freeform
// remote categories by name, each group by path.
func (c *Catalog) components(ctx context.Context) ([]source.ComponentRecord, error) {
	defer c.logger.LogPerformance("enumerate components", time.Now())

	records, err := c.src.Enumerate(ctx, c.opts.ComponentsDir, source.Filter{Extensions: c.opts.Extensions})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(records, func(a, b source.ComponentRecord) int {
		return cmp.Or(
			cmp.Compare(categoryRank(a.Category), categoryRank(b.Category)),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Path, b.Path),
		)
	})
	return records, nil
}

func categoryRank(c categorize.Category) int {
	if i := slices.Index(categorize.All, c); i >= 0 {
		return i
	}
	return len(categorize.All)
}

// Alternative is another component sharing the requested name.
type Alternative struct {
	Path     string              `json:"path"`
	Category categorize.Category `json:"category"`
}

// find returns the first record named name, optionally restricted to one
// category, plus every other record with the same name.
func (c *Catalog) find(ctx context.Context, name, category string) (source.ComponentRecord, []Alternative, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return source.ComponentRecord{}, nil, &NotFoundError{Name: name}
	}

	records, err := c.components(ctx)
	if err != nil {
		return source.ComponentRecord{}, nil, err
	}

	wantCategory := normalizeCategory(category)
	var (
		found bool
		match source.ComponentRecord
		same  []source.ComponentRecord
	)
	for _, rec := range records {
		if rec.Name != name {
			continue
		}
		same = append(same, rec)
		if found || (wantCategory != "" && string(rec.Category) != wantCategory) {
			continue
		}
		match, found = rec, true
	}
	if !found {
		return source.ComponentRecord{}, nil, &NotFoundError{Name: name}
	}

	alts := []Alternative{}
	for _, rec := range same {
		if rec.Path != match.Path {
			alts = append(alts, Alternative{Path: rec.Path, Category: rec.Category})
		}
	}
	return match, alts, nil
}

// normalizeCategory lowercases a category argument; "all" means no filter.
func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "all" {
		return ""
	}
	return category
}

func trimDir(dir string) string {
	dir = strings.Trim(strings.ReplaceAll(strings.TrimSpace(dir), `\`, "/"), "/")
	if dir == "" || dir == "." {
		return ""
	}
	return path.Clean(dir)
}
