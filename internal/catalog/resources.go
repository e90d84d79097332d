package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"uicatalog/internal/source"
)

// Resource kinds, the first URI segment after the scheme.
const (
	ResourceComponents = "components"
	ResourceConfig     = "config"
	ResourceLib        = "lib"
	ResourceScaffolds  = "scaffolds"
)

const (
	mimeTypeScript = "text/typescript"
	mimeJSON       = "application/json"
)

// Entry names a fixed resource and describes it.
type Entry struct {
	Name        string
	Description string
}

// ConfigFiles are the project files exposed under config/, looked up in the
// app directory.
var ConfigFiles = []Entry{
	{"tailwind.config.ts", "Config: Tailwind configuration"},
	{"next.config.ts", "Config: Next.js configuration"},
	{"package.json", "Config: Package dependencies"},
}

// Scaffolds are the scaffold descriptors advertised under scaffolds/.
var Scaffolds = []Entry{
	{"nextjs-full-project", "Scaffold: Full Next.js project structure"},
}

// libExtension is the only extension listed under lib/.
const libExtension = ".ts"

// Resource describes one readable URI.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	MIMEType    string `json:"mimeType"`
	Description string `json:"description"`
}

// ResourceContent is the body of a read resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// URI builds a resource URI in this catalog's scheme.
func (c *Catalog) URI(kind string, segments ...string) string {
	return c.opts.Scheme + "://" + path.Join(append([]string{kind}, segments...)...)
}

// ListResources enumerates every readable resource: components, config
// files present in the app directory, top-level library files and the
// scaffold descriptors.
func (c *Catalog) ListResources(ctx context.Context) ([]Resource, error) {
	records, err := c.components(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate components: %w", err)
	}

	resources := make([]Resource, 0, len(records)+len(ConfigFiles)+len(Scaffolds))
	for _, rec := range records {
		resources = append(resources, Resource{
			URI:         c.URI(ResourceComponents, string(rec.Category), rec.Name),
			Name:        string(rec.Category) + "/" + rec.Name,
			MIMEType:    mimeTypeScript,
			Description: fmt.Sprintf("Component: %s from %s", rec.Name, rec.Category),
		})
	}

	for _, cf := range ConfigFiles {
		if _, err := c.src.Fetch(ctx, path.Join(c.opts.AppDir, cf.Name), source.VersionLatest); err != nil {
			if !errors.Is(err, source.ErrNotFound) {
				c.logger.Debug("Skipping config resource", "file", cf.Name, "error", err)
			}
			continue
		}
		resources = append(resources, Resource{
			URI:         c.URI(ResourceConfig, cf.Name),
			Name:        cf.Name,
			MIMEType:    mimeFor(cf.Name),
			Description: cf.Description,
		})
	}

	libs, err := c.src.Enumerate(ctx, c.opts.LibDir, source.Filter{Extensions: []string{libExtension}, MaxDepth: 1})
	if err != nil {
		c.logger.Warn("Failed to enumerate library files", "dir", c.opts.LibDir, "error", err)
	}
	for _, lib := range libs {
		resources = append(resources, Resource{
			URI:         c.URI(ResourceLib, lib.Name),
			Name:        lib.Name,
			MIMEType:    mimeTypeScript,
			Description: "Library: " + lib.Name,
		})
	}

	for _, sc := range Scaffolds {
		resources = append(resources, Resource{
			URI:         c.URI(ResourceScaffolds, sc.Name),
			Name:        sc.Name,
			MIMEType:    mimeJSON,
			Description: sc.Description,
		})
	}
	return resources, nil
}

// ReadResource resolves uri through the same source and policy as the
// tools. URIs in another scheme, of an unknown kind or naming a missing or
// excluded target fail with ErrResourceNotFound.
func (c *Catalog) ReadResource(ctx context.Context, uri string) (ResourceContent, error) {
	kind, segments, ok := c.parseURI(uri)
	if !ok {
		return ResourceContent{}, ErrResourceNotFound
	}

	var (
		p    string
		mime = mimeTypeScript
	)
	switch {
	case kind == ResourceComponents && len(segments) == 2:
		rec, _, err := c.find(ctx, segments[1], segments[0])
		if err != nil {
			return ResourceContent{}, resourceError(err)
		}
		if string(rec.Category) != normalizeCategory(segments[0]) {
			return ResourceContent{}, ErrResourceNotFound
		}
		p = rec.Path
	case kind == ResourceConfig && len(segments) == 1:
		if !hasEntry(ConfigFiles, segments[0]) {
			return ResourceContent{}, ErrResourceNotFound
		}
		p = path.Join(c.opts.AppDir, segments[0])
		mime = mimeFor(segments[0])
	case kind == ResourceLib && len(segments) == 1:
		p = path.Join(c.opts.LibDir, segments[0]+libExtension)
	case kind == ResourceScaffolds && len(segments) == 1:
		return c.scaffold(uri, segments[0])
	default:
		return ResourceContent{}, ErrResourceNotFound
	}

	bundle, err := c.src.Fetch(ctx, p, source.VersionLatest)
	if err != nil {
		return ResourceContent{}, resourceError(err)
	}
	return ResourceContent{URI: uri, MIMEType: mime, Text: bundle.Content}, nil
}

func (c *Catalog) scaffold(uri, name string) (ResourceContent, error) {
	if !hasEntry(Scaffolds, name) {
		return ResourceContent{}, ErrResourceNotFound
	}

	doc, err := json.MarshalIndent(map[string]string{
		"scaffold": name,
		"message":  "Use the create_scaffold tool to generate this scaffold",
	}, "", "  ")
	if err != nil {
		return ResourceContent{}, err
	}
	return ResourceContent{URI: uri, MIMEType: mimeJSON, Text: string(doc)}, nil
}

// parseURI splits scheme://kind/seg... and rejects other schemes and any
// segment that is empty or a dot path.
func (c *Catalog) parseURI(uri string) (kind string, segments []string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(uri), c.opts.Scheme+"://")
	if !found {
		return "", nil, false
	}

	parts := strings.Split(strings.TrimRight(rest, "/"), "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || strings.Contains(part, `\`) {
			return "", nil, false
		}
	}
	return parts[0], parts[1:], true
}

// resourceError folds every not-found flavour into ErrResourceNotFound and
// passes other failures through.
func resourceError(err error) error {
	if errors.Is(err, source.ErrNotFound) {
		return ErrResourceNotFound
	}
	return err
}

func hasEntry(entries []Entry, name string) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.Name == name })
}

func mimeFor(name string) string {
	if strings.HasSuffix(name, ".json") {
		return mimeJSON
	}
	return mimeTypeScript
}
