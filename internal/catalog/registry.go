package catalog

import (
	"fmt"
	"slices"
	"strings"

	"uicatalog/internal/categorize"
	"uicatalog/internal/config"
	"uicatalog/internal/logging"
	"uicatalog/internal/resolver"
	"uicatalog/internal/security"
	"uicatalog/internal/source"
)

// Directory defaults for remote projects, relative to the repository root.
const (
	DefaultRemoteComponentsDir = "components"
	DefaultRemoteLibDir        = "lib"
)

// Registry holds the local catalog and one catalog per remote project.
type Registry struct {
	local    *Catalog
	projects map[string]*Catalog
}

// NewRegistry returns a registry whose default catalog is local.
func NewRegistry(local *Catalog) *Registry {
	return &Registry{local: local, projects: map[string]*Catalog{}}
}

// Add registers a named project catalog.
func (r *Registry) Add(name string, c *Catalog) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if _, dup := r.projects[name]; dup {
		return fmt.Errorf("project %s already registered", name)
	}
	r.projects[name] = c
	return nil
}

// Local returns the default catalog.
func (r *Registry) Local() *Catalog { return r.local }

// Get returns the catalog for project; "" selects the local one.
func (r *Registry) Get(project string) (*Catalog, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		if r.local == nil {
			return nil, fmt.Errorf("%w: no local project configured", ErrUnknownProject)
		}
		return r.local, nil
	}
	c, ok := r.projects[project]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (known: %s)", ErrUnknownProject, project, strings.Join(r.Projects(), ", "))
	}
	return c, nil
}

// Projects lists the registered remote project names, sorted.
func (r *Registry) Projects() []string {
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Catalogs returns the local catalog, when set, followed by the remote
// projects in name order.
func (r *Registry) Catalogs() []*Catalog {
	var out []*Catalog
	if r.local != nil {
		out = append(out, r.local)
	}
	for _, name := range r.Projects() {
		out = append(out, r.projects[name])
	}
	return out
}

// Build creates the registry described by cfg: a local catalog over
// cfg.ProjectRoot and one GitHub-backed catalog per configured project.
// token is the already resolved GitHub token, possibly empty.
func Build(cfg *config.Config, token string, logger *logging.AppLogger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	policy, err := security.New(security.Options{
		ExtraExcludes: cfg.ExtraExcludes,
		RedactTerms:   cfg.RedactTerms,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid security policy: %w", err)
	}

	var localOpts []source.LocalOption
	freeform := cfg.Categories == config.CategoriesDirectory
	if freeform {
		localOpts = append(localOpts, source.WithLocalCategorizer(categorize.ParentDir))
	}
	localSrc, err := source.NewLocalSource(cfg.ProjectRoot, policy, logger, localOpts...)
	if err != nil {
		return nil, err
	}

	local := New(localSrc, Options{
		Name:          cfg.ProjectName,
		Scheme:        cfg.Scheme,
		AppDir:        cfg.AppDir,
		ComponentsDir: cfg.ComponentsDir,
		LibDir:        cfg.LibDir,
		Extensions:    cfg.ComponentExtensions,
		Resolver:      resolver.New(resolver.Options{AppDir: cfg.AppDir, Depth: cfg.DependencyDepth}, logger),

		FreeformCategories: freeform,
	}, logger)

	reg := NewRegistry(local)
	for name, p := range cfg.Projects {
		info, err := source.ParseGitURL(p.Repo)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}

		remote, err := source.NewGitHubSource(source.GitHubOptions{
			Owner:            info.Owner,
			Repo:             info.Repo,
			Branch:           p.Branch,
			APIURL:           cfg.GitHub.APIURL,
			Token:            token,
			Timeout:          cfg.GitHub.Timeout,
			MaxDepth:         cfg.GitHub.MaxDepth,
			EnforceExclusion: cfg.GitHub.EnforceExclusion,
		}, policy, logger)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}

		componentsDir := p.ComponentsDir
		if componentsDir == "" {
			componentsDir = DefaultRemoteComponentsDir
		}
		libDir := p.LibDir
		if libDir == "" {
			libDir = DefaultRemoteLibDir
		}

		c := New(remote, Options{
			Name:          name,
			Scheme:        name,
			AppDir:        p.AppDir,
			ComponentsDir: componentsDir,
			LibDir:        libDir,
			Extensions:    cfg.ComponentExtensions,
			Resolver:      resolver.New(resolver.Options{AppDir: p.AppDir, Depth: cfg.DependencyDepth}, logger),
		}, logger)
		if err := reg.Add(name, c); err != nil {
			return nil, err
		}
		logger.Debug("Registered remote project", "project", name, "repo", info.String())
	}
	return reg, nil
}
