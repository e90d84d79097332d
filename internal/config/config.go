package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"uicatalog/internal/logging"
	"uicatalog/internal/source"
	"uicatalog/pkg/fileops"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "uicatalog" // application name used for config directory

// ConfigPathEnv overrides the config file location when set.
const ConfigPathEnv = "UICATALOG_CONFIG_PATH"

// Defaults for a project laid out like the reference Next.js homepage.
const (
	DefaultAppDir          = "homepage"
	DefaultComponentsDir   = "homepage/components"
	DefaultLibDir          = "homepage/lib"
	DefaultScheme          = "gtm-labs"
	DefaultDependencyDepth = 1
)

// Values for Config.Categories.
const (
	// CategoriesTaxonomy sorts local components into the fixed taxonomy.
	CategoriesTaxonomy = "taxonomy"
	// CategoriesDirectory uses the parent directory name as the category.
	CategoriesDirectory = "directory"
)

// Config holds user configuration for uicatalog.
type Config struct {
	// ProjectRoot is the local checkout served as the default catalog.
	ProjectRoot string `yaml:"project_root"`

	// Directories below ProjectRoot. "@/" imports resolve against AppDir.
	AppDir        string `yaml:"app_dir"`
	ComponentsDir string `yaml:"components_dir"`
	LibDir        string `yaml:"lib_dir"`

	Scheme              string   `yaml:"scheme"`       // resource URI scheme
	ProjectName         string   `yaml:"project_name"` // reported by the project-wide changelog
	ComponentExtensions []string `yaml:"component_extensions"`
	DependencyDepth     int      `yaml:"dependency_depth"` // 1 = direct imports only

	// Categories selects how local components are categorized: "taxonomy"
	// (default) or "directory".
	Categories string `yaml:"categories"`

	// RedactTerms replaces the default redacted tool names when non-empty.
	RedactTerms []string `yaml:"redact_terms,omitempty"`
	// ExtraExcludes adds exclusion patterns to the built-in set.
	ExtraExcludes []string `yaml:"extra_excludes,omitempty"`

	GitHub   GitHubConfig             `yaml:"github"`
	Projects map[string]ProjectConfig `yaml:"projects,omitempty"`
}

// GitHubConfig tunes the remote backend shared by every remote project.
type GitHubConfig struct {
	Token            string        `yaml:"token,omitempty"`
	APIURL           string        `yaml:"api_url,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	MaxDepth         int           `yaml:"max_depth,omitempty"`
	EnforceExclusion bool          `yaml:"enforce_exclusion"`
}

// ProjectConfig names one remote repository served as an extra catalog.
type ProjectConfig struct {
	// Repo accepts owner/repo, an HTTPS URL or an SSH URL.
	Repo          string `yaml:"repo"`
	Branch        string `yaml:"branch,omitempty"`
	AppDir        string `yaml:"app_dir,omitempty"`
	ComponentsDir string `yaml:"components_dir,omitempty"`
	LibDir        string `yaml:"lib_dir,omitempty"`
}

// ConfigPaths returns the standard config file locations.
//
// Returns:
//   - primary: $XDG_CONFIG_HOME/uicatalog/config.yaml
//   - fallback: ~/.uicatalog/config.yaml, or "" when the home directory is
//     unknown
func ConfigPaths() (primary, fallback string) {
	primary = filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	if home, err := os.UserHomeDir(); err == nil {
		fallback = filepath.Join(home, "."+APP_NAME, "config.yaml")
	}

	logging.Debug("Determined config paths", "primary", primary, "fallback", fallback)
	return primary, fallback
}

// FindConfigFile locates the config file to read or write.
//
// $UICATALOG_CONFIG_PATH wins over the standard locations. Otherwise the
// primary location is preferred over the fallback.
//
// Returns:
//   - string: the path of the existing file, or the path a new file should be
//     written to (the override or the primary location)
//   - bool: whether a file exists at that path
func FindConfigFile() (string, bool) {
	if override := strings.TrimSpace(os.Getenv(ConfigPathEnv)); override != "" {
		_, err := os.Stat(override)
		return override, err == nil
	}

	primary, fallback := ConfigPaths()
	for _, candidate := range []string{primary, fallback} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			logging.Debug("Config found", "path", candidate)
			return candidate, true
		}
	}
	return primary, false
}

// Load reads the config and applies defaults. The result is not validated;
// call Validate before building catalogs from it.
//
// Parameters:
//   - path: an explicit config file (the --config flag), or "" to search the
//     standard locations
//
// Returns:
//   - *Config: the loaded config, or the defaults when no file exists at a
//     standard location
//   - error: an explicit path that cannot be opened, or a file that does not
//     parse (unknown keys included)
//
// Example:
//
//	cfg, err := config.Load(configFlag)
//	if err != nil {
//	    return fmt.Errorf("failed to load config: %w", err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    return fmt.Errorf("invalid config: %w", err)
//	}
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFrom(path)
	}

	found, exists := FindConfigFile()
	if !exists {
		logging.Debug("No config file found, using defaults", "path", found)
		cfg := DefaultConfig()
		return &cfg, nil
	}
	return LoadFrom(found)
}

// LoadFrom reads the config at path and applies defaults. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultConfig returns a Config with sensible defaults and no project root.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AppDir == "" {
		c.AppDir = DefaultAppDir
	}
	if c.ComponentsDir == "" {
		c.ComponentsDir = DefaultComponentsDir
	}
	if c.LibDir == "" {
		c.LibDir = DefaultLibDir
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.ProjectName == "" {
		c.ProjectName = c.Scheme
	}
	if len(c.ComponentExtensions) == 0 {
		c.ComponentExtensions = []string{".tsx"}
	}
	if c.DependencyDepth == 0 {
		c.DependencyDepth = DefaultDependencyDepth
	}
	if c.Categories == "" {
		c.Categories = CategoriesTaxonomy
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = source.DefaultGitHubAPIURL
	}
	if c.GitHub.Timeout == 0 {
		c.GitHub.Timeout = source.DefaultGitHubTimeout
	}
	if c.GitHub.MaxDepth == 0 {
		c.GitHub.MaxDepth = source.DefaultGitHubMaxDepth
	}
}

// Validate checks the config before any catalog is built.
//
// Returns:
//   - error: the first problem found: a missing or unusable project_root, a
//     directory that climbs out of its root, a malformed scheme, an unknown
//     categories mode, a non-positive depth or an unparseable project repo
func (c *Config) Validate() error {
	root := strings.TrimSpace(c.ProjectRoot)
	if root == "" {
		return fmt.Errorf("project_root is required")
	}

	info, err := os.Stat(fileops.ExpandPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("project_root does not exist: %s", root)
		}
		return fmt.Errorf("cannot access project_root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project_root is not a directory: %s", root)
	}

	dirs := map[string]string{
		"app_dir":        c.AppDir,
		"components_dir": c.ComponentsDir,
		"lib_dir":        c.LibDir,
	}
	for field, dir := range dirs {
		if _, err := fileops.CleanRelativePath(dir); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}

	if strings.ContainsAny(c.Scheme, ":/ ") {
		return fmt.Errorf("invalid scheme %q", c.Scheme)
	}
	if c.Categories != CategoriesTaxonomy && c.Categories != CategoriesDirectory {
		return fmt.Errorf("categories must be %q or %q, got %q", CategoriesTaxonomy, CategoriesDirectory, c.Categories)
	}
	if c.DependencyDepth < 1 {
		return fmt.Errorf("dependency_depth must be positive, got %d", c.DependencyDepth)
	}
	if c.GitHub.MaxDepth < 1 {
		return fmt.Errorf("github.max_depth must be positive, got %d", c.GitHub.MaxDepth)
	}
	if c.GitHub.Timeout < 0 {
		return fmt.Errorf("github.timeout cannot be negative")
	}

	for name, p := range c.Projects {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("project names cannot be empty")
		}
		if _, err := source.ParseGitURL(p.Repo); err != nil {
			return fmt.Errorf("project %s: %w", name, err)
		}
		for field, dir := range map[string]string{"app_dir": p.AppDir, "components_dir": p.ComponentsDir, "lib_dir": p.LibDir} {
			if dir == "" {
				continue
			}
			if _, err := fileops.CleanRelativePath(dir); err != nil {
				return fmt.Errorf("project %s: invalid %s: %w", name, field, err)
			}
		}
	}
	return nil
}

// Save writes the config to the location FindConfigFile picks, creating
// parent directories as needed. `uicatalog config init` uses it when no
// --config flag is given.
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config as YAML to path.
//
// Parameters:
//   - path: destination file; missing parent directories are created
//
// Returns:
//   - error: directory creation, open or encoding failures
//
// The file is created with mode 0600 because it may hold a GitHub token.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
