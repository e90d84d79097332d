package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"uicatalog/internal/categorize"
	"uicatalog/internal/logging"
	"uicatalog/internal/security"
	"uicatalog/pkg/fileops"
)

const (
	// DefaultLocalMaxDepth bounds local enumeration when the filter sets none.
	DefaultLocalMaxDepth = 20

	// MaxFileSize caps a single fetched body.
	MaxFileSize = 4 << 20
)

// LocalSource serves a project checkout on disk, with history from the
// enclosing git repository when there is one.
type LocalSource struct {
	root       string
	policy     *security.Policy
	categorize func(relPath string) categorize.Category
	logger     *logging.AppLogger
}

// LocalOption customises a LocalSource.
type LocalOption func(*LocalSource)

// WithLocalCategorizer replaces categorize.Local.
func WithLocalCategorizer(fn func(relPath string) categorize.Category) LocalOption {
	return func(ls *LocalSource) { ls.categorize = fn }
}

// NewLocalSource validates root and returns a source reading from it.
//
// The root must be an existing directory outside the reserved system
// locations. "~/" is expanded and the stored root is absolute. A nil policy
// means security.Default(); a nil logger discards output.
func NewLocalSource(root string, policy *security.Policy, logger *logging.AppLogger, opts ...LocalOption) (*LocalSource, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("project root cannot be empty")
	}

	abs, err := filepath.Abs(fileops.ExpandPath(trimmed))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve project root: %w", err)
	}

	if err := fileops.ValidatePathSecurity(abs); err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project root does not exist: %s", abs)
		}
		return nil, fmt.Errorf("cannot access project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", abs)
	}

	if policy == nil {
		policy = security.Default()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	ls := &LocalSource{
		root:       abs,
		policy:     policy,
		categorize: categorize.Local,
		logger:     logger.With("source", KindLocal),
	}
	for _, opt := range opts {
		opt(ls)
	}

	ls.logger.Debug("Local source ready", "root", abs)
	return ls, nil
}

// Kind implements Source.
func (ls *LocalSource) Kind() Kind { return KindLocal }

// Root returns the absolute project root.
func (ls *LocalSource) Root() string { return ls.root }

// Enumerate walks dir recursively. Excluded directories are never descended
// into and excluded files never reported, including links whose target is
// excluded. Categories are computed from the
// path relative to dir.
func (ls *LocalSource) Enumerate(ctx context.Context, dir string, filter Filter) ([]ComponentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirRel, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}
	if dirRel != "" && ls.policy.IsExcluded(dirRel) {
		return []ComponentRecord{}, nil
	}

	scanPath := filepath.Join(ls.root, filepath.FromSlash(dirRel))
	if info, err := os.Stat(scanPath); err != nil || !info.IsDir() {
		return []ComponentRecord{}, nil
	}

	depth := filter.MaxDepth
	if depth <= 0 {
		depth = DefaultLocalMaxDepth
	}

	files, err := fileops.Scan(ctx, scanPath, fileops.ScanOptions{
		MaxDepth: depth,
		SkipDirs: fileops.DefaultSkipDirs(),
		Match:    filter.Accepts,
		Skip: func(rel string, _ bool) bool {
			return ls.policy.IsExcluded(path.Join(dirRel, rel))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", dirRel, err)
	}

	records := make([]ComponentRecord, 0, len(files))
	for _, f := range files {
		records = append(records, ComponentRecord{
			Name:     categorize.Stem(f.Path),
			Path:     path.Join(dirRel, f.Path),
			RelPath:  f.Path,
			Category: ls.categorize(f.Path),
		})
	}

	ls.logger.Debug("Enumerated local directory", "dir", dirRel, "count", len(records))
	return records, nil
}

// Fetch reads p from the working tree for latest versions and from the git
// object store otherwise.
func (ls *LocalSource) Fetch(ctx context.Context, p string, version string) (ContentBundle, error) {
	if err := ctx.Err(); err != nil {
		return ContentBundle{}, err
	}

	rel, err := fileops.CleanRelativePath(p)
	if err != nil {
		return ContentBundle{}, notFound(p)
	}
	if ls.policy.IsExcluded(rel) {
		return ContentBundle{}, excluded(rel)
	}

	var content string
	if IsLatest(version) {
		if target, err := fileops.ResolveWithin(ls.root, rel); err == nil && ls.policy.IsExcluded(target) {
			ls.logger.Debug("Link resolves to an excluded file", "path", rel)
			return ContentBundle{}, excluded(rel)
		}
		content, err = ls.readWorkingTree(rel)
	} else {
		content, err = ls.readAtRevision(rel, strings.TrimSpace(version))
	}
	if err != nil {
		return ContentBundle{}, err
	}

	return ContentBundle{
		Path:    rel,
		Version: normalizeVersion(version),
		Content: ls.policy.Redact(content),
	}, nil
}

// History returns the commit log for p, or the tag list when p is empty.
// A project outside any git repository has no history.
func (ls *LocalSource) History(ctx context.Context, p string) ([]Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rel string
	if strings.TrimSpace(p) != "" {
		var err error
		rel, err = fileops.CleanRelativePath(p)
		if err != nil || ls.policy.IsExcluded(rel) {
			return []Revision{}, nil
		}
	}

	repo, err := openHistory(ls.root)
	if errors.Is(err, errNoRepository) {
		ls.logger.Debug("Project is not inside a git repository", "root", ls.root)
		return []Revision{}, nil
	}
	if err != nil {
		return nil, err
	}

	if rel == "" {
		return repo.tags()
	}
	return repo.fileLog(rel)
}

func (ls *LocalSource) readWorkingTree(rel string) (string, error) {
	root, err := os.OpenRoot(ls.root)
	if err != nil {
		return "", fmt.Errorf("open project root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(rel)
		}
		return "", fmt.Errorf("open %s: %w", rel, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return "", notFound(rel)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%s is too large (%d bytes, limit %d)", rel, info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

func (ls *LocalSource) readAtRevision(rel, version string) (string, error) {
	repo, err := openHistory(ls.root)
	if errors.Is(err, errNoRepository) {
		return "", fmt.Errorf("%w: %q (project has no git history)", ErrUnsupportedVersion, version)
	}
	if err != nil {
		return "", err
	}
	return repo.blobAt(version, rel)
}

// cleanDir normalises an enumeration directory; "" and "." mean the root.
func cleanDir(dir string) (string, error) {
	d := strings.TrimSpace(dir)
	if d == "" || d == "." || d == "/" {
		return "", nil
	}
	rel, err := fileops.CleanRelativePath(d)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	return rel, nil
}
