package fileops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DefaultMaxDepth bounds Scan when ScanOptions.MaxDepth is not positive.
const DefaultMaxDepth = 20

// ScanOptions configures Scan.
type ScanOptions struct {
	// MaxDepth limits recursion. Files directly under the scan root are at
	// depth 1.
	MaxDepth int

	// IncludeHidden keeps entries whose name starts with ".".
	IncludeHidden bool

	// SkipDirs are directory names pruned wherever they appear.
	SkipDirs []string

	// Match selects files by base name. Nil accepts every file.
	Match func(name string) bool

	// Skip receives the slash-separated path relative to the scan root of
	// every directory and file. Returning true prunes the entry and, for a
	// directory, everything below it. A symbolic link is offered twice: once
	// under its own path and once under the path of the file it resolves to.
	Skip func(relPath string, isDir bool) bool
}

// FileInfo describes a file found by Scan.
type FileInfo struct {
	Name    string
	Path    string // slash-separated, relative to the scan root
	Size    int64
	ModTime time.Time
}

// DefaultSkipDirs returns build output and dependency directories that never
// hold component sources.
func DefaultSkipDirs() []string {
	return []string{
		"node_modules",
		".git",
		".next",
		".turbo",
		".vercel",
		"dist",
		"build",
		"out",
		"coverage",
		".cache",
	}
}

// Scan lists the files below dir, sorted by path.
//
// The walk runs inside an os.Root, so nothing outside dir is ever opened.
// Symbolic links are not followed: a linked file is listed only when its
// target resolves inside dir and survives Skip, and linked directories are
// skipped. Unreadable
// subdirectories are skipped; an unreadable dir is an error.
//
//	files, err := fileops.Scan(ctx, "/project/homepage/components", fileops.ScanOptions{
//	    MaxDepth: 8,
//	    Match:    func(name string) bool { return strings.HasSuffix(name, ".tsx") },
//	    Skip:     func(rel string, isDir bool) bool { return policy.IsExcluded(rel) },
//	})
func Scan(ctx context.Context, dir string, opts ScanOptions) ([]FileInfo, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("scan path cannot be empty")
	}

	abs, err := filepath.Abs(ExpandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan path: %w", err)
	}
	if err := ValidatePathSecurity(abs); err != nil {
		return nil, fmt.Errorf("scan path rejected: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", abs)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot open scan root: %w", err)
	}
	defer root.Close()

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	fsys := root.FS()
	files := []FileInfo{}

	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == "." {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == "." {
			return nil
		}

		name := d.Name()
		depth := strings.Count(p, "/") + 1

		if d.IsDir() {
			if depth >= maxDepth || opts.skipDir(p, name) {
				return fs.SkipDir
			}
			return nil
		}

		if !opts.keepFile(p, name) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := ResolveWithin(abs, p)
			if err != nil || (opts.Skip != nil && opts.Skip(target, false)) {
				return nil
			}
		}

		// Stat through the root follows links and fails when the target escapes dir.
		fi, err := fs.Stat(fsys, p)
		if err != nil || fi.IsDir() {
			return nil
		}

		files = append(files, FileInfo{
			Name:    name,
			Path:    p,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("directory scan failed: %w", err)
	}

	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

func (o ScanOptions) skipDir(rel, name string) bool {
	if !o.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if slices.Contains(o.SkipDirs, name) {
		return true
	}
	return o.Skip != nil && o.Skip(rel, true)
}

func (o ScanOptions) keepFile(rel, name string) bool {
	if !o.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if o.Skip != nil && o.Skip(rel, false) {
		return false
	}
	return o.Match == nil || o.Match(name)
}
