package fileops

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// ValidatePathSecurity rejects empty paths, paths containing "..", and
// absolute paths inside a reserved directory (see IsReservedDirectory).
//
//	if err := fileops.ValidatePathSecurity(projectRoot); err != nil {
//	    return fmt.Errorf("invalid project root: %w", err)
//	}
func ValidatePathSecurity(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.Contains(p, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	if filepath.IsAbs(p) && IsReservedDirectory(p) {
		return fmt.Errorf("reserved system directory not allowed: %s", filepath.Clean(p))
	}
	return nil
}

// CleanRelativePath normalises a caller-supplied path that must stay inside
// some root. Backslashes become slashes, leading "./" and "/" are dropped and
// any path that would climb above the root is rejected. The result is
// slash-separated and never empty.
//
//	fileops.CleanRelativePath("./homepage//components/ui/button.tsx") // "homepage/components/ui/button.tsx"
//	fileops.CleanRelativePath("../outside.tsx")                        // error
func CleanRelativePath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if filepath.VolumeName(p) != "" {
		return "", fmt.Errorf("absolute path not allowed: %s", p)
	}
	if slices.Contains(strings.Split(p, "/"), "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	return cleaned, nil
}

// ExpandPath expands a leading "~/" to the user's home directory. Other
// paths are returned unchanged.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// ResolveWithin follows every symbolic link on the way to rel, a
// slash-separated path below root, and returns where it ends up, again as a
// slash-separated path relative to root.
//
// Parameters:
//   - root: the directory rel is relative to
//   - rel: the path to resolve
//
// Returns:
//   - The root-relative target path
//   - An error if the path does not exist or resolves outside root
//
// Callers use it to apply path rules to the file a link actually serves:
//
//	target, err := fileops.ResolveWithin(projectRoot, "components/ui/plan.tsx")
//	// target == "private/plan.tsx" when ui/plan.tsx links there
func ResolveWithin(root, rel string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve root: %w", err)
	}
	target, err := filepath.EvalSymlinks(filepath.Join(realRoot, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	if !within(target, realRoot) {
		return "", fmt.Errorf("%s resolves outside %s", rel, root)
	}
	out, err := filepath.Rel(realRoot, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(out), nil
}

// systemDirs are never served as a project, nor is anything below them.
var systemDirs = map[string][]string{
	"windows": {`C:\Windows`, `C:\Program Files`, `C:\Program Files (x86)`, `C:\ProgramData\Microsoft`},
	"darwin": {
		"/System", "/Library/System", "/Applications",
		"/bin", "/sbin", "/usr/bin", "/usr/sbin",
		"/etc", "/private/etc", "/var/log", "/var/db", "/var/root",
	},
	"linux": {
		"/bin", "/sbin", "/usr/bin", "/usr/sbin",
		"/etc", "/boot", "/dev", "/proc", "/sys",
		"/var/log", "/var/lib", "/var/cache",
	},
}

// IsReservedDirectory reports whether p is a filesystem root, a system
// directory, a credential directory in the user's home (~/.ssh, ~/.gnupg),
// or anything below one of those. Symlinks are resolved first and paths that
// cannot be resolved count as reserved. Temp directories are never reserved.
func IsReservedDirectory(p string) bool {
	target, err := canonical(p)
	if err != nil {
		return true
	}
	if target == filepath.VolumeName(target)+string(filepath.Separator) {
		return true
	}
	if isTempDir(target) {
		return false
	}

	for _, dir := range reservedDirs() {
		reserved, err := canonical(dir)
		if err != nil {
			continue
		}
		if within(target, reserved) {
			return true
		}
	}
	return false
}

func reservedDirs() []string {
	dirs, ok := systemDirs[runtime.GOOS]
	if !ok {
		dirs = systemDirs["linux"]
	}
	dirs = slices.Clone(dirs)
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ssh"), filepath.Join(home, ".gnupg"))
	}
	return dirs
}

// canonical returns the absolute, symlink-resolved form of p. Paths that do
// not exist are returned cleaned but unresolved.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}

// within reports whether p is dir or lies below it. Comparison ignores case
// outside Linux.
func within(p, dir string) bool {
	if runtime.GOOS != "linux" {
		p, dir = strings.ToLower(p), strings.ToLower(dir)
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isTempDir(p string) bool {
	if runtime.GOOS == "darwin" && strings.Contains(p, "/var/folders/") {
		return true
	}
	if tmp, err := canonical(os.TempDir()); err == nil && within(p, tmp) {
		return true
	}
	return within(p, filepath.Clean(os.TempDir()))
}
