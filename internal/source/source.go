package source

import (
	"context"
	"path"
	"slices"
	"strings"
	"time"

	"uicatalog/internal/categorize"
)

// Kind identifies a backend.
type Kind string

const (
	KindLocal  Kind = "local"
	KindGitHub Kind = "github"
)

// String returns the backend name.
func (k Kind) String() string { return string(k) }

// VersionLatest is the version reported for fetches of the current state.
const VersionLatest = "latest"

// IsLatest reports whether version names the current state rather than a
// historical revision. The empty string, "latest" and "HEAD" all qualify.
func IsLatest(version string) bool {
	v := strings.TrimSpace(version)
	return v == "" || v == "HEAD" || strings.EqualFold(v, VersionLatest)
}

func normalizeVersion(version string) string {
	if IsLatest(version) {
		if v := strings.TrimSpace(version); v != "" {
			return v
		}
		return VersionLatest
	}
	return strings.TrimSpace(version)
}

// Source is the capability shared by the local and remote backends.
type Source interface {
	// Kind names the backend.
	Kind() Kind

	// Enumerate lists artifacts below dir (root-relative, "" for the root).
	// A missing directory yields an empty result.
	Enumerate(ctx context.Context, dir string, filter Filter) ([]ComponentRecord, error)

	// Fetch returns the redacted content of p at version. Missing and
	// excluded paths fail with an error matching ErrNotFound.
	Fetch(ctx context.Context, p string, version string) (ContentBundle, error)

	// History returns revisions touching p, newest first. With p == "" it
	// returns release tags instead. Backends without history return an empty
	// slice, not an error.
	History(ctx context.Context, p string) ([]Revision, error)
}

// Filter narrows an enumeration.
type Filter struct {
	// Extensions is an allow-list matched case-insensitively against the file
	// extension. The leading dot is optional. Empty accepts every file.
	Extensions []string

	// MaxDepth bounds recursion; files directly in the enumerated directory
	// are at depth 1. Zero uses the backend default.
	MaxDepth int
}

// Accepts reports whether a file name passes the extension allow-list.
func (f Filter) Accepts(name string) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(f.Extensions, func(allowed string) bool {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		return allowed == ext || "."+allowed == ext
	})
}

// ComponentRecord describes one enumerated artifact. Records are rebuilt on
// every enumeration.
type ComponentRecord struct {
	// Name is the file stem. It is not unique across directories.
	Name string `json:"name"`
	// Path is root-relative and slash-separated.
	Path string `json:"path"`
	// RelPath is relative to the enumerated directory.
	RelPath  string              `json:"rel_path"`
	Category categorize.Category `json:"category"`
}

// ContentBundle is the result of a fetch.
type ContentBundle struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Content string `json:"content"`
}

// Revision is one entry of a history listing.
type Revision struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
	Message string `json:"message"`
}

func newRevision(version string, when time.Time, message string) Revision {
	r := Revision{Version: version, Message: firstLine(message)}
	if !when.IsZero() {
		r.Date = when.Format(time.RFC3339)
	}
	return r
}

func firstLine(message string) string {
	message = strings.TrimSpace(message)
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return message
}
