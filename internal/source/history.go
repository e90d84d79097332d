package source

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

var errNoRepository = errors.New("not inside a git repository")

// gitHistory reads the object store of the repository enclosing a project
// root. prefix is the project root relative to the repository root, so
// project-relative paths can be turned into tree paths.
type gitHistory struct {
	repo   *git.Repository
	prefix string
}

// openHistory walks up from root until it finds a .git entry and opens that
// repository. The repository is opened per call so results follow the
// current state of the checkout.
func openHistory(root string) (*gitHistory, error) {
	repoRoot, err := findRepositoryRoot(root)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errNoRepository
		}
		return nil, fmt.Errorf("open git repository %s: %w", repoRoot, err)
	}

	prefix, err := filepath.Rel(repoRoot, root)
	if err != nil {
		return nil, fmt.Errorf("locate project inside repository: %w", err)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	}

	return &gitHistory{repo: repo, prefix: prefix}, nil
}

func findRepositoryRoot(start string) (string, error) {
	dir := filepath.Clean(start)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errNoRepository
		}
		dir = parent
	}
}

func (g *gitHistory) treePath(rel string) string {
	return path.Join(g.prefix, rel)
}

// blobAt returns the content of rel at revision. Unknown revisions and paths
// absent at that revision are both ErrNotFound.
func (g *gitHistory) blobAt(revision, rel string) (string, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("%w: revision %q", ErrNotFound, revision)
	}

	commit, err := g.repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("%w: revision %q", ErrNotFound, revision)
	}

	file, err := commit.File(g.treePath(rel))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s at %s", ErrNotFound, rel, revision)
		}
		return "", &UpstreamError{Message: fmt.Sprintf("read %s at %s: %v", rel, revision, err)}
	}
	if file.Size > MaxFileSize {
		return "", fmt.Errorf("%s at %s is too large (%d bytes, limit %d)", rel, revision, file.Size, MaxFileSize)
	}

	content, err := file.Contents()
	if err != nil {
		return "", &UpstreamError{Message: fmt.Sprintf("read %s at %s: %v", rel, revision, err)}
	}
	return content, nil
}

// fileLog lists commits touching rel, newest first. A repository without
// commits has no history.
func (g *gitHistory) fileLog(rel string) ([]Revision, error) {
	if _, err := g.repo.Head(); err != nil {
		return []Revision{}, nil
	}

	treePath := g.treePath(rel)
	iter, err := g.repo.Log(&git.LogOptions{
		FileName: &treePath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("git log %s: %v", rel, err)}
	}
	defer iter.Close()

	revisions := []Revision{}
	err = iter.ForEach(func(c *object.Commit) error {
		revisions = append(revisions, newRevision(c.Hash.String(), c.Author.When, c.Message))
		return nil
	})
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("git log %s: %v", rel, err)}
	}
	return revisions, nil
}

// tags lists every tag sorted by name. Annotated tags report the tagger date
// and tag message; lightweight tags report their commit.
func (g *gitHistory) tags() ([]Revision, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("list tags: %v", err)}
	}
	defer iter.Close()

	revisions := []Revision{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()

		tag, err := g.repo.TagObject(ref.Hash())
		switch {
		case err == nil:
			revisions = append(revisions, newRevision(name, tag.Tagger.When, tag.Message))
			return nil
		case !errors.Is(err, plumbing.ErrObjectNotFound):
			return err
		}

		commit, err := g.repo.CommitObject(ref.Hash())
		if err != nil {
			revisions = append(revisions, Revision{Version: name})
			return nil
		}
		revisions = append(revisions, newRevision(name, commit.Committer.When, commit.Message))
		return nil
	})
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("list tags: %v", err)}
	}

	slices.SortFunc(revisions, func(a, b Revision) int { return strings.Compare(a.Version, b.Version) })
	return revisions, nil
}
