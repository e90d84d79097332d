// Package source abstracts where component bytes come from.
//
// A Source enumerates artifacts under a directory, fetches one artifact at a
// version and reports revision history. Two implementations share the
// contract:
//
//   - LocalSource reads a project checkout on disk. "latest"/"HEAD" means the
//     live working tree; any other version is resolved through go-git and the
//     blob at that revision is returned. History comes from the commit log or,
//     with no path, from the repository tags.
//   - GitHubSource reads a repository through the GitHub REST API. Only the
//     latest state of the configured branch is available.
//
// Every body returned by Fetch has passed through security.Policy.Redact.
// LocalSource also applies the exclusion policy to enumeration (pruning
// excluded directories) and to direct fetches; excluded paths fail with
// ErrExcluded, which matches ErrNotFound under errors.Is so callers cannot
// tell an excluded file exists. GitHubSource applies exclusion only when
// GitHubOptions.EnforceExclusion is set.
//
// Nothing is cached: every call re-reads the backing store.
//
// Usage:
//
//	src, err := source.NewLocalSource(cfg.ProjectRoot, policy, logger)
//	if err != nil {
//	    return fmt.Errorf("local source: %w", err)
//	}
//	records, err := src.Enumerate(ctx, "homepage/components", source.Filter{Extensions: []string{".tsx"}})
package source
