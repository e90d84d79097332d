package source

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// GitURLInfo contains the parsed components of a repository reference.
type GitURLInfo struct {
	Host  string // e.g. "github.com"
	Owner string
	Repo  string // without .git suffix
}

var (
	sshURLPattern    = regexp.MustCompile(`^git@([^:]+):([^/]+)/(.+?)(?:\.git)?$`)
	shorthandPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// ParseGitURL parses SSH (git@host:owner/repo.git), HTTPS
// (https://host/owner/repo.git) and shorthand (owner/repo) references.
// Shorthand always means github.com.
//
//	info, err := source.ParseGitURL("https://github.com/acme/site.git")
//	// info.Host = "github.com", info.Owner = "acme", info.Repo = "site"
func ParseGitURL(gitURL string) (GitURLInfo, error) {
	gitURL = strings.TrimSpace(gitURL)
	if gitURL == "" {
		return GitURLInfo{}, fmt.Errorf("repository reference cannot be empty")
	}

	if matches := sshURLPattern.FindStringSubmatch(gitURL); matches != nil {
		return GitURLInfo{Host: matches[1], Owner: matches[2], Repo: matches[3]}, nil
	}

	if shorthandPattern.MatchString(gitURL) {
		owner, repo, _ := strings.Cut(gitURL, "/")
		return GitURLInfo{Host: "github.com", Owner: owner, Repo: strings.TrimSuffix(repo, ".git")}, nil
	}

	parsedURL, err := url.Parse(gitURL)
	if err != nil {
		return GitURLInfo{}, fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Host == "" {
		return GitURLInfo{}, fmt.Errorf("URL missing host component")
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) < 2 {
		return GitURLInfo{}, fmt.Errorf("URL path should contain owner/repo: %s", parsedURL.Path)
	}

	owner := pathParts[0]
	repo := strings.TrimSuffix(pathParts[1], ".git")
	if owner == "" || repo == "" {
		return GitURLInfo{}, fmt.Errorf("could not extract owner/repo from URL path: %s", parsedURL.Path)
	}

	return GitURLInfo{Host: parsedURL.Host, Owner: owner, Repo: repo}, nil
}

// String returns "owner/repo".
func (g GitURLInfo) String() string { return g.Owner + "/" + g.Repo }
