package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"uicatalog/internal/categorize"
	"uicatalog/internal/logging"
	"uicatalog/internal/security"
	"uicatalog/pkg/fileops"
)

const (
	DefaultGitHubAPIURL   = "https://api.github.com"
	DefaultGitHubTimeout  = 30 * time.Second
	DefaultGitHubMaxDepth = 8

	githubAPIVersion = "2022-11-28"
	githubPageSize   = 100
	maxErrorBody     = 1024
	maxListingBody   = 10 << 20
	maxPages         = 100

	// rawContentHost serves download_url links for github.com repositories.
	rawContentHost = "raw.githubusercontent.com"
)

// GitHubOptions configures a GitHubSource.
type GitHubOptions struct {
	Owner  string
	Repo   string
	Branch string // empty uses the repository default branch

	// APIURL overrides the REST base URL (tests, GitHub Enterprise).
	APIURL string
	Token  string

	// Timeout applies to each outbound request.
	Timeout time.Duration

	// MaxDepth bounds breadth-first enumeration.
	MaxDepth int

	// EnforceExclusion applies the security policy's exclusion patterns to
	// remote paths as well. Off by default: the remote repository is assumed
	// to be published content.
	EnforceExclusion bool

	// HTTPClient replaces the default client.
	HTTPClient *http.Client
}

// GitHubSource serves the latest state of a GitHub repository.
type GitHubSource struct {
	opts       GitHubOptions
	apiURL     *url.URL
	client     *http.Client
	policy     *security.Policy
	categorize func(relPath string) categorize.Category
	logger     *logging.AppLogger
}

// NewGitHubSource returns a remote source. Owner and Repo are required.
func NewGitHubSource(opts GitHubOptions, policy *security.Policy, logger *logging.AppLogger) (*GitHubSource, error) {
	opts.Owner = strings.TrimSpace(opts.Owner)
	opts.Repo = strings.TrimSpace(opts.Repo)
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github source requires owner and repo")
	}

	if opts.APIURL == "" {
		opts.APIURL = DefaultGitHubAPIURL
	}
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	apiURL, err := url.Parse(opts.APIURL)
	if err != nil || apiURL.Host == "" {
		return nil, fmt.Errorf("invalid github api url %q", opts.APIURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultGitHubTimeout
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultGitHubMaxDepth
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if policy == nil {
		policy = security.Default()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	return &GitHubSource{
		opts:       opts,
		apiURL:     apiURL,
		client:     client,
		policy:     policy,
		categorize: categorize.ParentDir,
		logger:     logger.With("source", KindGitHub, "repo", opts.Owner+"/"+opts.Repo),
	}, nil
}

// Kind implements Source.
func (gs *GitHubSource) Kind() Kind { return KindGitHub }

// Repository returns "owner/repo".
func (gs *GitHubSource) Repository() string { return gs.opts.Owner + "/" + gs.opts.Repo }

type contentEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

// Enumerate lists dir breadth-first through the contents API. Categories come
// from each file's parent directory name.
func (gs *GitHubSource) Enumerate(ctx context.Context, dir string, filter Filter) ([]ComponentRecord, error) {
	dirRel, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}

	maxDepth := filter.MaxDepth
	if maxDepth <= 0 || maxDepth > gs.opts.MaxDepth {
		maxDepth = gs.opts.MaxDepth
	}

	type pending struct {
		dir   string
		depth int
	}
	queue := []pending{{dir: dirRel, depth: 1}}
	records := []ComponentRecord{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := gs.listDirectory(ctx, current.dir)
		if errors.Is(err, ErrNotFound) && current.dir == dirRel {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if gs.opts.EnforceExclusion && gs.policy.IsExcluded(e.Path) {
				continue
			}

			switch e.Type {
			case "dir":
				if current.depth < maxDepth {
					queue = append(queue, pending{dir: e.Path, depth: current.depth + 1})
				}
			case "file":
				if !filter.Accepts(e.Name) {
					continue
				}
				rel := relativeTo(dirRel, e.Path)
				records = append(records, ComponentRecord{
					Name:     categorize.Stem(e.Name),
					Path:     e.Path,
					RelPath:  rel,
					Category: gs.categorize(rel),
				})
			}
		}
	}

	gs.logger.Debug("Enumerated remote directory", "dir", dirRel, "count", len(records))
	return records, nil
}

// Fetch downloads p from the configured branch. Only the latest version is
// available.
func (gs *GitHubSource) Fetch(ctx context.Context, p string, version string) (ContentBundle, error) {
	if !IsLatest(version) {
		return ContentBundle{}, fmt.Errorf("%w: %q (remote sources only serve latest)", ErrUnsupportedVersion, version)
	}

	rel, err := fileops.CleanRelativePath(p)
	if err != nil {
		return ContentBundle{}, notFound(p)
	}
	if gs.opts.EnforceExclusion && gs.policy.IsExcluded(rel) {
		return ContentBundle{}, excluded(rel)
	}

	body, _, err := gs.get(ctx, gs.contentsURL(rel, nil))
	if err != nil {
		return ContentBundle{}, err
	}

	// A directory path returns an array; only single files are fetchable.
	if trimmed := strings.TrimSpace(string(body)); strings.HasPrefix(trimmed, "[") {
		return ContentBundle{}, notFound(rel)
	}

	var entry contentEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return ContentBundle{}, &UpstreamError{Status: http.StatusOK, Message: "decode contents response: " + err.Error()}
	}
	if entry.Type != "" && entry.Type != "file" {
		return ContentBundle{}, notFound(rel)
	}

	content, err := gs.decodeContent(ctx, entry)
	if err != nil {
		return ContentBundle{}, err
	}

	return ContentBundle{
		Path:    rel,
		Version: normalizeVersion(version),
		Content: gs.policy.Redact(content),
	}, nil
}

// History lists commits touching p on the configured branch, or tags when p
// is empty. A missing path or repository yields an empty history.
func (gs *GitHubSource) History(ctx context.Context, p string) ([]Revision, error) {
	if strings.TrimSpace(p) == "" {
		return gs.tags(ctx)
	}

	rel, err := fileops.CleanRelativePath(p)
	if err != nil {
		return []Revision{}, nil
	}
	if gs.opts.EnforceExclusion && gs.policy.IsExcluded(rel) {
		return []Revision{}, nil
	}

	q := url.Values{}
	q.Set("path", rel)
	q.Set("per_page", strconv.Itoa(githubPageSize))
	if gs.opts.Branch != "" {
		q.Set("sha", gs.opts.Branch)
	}

	var commits []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := gs.getJSON(ctx, gs.repoURL("commits")+"?"+q.Encode(), &commits); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Revision{}, nil
		}
		return nil, err
	}

	revisions := make([]Revision, 0, len(commits))
	for _, c := range commits {
		revisions = append(revisions, newRevision(c.SHA, c.Commit.Author.Date, c.Commit.Message))
	}
	return revisions, nil
}

// tags lists every release tag, following pagination. The tags endpoint
// carries only names and commit SHAs, so remote tag revisions have no date or
// message.
func (gs *GitHubSource) tags(ctx context.Context) ([]Revision, error) {
	revisions := []Revision{}
	err := gs.eachPage(ctx, gs.repoURL("tags")+"?per_page="+strconv.Itoa(githubPageSize), func(body []byte) error {
		var tags []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(body, &tags); err != nil {
			return &UpstreamError{Status: http.StatusOK, Message: "decode tags response: " + err.Error()}
		}
		for _, t := range tags {
			revisions = append(revisions, Revision{Version: t.Name})
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return []Revision{}, nil
	}
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

// listDirectory reads every page of a contents listing.
func (gs *GitHubSource) listDirectory(ctx context.Context, dir string) ([]contentEntry, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(githubPageSize))
	q.Set("page", "1")

	var all []contentEntry
	err := gs.eachPage(ctx, gs.contentsURL(dir, q), func(body []byte) error {
		var entries []contentEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			// The path names a file, not a directory.
			return notFound(dir)
		}
		all = append(all, entries...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// eachPage requests first and then every rel="next" page, handing each body
// to fn. It stops after maxPages pages.
func (gs *GitHubSource) eachPage(ctx context.Context, first string, fn func(body []byte) error) error {
	next := first
	for page := 1; next != ""; page++ {
		body, header, err := gs.get(ctx, next)
		if err != nil {
			return err
		}
		if err := fn(body); err != nil {
			return err
		}

		next = nextPageURL(header.Get("Link"))
		if next != "" && page >= maxPages {
			gs.logger.Warn("Stopping pagination", "url", first, "pages", page)
			break
		}
	}
	return nil
}

func (gs *GitHubSource) decodeContent(ctx context.Context, entry contentEntry) (string, error) {
	switch entry.Encoding {
	case "base64":
		clean := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, entry.Content)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return "", &UpstreamError{Status: http.StatusOK, Message: "invalid base64 content: " + err.Error()}
		}
		return string(data), nil
	case "", "none":
		// Files above the inline limit come without content.
		if entry.DownloadURL == "" {
			return entry.Content, nil
		}
		body, _, err := gs.get(ctx, entry.DownloadURL)
		if err != nil {
			return "", err
		}
		return string(body), nil
	default:
		return "", &UpstreamError{Status: http.StatusOK, Message: "unsupported content encoding " + entry.Encoding}
	}
}

func (gs *GitHubSource) repoURL(resource string) string {
	return fmt.Sprintf("%s/repos/%s/%s/%s", gs.opts.APIURL, url.PathEscape(gs.opts.Owner), url.PathEscape(gs.opts.Repo), resource)
}

func (gs *GitHubSource) contentsURL(p string, q url.Values) string {
	segments := []string{}
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}

	u := gs.repoURL("contents")
	if len(segments) > 0 {
		u += "/" + strings.Join(segments, "/")
	}

	if q == nil {
		q = url.Values{}
	}
	if gs.opts.Branch != "" {
		q.Set("ref", gs.opts.Branch)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (gs *GitHubSource) getJSON(ctx context.Context, u string, out any) error {
	body, _, err := gs.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Status: http.StatusOK, Message: "decode response: " + err.Error()}
	}
	return nil
}

// get performs one request under the per-call deadline and maps failure
// statuses onto the error taxonomy.
func (gs *GitHubSource) get(ctx context.Context, u string) ([]byte, http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, gs.opts.Timeout)
	defer cancel()

	start := time.Now()
	defer gs.logger.LogPerformance("github GET", start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if gs.opts.Token != "" && gs.trustedHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+gs.opts.Token)
	}

	resp, err := gs.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("github request timed out after %s: %w", gs.opts.Timeout, err)
		}
		return nil, nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := gs.checkStatus(resp); err != nil {
		return nil, nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBody))
	if err != nil {
		return nil, nil, fmt.Errorf("read github response: %w", err)
	}
	return body, resp.Header, nil
}

// trustedHost reports whether the token may be sent to u: the API host itself
// over the API's scheme, or the raw content host when talking to github.com.
// Pagination links and download URLs come from responses and can point
// anywhere.
func (gs *GitHubSource) trustedHost(u *url.URL) bool {
	if strings.EqualFold(u.Host, gs.apiURL.Host) && u.Scheme == gs.apiURL.Scheme {
		return true
	}
	return u.Scheme == "https" &&
		strings.EqualFold(u.Host, rawContentHost) &&
		strings.EqualFold(gs.apiURL.Host, "api.github.com")
}

func (gs *GitHubSource) checkStatus(resp *http.Response) error {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return nil
	}

	if status == http.StatusTooManyRequests ||
		(status == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		rl := &RateLimitError{Authenticated: gs.opts.Token != ""}
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			rl.Reset = time.Unix(reset, 0)
		}
		gs.logger.Warn("GitHub rate limit reached", "reset", rl.Reset, "authenticated", rl.Authenticated)
		return rl
	}

	if status == http.StatusNotFound {
		return notFound(resp.Request.URL.Path)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &UpstreamError{Status: status, Message: msg}
}

var linkNextPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="?next"?`)

// nextPageURL extracts the rel="next" target of a Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		if m := linkNextPattern.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}

func relativeTo(dir, p string) string {
	if dir == "" {
		return p
	}
	if rel, ok := strings.CutPrefix(p, dir+"/"); ok {
		return rel
	}
	return path.Base(p)
}
