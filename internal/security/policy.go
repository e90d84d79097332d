// Package security decides which project files may leave the catalog and
// scrubs sensitive text from the ones that do.
//
// Both operations are pure and never fail: an unmatched pattern leaves the
// input untouched. Exclusion patterns are matched case-insensitively against
// the root-relative, slash-separated path of a file, so the same decision is
// made during enumeration and during a direct fetch.
package security

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Default redaction tokens.
const (
	RedactedTool = "[REDACTED_TOOL]"
	RedactedKey  = "[REDACTED_KEY]"
)

// defaultExcludePatterns block credential-like names, internal-only
// directories, dependency trees and VCS metadata.
var defaultExcludePatterns = []string{
	`\.env`,
	`secret`,
	`private`,
	`(^|/)personas(/|$)`,
	`(^|/)messaging(/|$)`,
	`(^|/)internal-docs(/|$)`,
	`(^|/)deep research(/|$)`,
	`(^|/)node_modules(/|$)`,
	`(^|/)\.git(/|$)`,
}

// DefaultRedactTerms are internal tool names scrubbed from every body.
var DefaultRedactTerms = []string{"MyMarky", "UseQueue"}

// keyPattern matches OpenAI-style secret keys and api_key assignments.
const keyPattern = `sk-[a-zA-Z0-9]{48}|api[_-]?key[_-]?[a-zA-Z0-9]+`

// RedactionRule replaces every match of Pattern with Replacement.
type RedactionRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Policy is an immutable exclusion + redaction rule set.
type Policy struct {
	exclude []*regexp.Regexp
	rules   []RedactionRule
}

// Options customise a Policy. Zero value yields the default policy.
type Options struct {
	// ExtraExcludes are additional case-insensitive regular expressions.
	ExtraExcludes []string
	// RedactTerms replace DefaultRedactTerms when non-nil.
	RedactTerms []string
}

// Default returns the built-in policy.
func Default() *Policy {
	p, _ := New(Options{})
	return p
}

// New compiles a policy. It fails with a *PatternError for a malformed
// exclusion pattern and with a *TermError for a redaction term that could
// match part of a replacement token, since such a term would make Redact
// rewrite its own output. Blank terms are ignored.
func New(opts Options) (*Policy, error) {
	p := &Policy{}

	patterns := append([]string{}, defaultExcludePatterns...)
	patterns = append(patterns, opts.ExtraExcludes...)
	for _, raw := range patterns {
		re, err := regexp.Compile(`(?i)` + raw)
		if err != nil {
			return nil, &PatternError{Pattern: raw, Err: err}
		}
		p.exclude = append(p.exclude, re)
	}

	terms := opts.RedactTerms
	if terms == nil {
		terms = DefaultRedactTerms
	}
	alt, err := termAlternation(terms)
	if err != nil {
		return nil, err
	}

	// Tool names go first; their token contains nothing the key rule matches.
	if alt != "" {
		p.rules = append(p.rules, RedactionRule{
			Pattern:     regexp.MustCompile(`(?i)(` + alt + `)`),
			Replacement: RedactedTool,
		})
	}
	p.rules = append(p.rules, RedactionRule{
		Pattern:     regexp.MustCompile(`(?i)(` + keyPattern + `)`),
		Replacement: RedactedKey,
	})

	return p, nil
}

// IsExcluded reports whether an artifact path must never be listed or served.
// Backslashes are normalised so Windows-style paths get the same answer.
func (p *Policy) IsExcluded(artifactPath string) bool {
	normalized := strings.ReplaceAll(artifactPath, `\`, "/")
	normalized = path.Clean("/" + normalized)[1:]
	for _, re := range p.exclude {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Redact applies every rule in declaration order. Redact(Redact(x)) == Redact(x).
func (p *Policy) Redact(content string) string {
	for _, rule := range p.rules {
		content = rule.Pattern.ReplaceAllLiteralString(content, rule.Replacement)
	}
	return content
}

func termAlternation(terms []string) (string, error) {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		for _, token := range []string{RedactedTool, RedactedKey} {
			if overlapsToken(t, token) {
				return "", &TermError{Term: t, Token: token}
			}
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return strings.Join(quoted, "|"), nil
}

// overlapsToken reports whether a match of term could share characters with
// token: term inside token, token inside term, or term straddling either edge
// of token.
func overlapsToken(term, token string) bool {
	term, token = strings.ToLower(term), strings.ToLower(token)
	if strings.Contains(token, term) || strings.Contains(term, token) {
		return true
	}
	for i := 1; i < len(token); i++ {
		if strings.HasPrefix(term, token[i:]) || strings.HasSuffix(term, token[:i]) {
			return true
		}
	}
	return false
}

// PatternError reports an exclusion pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "invalid exclusion pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error { return e.Err }

// TermError reports a redaction term that cannot be applied safely.
type TermError struct {
	Term  string
	Token string
}

func (e *TermError) Error() string {
	return fmt.Sprintf("redaction term %q overlaps replacement token %s", e.Term, e.Token)
}
