package source

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	credentialService = "uicatalog"
	githubTokenKey    = "github_pat"

	// TokenEnv is consulted when no token is configured explicitly.
	TokenEnv = "GITHUB_TOKEN"

	minTokenLength = 20
)

// tokenPrefixes are the GitHub token kinds accepted by StoreGitHubToken:
// classic and fine-grained PATs, OAuth, user-to-server and server-to-server.
var tokenPrefixes = []string{"ghp_", "github_pat_", "gho_", "ghu_", "ghs_"}

// CredentialManager keeps the GitHub token used by remote sources in the OS
// credential store.
type CredentialManager struct {
	service string
}

// NewCredentialManager returns a manager bound to the "uicatalog" service in
// the OS credential store.
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{service: credentialService}
}

// StoreGitHubToken saves a GitHub token in the OS credential store,
// replacing any token stored before. Surrounding whitespace is trimmed and
// the token must look like a GitHub token (see validateTokenFormat).
//
// Parameters:
//   - token: the token as pasted by the user
//
// Returns:
//   - error: an empty or malformed token, or a credential store failure
func (cm *CredentialManager) StoreGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := validateTokenFormat(token); err != nil {
		return fmt.Errorf("invalid token format: %w", err)
	}
	if err := keyring.Set(cm.service, githubTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

// GetGitHubToken reads the stored GitHub token.
//
// Returns:
//   - string: the stored token, trimmed
//   - error: no token stored (with a hint to run `uicatalog token set`) or a
//     credential store failure
func (cm *CredentialManager) GetGitHubToken() (string, error) {
	token, err := cm.lookup()
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", fmt.Errorf("no GitHub token found - run `uicatalog token set`")
	case err != nil:
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	case token == "":
		return "", fmt.Errorf("stored token is empty - run `uicatalog token set`")
	}
	return token, nil
}

// DeleteGitHubToken removes the stored GitHub token, for rotation or when
// switching to $GITHUB_TOKEN.
//
// Returns:
//   - error: a credential store failure; nil when no token was stored
func (cm *CredentialManager) DeleteGitHubToken() error {
	if err := keyring.Delete(cm.service, githubTokenKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

// HasGitHubToken reports whether a non-empty token is stored, without
// returning it.
func (cm *CredentialManager) HasGitHubToken() bool {
	token, err := cm.lookup()
	return err == nil && token != ""
}

func (cm *CredentialManager) lookup() (string, error) {
	token, err := keyring.Get(cm.service, githubTokenKey)
	return strings.TrimSpace(token), err
}

// ResolveToken picks the token remote sources authenticate with.
//
// Parameters:
//   - explicit: the github.token config value, possibly empty
//
// Returns:
//   - string: the first non-empty of explicit, $GITHUB_TOKEN and the stored
//     token; "" when none is available, which leaves remote sources
//     unauthenticated and subject to the lower rate limit
//
// Example:
//
//	token := source.NewCredentialManager().ResolveToken(cfg.GitHub.Token)
//	if token == "" {
//	    logger.Warn("No GitHub token configured")
//	}
func (cm *CredentialManager) ResolveToken(explicit string) string {
	for _, candidate := range []string{explicit, os.Getenv(TokenEnv)} {
		if t := strings.TrimSpace(candidate); t != "" {
			return t
		}
	}
	token, _ := cm.GetGitHubToken()
	return token
}

// validateTokenFormat checks length and prefix only; GitHub is the judge of
// whether the token works.
func validateTokenFormat(token string) error {
	if len(token) < minTokenLength {
		return fmt.Errorf("token too short (minimum %d characters)", minTokenLength)
	}
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}
	return fmt.Errorf("token does not match expected GitHub PAT format (should start with ghp_ or github_pat_)")
}

// CredentialStoreStatus checks the OS credential store by writing, reading
// back and deleting a throwaway entry.
//
// Returns:
//   - map[string]any: "token_stored" and "available" booleans, plus "error"
//     with the store's message when it is unavailable
func (cm *CredentialManager) CredentialStoreStatus() map[string]any {
	status := map[string]any{
		"token_stored": cm.HasGitHubToken(),
		"available":    false,
	}

	const checkKey, checkValue = "uicatalog_check", "check"
	if err := keyring.Set(cm.service, checkKey, checkValue); err != nil {
		status["error"] = err.Error()
		return status
	}
	defer keyring.Delete(cm.service, checkKey)

	got, err := keyring.Get(cm.service, checkKey)
	switch {
	case err != nil:
		status["error"] = err.Error()
	case got != checkValue:
		status["error"] = "credential store returned a different check value"
	default:
		status["available"] = true
	}
	return status
}
