package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// AuthManager handles GitHub authentication.
type AuthManager struct {
	client *github.Client
	token  string
}

// NewAuthManager creates a new authentication manager.
func NewAuthManager() *AuthManager {
	return &AuthManager{}
}

// Authenticate sets up the GitHub client with the provided token.
func (am *AuthManager) Authenticate(token string) error {
	if token == "" {
		return fmt.Errorf("GitHub token cannot be empty")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	am.client = github.NewClient(tc)
	am.token = token

	return nil
}

// ValidateToken validates the token by fetching the authenticated user.
// The returned login is what fork creation routes on: forks into the
// user's own account need no organization parameter.
func (am *AuthManager) ValidateToken(ctx context.Context) (*TokenInfo, error) {
	if am.client == nil {
		return nil, fmt.Errorf("not authenticated: call Authenticate() first")
	}

	user, resp, err := am.client.Users.Get(ctx, "")
	if err != nil {
		return nil, WrapAPIError(err, "authenticated user")
	}

	scopes := []string{}
	if scopeHeader := resp.Header.Get("X-OAuth-Scopes"); scopeHeader != "" {
		scopes = strings.Split(strings.ReplaceAll(scopeHeader, " ", ""), ",")
	}

	return &TokenInfo{
		User:   user.GetLogin(),
		Scopes: scopes,
	}, nil
}

// TokenInfo contains information about the authenticated token.
type TokenInfo struct {
	User   string   `json:"user"`
	Scopes []string `json:"scopes"`
}

// GetAuthInstructions returns instructions for setting up authentication.
func GetAuthInstructions() string {
	return `A GitHub token is required. Provide one using any of the following:

1. Environment variable:
   export GITHUB_TOKEN="your_personal_access_token"

2. A .env file in the current directory or in your home directory:
   GITHUB_TOKEN=your_personal_access_token

3. Configuration file (~/.superfork/config.yaml):
   github:
     token: "your_personal_access_token"

To create a personal access token:
1. Go to GitHub Settings > Developer settings > Personal access tokens
2. Click "Generate new token (classic)"
3. Select the repo scope
4. Copy the generated token and use it with one of the methods above`
}
