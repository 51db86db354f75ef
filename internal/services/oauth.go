package services

import (
	"fmt"
	"sync"

	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// YouTubeReadonlyScope grants read access to the account's playlists, private ones included.
	YouTubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

	defaultRedirectURI = "http://localhost:3000/callback"
)

// NewYouTubeOAuthConfig builds the authorization code flow configuration for a Google OAuth client.
//
// An empty redirectURI defaults to the local callback server started by the auth command.
func NewYouTubeOAuthConfig(clientID, clientSecret, redirectURI string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{YouTubeReadonlyScope},
		Endpoint:     endpoints.Google,
	}, nil
}

// AuthCodeURL returns the consent page URL for state, requesting a refresh token and PKCE.
func AuthCodeURL(config *oauth2.Config, state, verifier string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
}

// NotifyingTokenSource wraps base and calls onRefresh whenever it hands out a token
// different from the previous one, so refreshed credentials can be persisted.
type NotifyingTokenSource struct {
	base      oauth2.TokenSource
	onRefresh func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

// NewNotifyingTokenSource wraps base. current is the token the caller already has stored.
func NewNotifyingTokenSource(base oauth2.TokenSource, current *oauth2.Token, onRefresh func(*oauth2.Token)) *NotifyingTokenSource {
	ts := &NotifyingTokenSource{base: base, onRefresh: onRefresh}
	if current != nil {
		ts.last = current.AccessToken
	}
	return ts
}

// Token implements [oauth2.TokenSource].
func (s *NotifyingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.onRefresh != nil {
		s.onRefresh(tok)
	}
	return tok, nil
}
