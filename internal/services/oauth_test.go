package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/oauth2"
)

type sequenceTokenSource struct {
	tokens []*oauth2.Token
	calls  int
	err    error
}

func (s *sequenceTokenSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	tok := s.tokens[min(s.calls, len(s.tokens)-1)]
	s.calls++
	return tok, nil
}

func TestNewYouTubeOAuthConfig(t *testing.T) {
	t.Run("requires client credentials", func(t *testing.T) {
		if _, err := NewYouTubeOAuthConfig("", "secret", ""); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("defaults redirect URI", func(t *testing.T) {
		cfg, err := NewYouTubeOAuthConfig("id", "secret", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.RedirectURL != "http://localhost:3000/callback" {
			t.Errorf("unexpected redirect %q", cfg.RedirectURL)
		}
		if len(cfg.Scopes) != 1 || cfg.Scopes[0] != YouTubeReadonlyScope {
			t.Errorf("unexpected scopes %v", cfg.Scopes)
		}
	})

	t.Run("auth URL requests offline access with PKCE", func(t *testing.T) {
		cfg, _ := NewYouTubeOAuthConfig("id", "secret", "http://localhost:9999/callback")

		raw := AuthCodeURL(cfg, "state-123", oauth2.GenerateVerifier())
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid auth URL: %v", err)
		}

		q := u.Query()
		checks := map[string]string{
			"state":                 "state-123",
			"access_type":           "offline",
			"code_challenge_method": "S256",
			"client_id":             "id",
			"redirect_uri":          "http://localhost:9999/callback",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("%s = %q, want %q", k, got, want)
			}
		}
		if q.Get("code_challenge") == "" {
			t.Error("expected a code challenge")
		}
	})
}

func TestNotifyingTokenSource(t *testing.T) {
	t.Run("notifies only when the token changes", func(t *testing.T) {
		base := &sequenceTokenSource{tokens: []*oauth2.Token{
			{AccessToken: "stored"},
			{AccessToken: "stored"},
			{AccessToken: "refreshed"},
			{AccessToken: "refreshed"},
		}}

		var seen []string
		ts := NewNotifyingTokenSource(base, &oauth2.Token{AccessToken: "stored"}, func(tok *oauth2.Token) {
			seen = append(seen, tok.AccessToken)
		})

		for range 4 {
			if _, err := ts.Token(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if len(seen) != 1 || seen[0] != "refreshed" {
			t.Errorf("expected a single refresh notification, got %v", seen)
		}
	})

	t.Run("propagates errors", func(t *testing.T) {
		want := errors.New("token revoked")
		ts := NewNotifyingTokenSource(&sequenceTokenSource{err: want}, nil, func(*oauth2.Token) {
			t.Error("callback should not run on error")
		})

		if _, err := ts.Token(); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	})

	t.Run("drives the service's bearer token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer refreshed" {
				t.Errorf("unexpected authorization header %q", got)
			}
			w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		refreshed := false
		ts := NewNotifyingTokenSource(
			&sequenceTokenSource{tokens: []*oauth2.Token{{AccessToken: "refreshed"}}},
			&oauth2.Token{AccessToken: "expired"},
			func(*oauth2.Token) { refreshed = true },
		)

		svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, TokenSource: ts})
		if !svc.HasCredentials() {
			t.Fatal("expected token source to count as a credential")
		}
		if _, err := svc.Playlists(context.Background(), "PL1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !refreshed {
			t.Error("expected refresh callback")
		}
	})
}
