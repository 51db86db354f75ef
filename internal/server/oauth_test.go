package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/oauth2"
)

type tokenEndpoint struct {
	*httptest.Server
	mu   sync.Mutex
	form url.Values
}

func newTokenEndpoint(t *testing.T, status int) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{}
	te.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		te.mu.Lock()
		te.form = r.PostForm
		te.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-123",
			"refresh_token": "refresh-456",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(te.Close)
	return te
}

func (te *tokenEndpoint) config(redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  redirect,
		Endpoint:     oauth2.Endpoint{AuthURL: te.URL + "/auth", TokenURL: te.URL + "/token"},
	}
}

func callback(h http.Handler, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rec
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code with verifier", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(te.config("http://localhost:3000/callback"), "state-1", "verifier-1")

		rec := callback(h, "state=state-1&code=abc")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "YouTube connected") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "access-123" || result.Token.RefreshToken != "refresh-456" {
			t.Errorf("unexpected token %+v", result.Token)
		}

		te.mu.Lock()
		defer te.mu.Unlock()
		if te.form.Get("code") != "abc" || te.form.Get("code_verifier") != "verifier-1" {
			t.Errorf("unexpected token request %v", te.form)
		}
	})

	t.Run("rejects state mismatch", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(te.config(""), "state-1", "v")

		if rec := callback(h, "state=forged&code=abc"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Error(), shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", result.Error())
		}
	})

	t.Run("reports denied consent", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(te.config(""), "s", "v")

		if rec := callback(h, "state=s&error=access_denied"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("reports failed exchange", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusBadRequest)
		h := NewOAuthHandler(te.config(""), "s", "v")

		if rec := callback(h, "state=s&code=abc"); rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("processes one callback", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(te.config(""), "s", "v")

		callback(h, "state=s&code=abc")
		if rec := callback(h, "state=s&code=abc"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}

		h.Send(OAuthResult{err: context.Canceled})
		if _, open := <-h.Result(); !open {
			t.Fatal("expected first result")
		}
		if _, open := <-h.Result(); open {
			t.Error("expected channel to be closed")
		}
	})

	t.Run("routes follow redirect URL", func(t *testing.T) {
		te := newTokenEndpoint(t, http.StatusOK)
		tests := map[string]string{
			"":                                   "/callback",
			"http://localhost:3000/":             "/callback",
			"http://localhost:8080/oauth/google": "/oauth/google",
		}
		for redirect, want := range tests {
			h := NewOAuthHandler(te.config(redirect), "s", "v")
			if got := h.Routes(); len(got) != 1 || got[0] != want {
				t.Errorf("redirect %q: expected %s, got %v", redirect, want, got)
			}
		}
	})
}
