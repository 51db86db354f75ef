package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/coursetube/internal/shared"
	tu "github.com/desertthunder/coursetube/internal/testing"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{})
			if svc.baseURL != DefaultYouTubeBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", DefaultYouTubeBaseURL, svc.baseURL)
			}
			if svc.limiter != nil {
				t.Error("expected no limiter when requests_per_second is 0")
			}
			if svc.HasCredentials() {
				t.Error("expected no credentials")
			}
		})

		t.Run("creates service with custom URL and pacing", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{BaseURL: "http://localhost:9000/", RequestsPerSecond: 5})
			if svc.baseURL != "http://localhost:9000" {
				t.Errorf("expected trailing slash trimmed, got %s", svc.baseURL)
			}
			if svc.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("serviceEndpoint", func(t *testing.T) {
		tests := []struct {
			base string
			want string
		}{
			{DefaultYouTubeBaseURL, "https://www.googleapis.com/"},
			{"http://127.0.0.1:8080", "http://127.0.0.1:8080/"},
			{"http://127.0.0.1:8080/youtube/v3", "http://127.0.0.1:8080/"},
		}
		for _, tt := range tests {
			if got := serviceEndpoint(tt.base); got != tt.want {
				t.Errorf("serviceEndpoint(%q) = %q, want %q", tt.base, got, tt.want)
			}
		}
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService(YouTubeOpts{}); svc.Name() != "YouTube" {
			t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		ctx := context.Background()

		t.Run("authenticates with api_key", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{})
			if err := svc.Authenticate(ctx, map[string]string{"api_key": "abc"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !svc.HasCredentials() {
				t.Error("expected credentials after Authenticate")
			}
		})

		t.Run("authenticates with access_token", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{})
			if err := svc.Authenticate(ctx, map[string]string{"access_token": "tok"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.httpClient == svc.baseClient {
				t.Error("expected oauth2 client to replace base client")
			}
		})

		t.Run("fails without credentials", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{})
			err := svc.Authenticate(ctx, map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Playlists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/youtube/v3/playlists" {
				t.Errorf("expected path /youtube/v3/playlists, got %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("part") != "snippet" || q.Get("id") != "PL123" || q.Get("key") != "k" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "PL123", "snippet": map[string]any{"title": "Go Course", "description": "Learn Go"}},
				},
			})
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})
		items, err := svc.Playlists(context.Background(), "PL123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].Snippet.Title != "Go Course" || items[0].Snippet.Description != "Learn Go" {
			t.Errorf("unexpected playlists: %+v", items)
		}
	})

	t.Run("PlaylistItems", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("part") != "contentDetails,snippet" {
				t.Errorf("unexpected part: %s", q.Get("part"))
			}
			if q.Get("maxResults") != "50" {
				t.Errorf("expected maxResults 50, got %s", q.Get("maxResults"))
			}

			w.Header().Set("Content-Type", "application/json")
			switch q.Get("pageToken") {
			case "":
				w.Write([]byte(`{"nextPageToken":"NEXT","items":[{"contentDetails":{"videoId":"a"}}]}`))
			case "NEXT":
				w.Write([]byte(`{"items":[{"snippet":{"resourceId":{"videoId":"b"}}}]}`))
			default:
				t.Errorf("unexpected page token %q", q.Get("pageToken"))
			}
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})

		first, err := svc.PlaylistItems(context.Background(), "PL1", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if first.NextPageToken != "NEXT" || first.Items[0].ContentDetails.VideoID != "a" {
			t.Errorf("unexpected first page: %+v", first)
		}

		second, err := svc.PlaylistItems(context.Background(), "PL1", "NEXT")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.NextPageToken != "" || second.Items[0].Snippet.ResourceID.VideoID != "b" {
			t.Errorf("unexpected second page: %+v", second)
		}
	})

	t.Run("Videos", func(t *testing.T) {
		t.Run("joins IDs", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("id"); got != "a,b" {
					t.Errorf("expected id 'a,b', got %s", got)
				}
				w.Write([]byte(`{"items":[{"id":"a","contentDetails":{"duration":"PT1M"}}]}`))
			}))
			defer server.Close()

			svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})
			videos, err := svc.Videos(context.Background(), []string{"a", "b"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(videos) != 1 || videos[0].ContentDetails.Duration != "PT1M" {
				t.Errorf("unexpected videos: %+v", videos)
			}
		})

		t.Run("rejects empty and oversized batches", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{APIKey: "k"})
			if _, err := svc.Videos(context.Background(), nil); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for empty batch, got %v", err)
			}
			if _, err := svc.Videos(context.Background(), tu.VideoIDs(51)); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for 51 IDs, got %v", err)
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("non-2xx becomes APIError", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
			}))
			defer server.Close()

			svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})
			_, err := svc.Playlists(context.Background(), "PL1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "quotaExceeded" || apiErr.Endpoint != "playlists" {
				t.Errorf("unexpected APIError: %+v", apiErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected APIError to match ErrAPIRequest")
			}
			if StatusCode(err) != http.StatusForbidden {
				t.Errorf("StatusCode() = %d, want 403", StatusCode(err))
			}
		})

		t.Run("undecodable error body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>bad gateway</html>"))
			}))
			defer server.Close()

			svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})
			_, err := svc.Videos(context.Background(), []string{"a"})
			if StatusCode(err) != http.StatusBadGateway {
				t.Fatalf("expected status 502, got %v", err)
			}
			if strings.Contains(err.Error(), "html") {
				t.Errorf("expected raw body to be left out of message, got %v", err)
			}
		})

		t.Run("transport failure wraps ErrAPIRequest", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			svc := NewYouTubeService(YouTubeOpts{BaseURL: "http://example.com", APIKey: "k", HTTPClient: client})

			_, err := svc.Playlists(context.Background(), "PL1")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if StatusCode(err) != 0 {
				t.Errorf("expected no status for transport failure, got %d", StatusCode(err))
			}
		})

		t.Run("malformed JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			}))
			defer server.Close()

			svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, APIKey: "k"})
			if _, err := svc.Playlists(context.Background(), "PL1"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Bearer token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if r.URL.Query().Has("key") {
				t.Error("expected no key parameter without an API key")
			}
			w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{BaseURL: server.URL, AccessToken: "tok"})
		if !svc.HasCredentials() {
			t.Fatal("expected token to count as a credential")
		}
		if _, err := svc.Playlists(context.Background(), "PL1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}
