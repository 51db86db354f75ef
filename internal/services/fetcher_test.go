package services

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	tu "github.com/desertthunder/coursetube/internal/testing"
)

const testPlaylistURL = "https://www.youtube.com/playlist?list=PLtest"

func newTestFetcher(srv *tu.YouTubeServer, opts FetcherOpts) *PlaylistFetcher {
	svc := NewYouTubeService(YouTubeOpts{BaseURL: srv.URL, APIKey: tu.TestAPIKey})
	return NewPlaylistFetcher(svc, opts)
}

func videoIDs(p *models.YouTubePlaylist) []string {
	ids := make([]string, len(p.Videos))
	for i, v := range p.Videos {
		ids[i] = v.ID
	}
	return ids
}

func TestPlaylistFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("Preconditions", func(t *testing.T) {
		t.Run("missing credential makes no calls", func(t *testing.T) {
			srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"a"}})
			f := NewPlaylistFetcher(NewYouTubeService(YouTubeOpts{BaseURL: srv.URL}), FetcherOpts{})

			out := f.Fetch(ctx, testPlaylistURL)
			if out.Kind != OutcomeFailed || !errors.Is(out.Err, shared.ErrMissingCredentials) {
				t.Fatalf("expected missing credentials failure, got %v: %v", out.Kind, out.Err)
			}
			if srv.TotalCalls() != 0 {
				t.Errorf("expected 0 calls, got %d", srv.TotalCalls())
			}
		})

		t.Run("nil service", func(t *testing.T) {
			out := NewPlaylistFetcher(nil, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
			if !errors.Is(out.Err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", out.Err)
			}
		})

		t.Run("invalid URL makes no calls", func(t *testing.T) {
			srv := tu.NewYouTubeServer(t)
			out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, "https://www.youtube.com/watch?v=abc")

			if out.Kind != OutcomeFailed || !errors.Is(out.Err, shared.ErrInvalidURL) {
				t.Fatalf("expected invalid URL failure, got %v: %v", out.Kind, out.Err)
			}
			if out.Playlist != nil {
				t.Error("expected no playlist")
			}
			if srv.TotalCalls() != 0 {
				t.Errorf("expected 0 calls, got %d", srv.TotalCalls())
			}
		})
	})

	t.Run("Not found stops after metadata", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t)
		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)

		if out.Kind != OutcomeNotFound {
			t.Fatalf("expected not found, got %v: %v", out.Kind, out.Err)
		}
		if out.Playlist != nil || out.Err != nil {
			t.Errorf("expected empty outcome, got %+v", out)
		}
		if srv.TotalCalls() != 1 || srv.Calls("playlists") != 1 {
			t.Errorf("expected exactly the metadata call, got %d calls", srv.TotalCalls())
		}
	})

	t.Run("120 videos take seven calls", func(t *testing.T) {
		for _, concurrency := range []int{1, 3} {
			srv := tu.NewYouTubeServer(t, tu.FakePlaylist{
				ID:          "PLtest",
				Title:       "Go in depth",
				Description: "All of it",
				Members:     tu.VideoIDs(120),
			})

			out := newTestFetcher(srv, FetcherOpts{Concurrency: concurrency}).Fetch(ctx, testPlaylistURL)
			if out.Kind != OutcomeFound {
				t.Fatalf("concurrency %d: expected found, got %v: %v", concurrency, out.Kind, out.Err)
			}

			if got := srv.TotalCalls(); got != 7 {
				t.Errorf("concurrency %d: expected 7 calls, got %d", concurrency, got)
			}
			if got := srv.Calls("playlistItems"); got != 3 {
				t.Errorf("concurrency %d: expected 3 page calls, got %d", concurrency, got)
			}
			if got := srv.BatchSizes(); !slices.Equal(got, []int{50, 50, 20}) {
				t.Errorf("concurrency %d: expected batches [50 50 20], got %v", concurrency, got)
			}
			if got := srv.PageTokens(); !slices.Equal(got, []string{"", "page-50", "page-100"}) {
				t.Errorf("concurrency %d: unexpected page tokens %v", concurrency, got)
			}
			if !slices.Equal(videoIDs(out.Playlist), tu.VideoIDs(120)) {
				t.Errorf("concurrency %d: videos out of order", concurrency)
			}

			p := out.Playlist
			if p.ID != "PLtest" || p.Title != "Go in depth" || p.Description != "All of it" || p.URL != testPlaylistURL {
				t.Errorf("unexpected metadata: %+v", p.PlaylistMetadata)
			}
		}
	})

	t.Run("Duplicates collapse to first occurrence", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"A", "B", "A", "C"}})
		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)

		if got := videoIDs(out.Playlist); !slices.Equal(got, []string{"A", "B", "C"}) {
			t.Errorf("expected [A B C], got %v", got)
		}
		if got := srv.BatchSizes(); !slices.Equal(got, []int{3}) {
			t.Errorf("expected one batch of 3, got %v", got)
		}
	})

	t.Run("Missing video becomes placeholder in place", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{
			ID:        "PLtest",
			Members:   []string{"A", "B", "C"},
			Missing:   []string{"B"},
			Durations: map[string]string{"A": "PT5M30S", "B": "PT1M", "C": "PT1H"},
		})
		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if out.Kind != OutcomeFound {
			t.Fatalf("expected found, got %v: %v", out.Kind, out.Err)
		}

		videos := out.Playlist.Videos
		if len(videos) != 3 {
			t.Fatalf("expected 3 videos, got %d", len(videos))
		}
		if videos[0].Title != "Video A" || videos[2].Title != "Video C" {
			t.Errorf("unexpected neighbours: %q, %q", videos[0].Title, videos[2].Title)
		}

		b := videos[1]
		if b.ID != "B" || b.Title != models.UnavailableVideoTitle || !b.Unavailable {
			t.Errorf("expected placeholder for B, got %+v", b)
		}
		if b.Description != "" || b.Duration != "" {
			t.Errorf("placeholder should have no description or duration, got %+v", b)
		}
		if b.Thumbnail != "https://img.youtube.com/vi/B/maxresdefault.jpg" || b.URL != "https://www.youtube.com/watch?v=B" {
			t.Errorf("unexpected synthesized URLs: %s %s", b.Thumbnail, b.URL)
		}
		if videos[0].Duration != "PT5M30S" {
			t.Errorf("expected duration passed through, got %q", videos[0].Duration)
		}
		if out.Playlist.UnavailableCount() != 1 {
			t.Errorf("expected 1 unavailable, got %d", out.Playlist.UnavailableCount())
		}
	})

	t.Run("Detail response order does not matter", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"A", "B", "C"}})
		srv.ReverseVideos = true

		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if got := videoIDs(out.Playlist); !slices.Equal(got, []string{"A", "B", "C"}) {
			t.Errorf("expected [A B C], got %v", got)
		}
		for _, v := range out.Playlist.Videos {
			if v.Title != "Video "+v.ID {
				t.Errorf("record for %s carries title %q", v.ID, v.Title)
			}
		}
	})

	t.Run("IDs under snippet.resourceId", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"x1", "x2"}, ResourceIDs: true})
		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)

		if got := videoIDs(out.Playlist); !slices.Equal(got, []string{"x1", "x2"}) {
			t.Errorf("expected [x1 x2], got %v", got)
		}
	})

	t.Run("Empty playlist is found with zero videos", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Title: "Empty"})
		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)

		if out.Kind != OutcomeFound {
			t.Fatalf("expected found, got %v: %v", out.Kind, out.Err)
		}
		if out.Playlist.Videos == nil || len(out.Playlist.Videos) != 0 {
			t.Errorf("expected empty non-nil videos, got %#v", out.Playlist.Videos)
		}
		if srv.Calls("videos") != 0 {
			t.Errorf("expected no detail calls, got %d", srv.Calls("videos"))
		}
	})

	t.Run("Second page failure aborts", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: tu.VideoIDs(120)})
		srv.Fail = func(resource string, n int) int {
			if resource == "playlistItems" && n == 2 {
				return http.StatusInternalServerError
			}
			return 0
		}

		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if out.Kind != OutcomeFailed || out.Playlist != nil {
			t.Fatalf("expected failure without playlist, got %+v", out)
		}
		if StatusCode(out.Err) != http.StatusInternalServerError {
			t.Errorf("expected status 500 preserved, got %v", out.Err)
		}
		if srv.Calls("playlistItems") != 2 || srv.Calls("videos") != 0 {
			t.Errorf("expected fetch to stop at page 2, got %d pages and %d batches",
				srv.Calls("playlistItems"), srv.Calls("videos"))
		}
	})

	t.Run("Repeated page token aborts", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Title: "Loop", Members: tu.VideoIDs(3)})
		srv.StuckPageToken = "again"

		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if out.Kind != OutcomeFailed || !errors.Is(out.Err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest failure, got %v: %v", out.Kind, out.Err)
		}
		if got := srv.Calls("playlistItems"); got != 2 {
			t.Errorf("expected 2 playlistItems calls, got %d", got)
		}
		if got := srv.Calls("videos"); got != 0 {
			t.Errorf("expected no videos calls, got %d", got)
		}
		if want := []string{"", "again"}; !slices.Equal(srv.PageTokens(), want) {
			t.Errorf("PageTokens() = %v, want %v", srv.PageTokens(), want)
		}
	})

	t.Run("Metadata failure carries status", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"a"}})
		srv.Fail = func(resource string, _ int) int {
			if resource == "playlists" {
				return http.StatusForbidden
			}
			return 0
		}

		out := newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if !errors.Is(out.Err, shared.ErrAPIRequest) || StatusCode(out.Err) != http.StatusForbidden {
			t.Fatalf("expected 403 API error, got %v", out.Err)
		}
		if srv.TotalCalls() != 1 {
			t.Errorf("expected 1 call, got %d", srv.TotalCalls())
		}
	})

	t.Run("Batch failure aborts", func(t *testing.T) {
		for _, concurrency := range []int{1, 4} {
			srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: tu.VideoIDs(120)})
			srv.Fail = func(resource string, n int) int {
				if resource == "videos" && n == 2 {
					return http.StatusServiceUnavailable
				}
				return 0
			}

			out := newTestFetcher(srv, FetcherOpts{Concurrency: concurrency}).Fetch(ctx, testPlaylistURL)
			if out.Kind != OutcomeFailed || out.Playlist != nil {
				t.Errorf("concurrency %d: expected failure, got %v", concurrency, out.Kind)
			}
			if StatusCode(out.Err) != http.StatusServiceUnavailable {
				t.Errorf("concurrency %d: expected 503, got %v", concurrency, out.Err)
			}
		}

		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: tu.VideoIDs(120)})
		srv.Fail = func(resource string, n int) int {
			if resource == "videos" && n == 1 {
				return http.StatusServiceUnavailable
			}
			return 0
		}
		newTestFetcher(srv, FetcherOpts{}).Fetch(ctx, testPlaylistURL)
		if srv.Calls("videos") != 1 {
			t.Errorf("sequential fetch should stop at the failed batch, made %d calls", srv.Calls("videos"))
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: []string{"a"}})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		out := newTestFetcher(srv, FetcherOpts{}).Fetch(cctx, testPlaylistURL)
		if out.Kind != OutcomeFailed || !errors.Is(out.Err, context.Canceled) {
			t.Errorf("expected canceled failure, got %v: %v", out.Kind, out.Err)
		}
	})

	t.Run("Events", func(t *testing.T) {
		srv := tu.NewYouTubeServer(t, tu.FakePlaylist{ID: "PLtest", Members: tu.VideoIDs(60)})

		var mu sync.Mutex
		phases := map[FetchPhase]int{}
		f := newTestFetcher(srv, FetcherOpts{
			Concurrency: 2,
			OnEvent: func(ev FetchEvent) {
				mu.Lock()
				defer mu.Unlock()
				phases[ev.Phase]++
			},
		})

		if out := f.Fetch(ctx, testPlaylistURL); out.Kind != OutcomeFound {
			t.Fatalf("expected found, got %v: %v", out.Kind, out.Err)
		}
		if phases[PhaseMetadata] != 1 || phases[PhaseMembers] != 2 || phases[PhaseDetails] != 2 {
			t.Errorf("unexpected event counts: %v", phases)
		}
	})
}

func TestBestThumbnail(t *testing.T) {
	th := func(u string) *Thumbnail { return &Thumbnail{URL: u} }

	tests := []struct {
		name string
		in   Thumbnails
		want string
	}{
		{"maxres wins", Thumbnails{Maxres: th("max"), Standard: th("std"), Default: th("def")}, "max"},
		{"standard over high", Thumbnails{Standard: th("std"), High: th("high")}, "std"},
		{"high over medium", Thumbnails{High: th("high"), Medium: th("med"), Default: th("def")}, "high"},
		{"medium over default", Thumbnails{Medium: th("med"), Default: th("def")}, "med"},
		{"default only", Thumbnails{Default: th("def")}, "def"},
		{"empty url skipped", Thumbnails{Maxres: th(""), Default: th("def")}, "def"},
		{"synthesized fallback", Thumbnails{}, "https://img.youtube.com/vi/xyz/maxresdefault.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestThumbnail("xyz", tt.in); got != tt.want {
				t.Errorf("bestThumbnail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDedupeAndChunk(t *testing.T) {
	if got := dedupe([]string{"A", "B", "A", "C", "B"}); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("dedupe() = %v", got)
	}
	if got := dedupe(nil); len(got) != 0 {
		t.Errorf("dedupe(nil) = %v", got)
	}

	batches := chunk(tu.VideoIDs(101), MaxResults)
	if len(batches) != 3 || len(batches[0]) != 50 || len(batches[1]) != 50 || len(batches[2]) != 1 {
		t.Errorf("unexpected batch shapes: %d batches", len(batches))
	}
	if batches[2][0] != "vid-100" {
		t.Errorf("expected last batch to start at vid-100, got %s", batches[2][0])
	}
}

func TestExtractVideoID(t *testing.T) {
	var both PlaylistItemResource
	both.ContentDetails.VideoID = "primary"
	both.Snippet.ResourceID.VideoID = "secondary"
	if id, _ := extractVideoID(both); id != "primary" {
		t.Errorf("expected contentDetails to win, got %s", id)
	}

	var neither PlaylistItemResource
	if _, ok := extractVideoID(neither); ok {
		t.Error("expected no ID")
	}
}
