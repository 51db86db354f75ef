package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// TestAPIKey is the key [YouTubeServer] accepts.
const TestAPIKey = "test-key"

// FakePlaylist describes a playlist served by [YouTubeServer].
type FakePlaylist struct {
	ID          string
	Title       string
	Description string
	Members     []string          // Video IDs in membership order; repeats allowed
	Missing     []string          // IDs left out of video detail responses
	Durations   map[string]string // ISO-8601 durations; absent IDs get no duration
	ResourceIDs bool              // Put IDs under snippet.resourceId instead of contentDetails
}

// YouTubeServer is an in-process fake of the Data API's playlists, playlistItems and videos resources.
//
// It records every request so tests can assert on call counts and batch sizes.
type YouTubeServer struct {
	*httptest.Server

	// Fail returns a non-zero status to fail the nth (1-based) call to resource.
	Fail func(resource string, n int) int
	// ReverseVideos returns video details in reverse request order.
	ReverseVideos bool
	// StuckPageToken, when set, is returned as nextPageToken on every playlistItems page.
	StuckPageToken string

	mu         sync.Mutex
	playlists  map[string]FakePlaylist
	missing    map[string]bool
	durations  map[string]string
	calls      map[string]int
	batchSizes []int
	tokens     []string
}

// NewYouTubeServer starts a fake Data API serving playlists and closes it when the test ends.
func NewYouTubeServer(t *testing.T, playlists ...FakePlaylist) *YouTubeServer {
	t.Helper()

	s := &YouTubeServer{
		playlists: make(map[string]FakePlaylist),
		missing:   make(map[string]bool),
		durations: make(map[string]string),
		calls:     make(map[string]int),
	}
	for _, p := range playlists {
		s.playlists[p.ID] = p
		for _, id := range p.Missing {
			s.missing[id] = true
		}
		for id, d := range p.Durations {
			s.durations[id] = d
		}
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Calls returns how many requests were made to resource.
func (s *YouTubeServer) Calls(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[resource]
}

// TotalCalls returns the number of requests across all resources.
func (s *YouTubeServer) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// BatchSizes returns the ID count of each videos request, sorted descending.
func (s *YouTubeServer) BatchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := slices.Clone(s.batchSizes)
	slices.Sort(sizes)
	slices.Reverse(sizes)
	return sizes
}

// PageTokens returns the pageToken sent with each playlistItems request, in order.
func (s *YouTubeServer) PageTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tokens)
}

func (s *YouTubeServer) handle(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	q := r.URL.Query()

	s.mu.Lock()
	s.calls[resource]++
	n := s.calls[resource]
	s.mu.Unlock()

	if q.Get("key") != TestAPIKey && r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusForbidden, "The request is missing a valid API key.")
		return
	}
	if s.Fail != nil {
		if status := s.Fail(resource, n); status != 0 {
			writeError(w, status, fmt.Sprintf("forced failure on %s call %d", resource, n))
			return
		}
	}

	switch resource {
	case "playlists":
		s.servePlaylists(w, q.Get("id"))
	case "playlistItems":
		s.servePlaylistItems(w, q.Get("playlistId"), q.Get("pageToken"), q.Get("maxResults"))
	case "videos":
		s.serveVideos(w, strings.Split(strings.Join(q["id"], ","), ","))
	default:
		writeError(w, http.StatusNotFound, "unknown resource "+resource)
	}
}

func (s *YouTubeServer) servePlaylists(w http.ResponseWriter, id string) {
	items := []any{}
	if p, ok := s.playlists[id]; ok {
		items = append(items, map[string]any{
			"id":      p.ID,
			"snippet": map[string]any{"title": p.Title, "description": p.Description},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *YouTubeServer) servePlaylistItems(w http.ResponseWriter, id, token, maxResults string) {
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		writeError(w, http.StatusNotFound, "playlistNotFound")
		return
	}

	size, err := strconv.Atoi(maxResults)
	if err != nil || size <= 0 {
		size = 5
	}
	start := 0
	if token != "" {
		start, _ = strconv.Atoi(strings.TrimPrefix(token, "page-"))
	}
	end := min(start+size, len(p.Members))

	items := make([]any, 0, end-start)
	for i, videoID := range p.Members[start:end] {
		item := map[string]any{"id": fmt.Sprintf("item-%d", start+i)}
		if p.ResourceIDs {
			item["snippet"] = map[string]any{"resourceId": map[string]any{"kind": "youtube#video", "videoId": videoID}}
		} else {
			item["contentDetails"] = map[string]any{"videoId": videoID}
		}
		items = append(items, item)
	}

	resp := map[string]any{"items": items}
	switch {
	case s.StuckPageToken != "":
		resp["nextPageToken"] = s.StuckPageToken
	case end < len(p.Members):
		resp["nextPageToken"] = fmt.Sprintf("page-%d", end)
	}
	writeJSON(w, resp)
}

func (s *YouTubeServer) serveVideos(w http.ResponseWriter, ids []string) {
	s.mu.Lock()
	s.batchSizes = append(s.batchSizes, len(ids))
	s.mu.Unlock()

	items := make([]any, 0, len(ids))
	for _, id := range ids {
		if s.missing[id] {
			continue
		}
		item := map[string]any{
			"id": id,
			"snippet": map[string]any{
				"title":       "Video " + id,
				"description": "About " + id,
				"thumbnails": map[string]any{
					"default": map[string]any{"url": "https://i.ytimg.com/vi/" + id + "/default.jpg"},
					"high":    map[string]any{"url": "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"},
				},
			},
			"contentDetails": map[string]any{},
		}
		if d, ok := s.durations[id]; ok {
			item["contentDetails"] = map[string]any{"duration": d}
		}
		items = append(items, item)
	}
	if s.ReverseVideos {
		slices.Reverse(items)
	}
	writeJSON(w, map[string]any{"items": items})
}

// VideoIDs returns n distinct IDs of the form "vid-000".
func VideoIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid-%03d", i)
	}
	return ids
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": message}})
}
