// Package youtube resolves YouTube URLs to identifiers and normalizes the platform's ISO-8601 durations.
//
// Everything here is a pure function of its input: no network access and no shared state.
package youtube

import (
	"fmt"
	"regexp"
)

const (
	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLFormat = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
)

// PlaylistID is a playlist identifier extracted from a URL.
type PlaylistID string

// VideoID is a single-video identifier extracted from a URL.
type VideoID string

func (id PlaylistID) String() string { return string(id) }
func (id VideoID) String() string    { return string(id) }

// First match wins, so order matters.
var playlistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/playlist\?list=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtu\.be/.*[?&]list=([a-zA-Z0-9_-]+)`),
}

var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]+)`),
}

// ExtractPlaylistID returns the playlist identifier carried by rawURL.
//
// The second return value is false when no known URL shape matches.
func ExtractPlaylistID(rawURL string) (PlaylistID, bool) {
	if id, ok := firstMatch(playlistPatterns, rawURL); ok {
		return PlaylistID(id), true
	}
	return "", false
}

// ExtractVideoID returns the video identifier carried by a watch, short or embed URL.
func ExtractVideoID(rawURL string) (VideoID, bool) {
	if id, ok := firstMatch(videoPatterns, rawURL); ok {
		return VideoID(id), true
	}
	return "", false
}

// WatchURL builds the canonical watch URL for a video.
func WatchURL(id string) string {
	return fmt.Sprintf(watchURLFormat, id)
}

// ThumbnailURL builds the deterministic thumbnail URL used when the API offers none.
func ThumbnailURL(id string) string {
	return fmt.Sprintf(thumbnailURLFormat, id)
}

func firstMatch(patterns []*regexp.Regexp, s string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
