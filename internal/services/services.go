// package services defines interface Service for reading playlists from the video platform's HTTP API
//
// YouTube Data API v3
package services

import (
	"context"
)

// Service defines the read-only surface of the video platform that the playlist fetcher depends on.
type Service interface {
	// Authenticate stores the API key (and optionally a bearer token) used for subsequent requests.
	// Returns an error if no usable credential is supplied.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// HasCredentials reports whether a credential is configured. No request is made without one.
	HasCredentials() bool

	// Playlists returns the playlist resources matching playlistID. Private, deleted or unknown playlists yield an empty slice.
	Playlists(ctx context.Context, playlistID string) ([]PlaylistResource, error)

	// PlaylistItems returns one page of playlist membership, starting at pageToken ("" for the first page).
	PlaylistItems(ctx context.Context, playlistID, pageToken string) (*PlaylistItemsPage, error)

	// Videos returns details for up to [MaxResults] video IDs. The response order is unspecified and unavailable videos are omitted.
	Videos(ctx context.Context, videoIDs []string) ([]VideoResource, error)

	// Name returns the name of the service
	Name() string
}

// MaxResults is the platform's page size and detail batch limit.
const MaxResults = 50

// Thumbnail is a single thumbnail rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Thumbnails holds the renditions keyed by quality. Any of them may be absent.
type Thumbnails struct {
	Default  *Thumbnail `json:"default,omitempty"`
	Medium   *Thumbnail `json:"medium,omitempty"`
	High     *Thumbnail `json:"high,omitempty"`
	Standard *Thumbnail `json:"standard,omitempty"`
	Maxres   *Thumbnail `json:"maxres,omitempty"`
}

// Snippet is the shared "snippet" part of playlist, playlist item and video resources.
type Snippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnails  Thumbnails `json:"thumbnails"`
	ResourceID  struct {
		Kind    string `json:"kind,omitempty"`
		VideoID string `json:"videoId,omitempty"`
	} `json:"resourceId"`
}

// PlaylistResource is an item of the playlists list response.
type PlaylistResource struct {
	ID      string  `json:"id"`
	Snippet Snippet `json:"snippet"`
}

// PlaylistItemResource is one membership entry. The video ID appears under contentDetails or snippet.resourceId
// depending on the API variant.
type PlaylistItemResource struct {
	ID             string  `json:"id"`
	Snippet        Snippet `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId,omitempty"`
	} `json:"contentDetails"`
}

// PlaylistItemsPage is a page of playlist membership.
type PlaylistItemsPage struct {
	NextPageToken string                 `json:"nextPageToken,omitempty"`
	Items         []PlaylistItemResource `json:"items"`
}

// VideoResource is an item of the videos list response.
type VideoResource struct {
	ID             string  `json:"id"`
	Snippet        Snippet `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration,omitempty"`
	} `json:"contentDetails"`
}
