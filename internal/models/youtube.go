package models

// UnavailableVideoTitle is the title given to placeholder videos.
const UnavailableVideoTitle = "Unavailable video"

// PlaylistMetadata holds the playlist-level fields returned by the metadata call.
type PlaylistMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Video is one slot of an imported playlist.
//
// Duration is the raw ISO-8601 string from the platform and is empty when unknown.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// YouTubePlaylist is the fetcher's output: metadata plus videos in playlist order.
type YouTubePlaylist struct {
	PlaylistMetadata
	Videos []Video `json:"videos"`
}

// UnavailableCount returns how many slots are placeholders.
func (p *YouTubePlaylist) UnavailableCount() int {
	n := 0
	for _, v := range p.Videos {
		if v.Unavailable {
			n++
		}
	}
	return n
}
