package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/youtube"
	"golang.org/x/sync/errgroup"
)

// OutcomeKind tags the terminal state of a fetch.
type OutcomeKind int

const (
	OutcomeFailed   OutcomeKind = iota // Err is set, Playlist is nil
	OutcomeFound                       // Playlist is set, possibly with zero videos
	OutcomeNotFound                    // the platform reported no such playlist
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Outcome is the result of [PlaylistFetcher.Fetch].
type Outcome struct {
	Kind     OutcomeKind
	Playlist *models.YouTubePlaylist
	Err      error
}

func found(p *models.YouTubePlaylist) Outcome { return Outcome{Kind: OutcomeFound, Playlist: p} }
func failed(err error) Outcome                { return Outcome{Kind: OutcomeFailed, Err: err} }

// FetchPhase identifies the stage a [FetchEvent] reports on.
type FetchPhase string

const (
	PhaseMetadata FetchPhase = "metadata"
	PhaseMembers  FetchPhase = "members"
	PhaseDetails  FetchPhase = "details"
)

// FetchEvent reports progress from inside a fetch. Step and Total count pages or batches.
type FetchEvent struct {
	Phase   FetchPhase
	Step    int
	Total   int
	Message string
}

// FetcherOpts configures a [PlaylistFetcher].
type FetcherOpts struct {
	Concurrency int              // Concurrent detail batches; values below 1 mean sequential
	Logger      *log.Logger      // Defaults to a discard logger
	OnEvent     func(FetchEvent) // Optional progress hook; may be called from several goroutines
}

// PlaylistFetcher turns a playlist URL into an ordered, deduplicated list of video records.
//
// It keeps no state between calls, so one fetcher can serve concurrent fetches of different playlists.
type PlaylistFetcher struct {
	svc         Service
	concurrency int
	logger      *log.Logger
	onEvent     func(FetchEvent)
}

// NewPlaylistFetcher creates a fetcher backed by svc.
func NewPlaylistFetcher(svc Service, opts FetcherOpts) *PlaylistFetcher {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &PlaylistFetcher{
		svc:         svc,
		concurrency: max(opts.Concurrency, 1),
		logger:      opts.Logger,
		onEvent:     opts.OnEvent,
	}
}

func (f *PlaylistFetcher) emit(ev FetchEvent) {
	if f.onEvent != nil {
		f.onEvent(ev)
	}
}

// Fetch runs the metadata, membership and detail phases in order.
//
// Any transport failure fails the whole fetch and no partial playlist is returned. Videos that vanish between
// the membership and detail phases are kept as placeholders so positions stay stable.
func (f *PlaylistFetcher) Fetch(ctx context.Context, rawURL string) Outcome {
	if f.svc == nil || !f.svc.HasCredentials() {
		return failed(fmt.Errorf("%w: YouTube API key is not configured", shared.ErrMissingCredentials))
	}

	id, ok := youtube.ExtractPlaylistID(rawURL)
	if !ok {
		return failed(fmt.Errorf("%w: %q", shared.ErrInvalidURL, rawURL))
	}
	playlistID := id.String()
	logger := f.logger.With("playlist", playlistID)

	f.emit(FetchEvent{Phase: PhaseMetadata, Step: 1, Total: 1, Message: "Fetching playlist metadata"})
	resources, err := f.svc.Playlists(ctx, playlistID)
	if err != nil {
		return failed(fmt.Errorf("fetching playlist metadata: %w", err))
	}
	if len(resources) == 0 {
		logger.Warn("playlist not found or private")
		return Outcome{Kind: OutcomeNotFound}
	}

	playlist := &models.YouTubePlaylist{
		PlaylistMetadata: models.PlaylistMetadata{
			ID:          playlistID,
			Title:       resources[0].Snippet.Title,
			Description: resources[0].Snippet.Description,
			URL:         rawURL,
		},
	}

	ids, err := f.collectVideoIDs(ctx, playlistID)
	if err != nil {
		return failed(err)
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		logger.Warn("playlist has no videos")
		playlist.Videos = []models.Video{}
		return found(playlist)
	}

	videos, err := f.fetchDetails(ctx, ids)
	if err != nil {
		return failed(err)
	}
	playlist.Videos = videos

	logger.Info("fetched playlist", "videos", len(videos), "unavailable", playlist.UnavailableCount())
	return found(playlist)
}

// videoIDExtractor pulls a video ID out of a membership entry, returning "" when its field is empty.
type videoIDExtractor func(PlaylistItemResource) string

// videoIDExtractors are tried in order; the first non-empty result wins.
var videoIDExtractors = []videoIDExtractor{
	func(item PlaylistItemResource) string { return item.ContentDetails.VideoID },
	func(item PlaylistItemResource) string { return item.Snippet.ResourceID.VideoID },
}

func extractVideoID(item PlaylistItemResource) (string, bool) {
	for _, extract := range videoIDExtractors {
		if id := extract(item); id != "" {
			return id, true
		}
	}
	return "", false
}

// collectVideoIDs follows continuation tokens until the last page, keeping IDs in arrival order.
//
// A token the platform already handed out ends the walk with an error instead of looping.
func (f *PlaylistFetcher) collectVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	pageToken := ""
	seen := map[string]bool{}
	for page := 1; ; page++ {
		f.emit(FetchEvent{Phase: PhaseMembers, Step: page, Message: fmt.Sprintf("Fetching playlist page %d", page)})

		resp, err := f.svc.PlaylistItems(ctx, playlistID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("fetching playlist page %d: %w", page, err)
		}

		for _, item := range resp.Items {
			if id, ok := extractVideoID(item); ok {
				ids = append(ids, id)
			} else {
				f.logger.Debug("skipping playlist item without video id", "item", item.ID)
			}
		}

		f.logger.Debug("fetched playlist page", "playlist", playlistID, "page", page, "items", len(resp.Items))
		if resp.NextPageToken == "" {
			return ids, nil
		}
		if seen[resp.NextPageToken] {
			return nil, fmt.Errorf("%w: playlist page %d repeated page token %q", shared.ErrAPIRequest, page, resp.NextPageToken)
		}
		seen[resp.NextPageToken] = true
		pageToken = resp.NextPageToken
	}
}

// dedupe keeps the first occurrence of each ID, preserving order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// chunk splits ids into consecutive batches of at most size.
func chunk(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		batches = append(batches, ids[start:min(start+size, len(ids))])
	}
	return batches
}

// fetchDetails requests each batch and stitches the results back together by batch index,
// so the output order never depends on which batch finishes first.
func (f *PlaylistFetcher) fetchDetails(ctx context.Context, ids []string) ([]models.Video, error) {
	batches := chunk(ids, MaxResults)
	results := make([][]models.Video, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			f.emit(FetchEvent{
				Phase:   PhaseDetails,
				Step:    i + 1,
				Total:   len(batches),
				Message: fmt.Sprintf("Fetching video details (%d/%d)", i+1, len(batches)),
			})

			resources, err := f.svc.Videos(gctx, batch)
			if err != nil {
				return fmt.Errorf("fetching video details batch %d/%d: %w", i+1, len(batches), err)
			}
			results[i] = assembleBatch(batch, resources)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(ids))
	for _, r := range results {
		videos = append(videos, r...)
	}
	return videos, nil
}

// assembleBatch emits one record per requested ID in request order, using a placeholder for IDs the
// platform did not return.
func assembleBatch(requested []string, resources []VideoResource) []models.Video {
	byID := make(map[string]VideoResource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}

	videos := make([]models.Video, len(requested))
	for i, id := range requested {
		res, ok := byID[id]
		if !ok {
			videos[i] = placeholderVideo(id)
			continue
		}
		videos[i] = models.Video{
			ID:          id,
			Title:       res.Snippet.Title,
			Description: res.Snippet.Description,
			Duration:    res.ContentDetails.Duration,
			Thumbnail:   bestThumbnail(id, res.Snippet.Thumbnails),
			URL:         youtube.WatchURL(id),
		}
	}
	return videos
}

func placeholderVideo(id string) models.Video {
	return models.Video{
		ID:          id,
		Title:       models.UnavailableVideoTitle,
		Thumbnail:   youtube.ThumbnailURL(id),
		URL:         youtube.WatchURL(id),
		Unavailable: true,
	}
}

// bestThumbnail picks the highest quality rendition available, falling back to the synthesized URL.
func bestThumbnail(id string, t Thumbnails) string {
	for _, th := range []*Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return youtube.ThumbnailURL(id)
}
