// Package services defines the [Service] interface for the video platform and implements it for the YouTube Data API v3.
//
// # Service Interface
//
// The playlist fetcher only needs three read calls: playlist metadata, one page of playlist membership, and details for
// a batch of videos. [Service] captures exactly that so tests can swap in an in-process fake.
//
// # YouTube Implementation
//
// [YouTubeService] calls the Data API REST endpoints directly with an API key appended as the key query parameter.
// When an access token is configured the requests go through an [oauth2] client with a static token source, which lets
// private playlists resolve. Requests are paced with a [rate.Limiter] when requests_per_second is set.
//
// # Playlist Fetcher
//
// [PlaylistFetcher] runs three ordered phases:
//  1. Metadata: a single playlists call; zero items is a [OutcomeNotFound] result and nothing else runs
//  2. Membership: playlistItems pages of 50 followed by continuation token until the last page
//  3. Details: deduplicated IDs in batches of 50, optionally fanned out with [errgroup]
//
// Detail records are emitted in the order the IDs were requested, never in response order. IDs the platform no longer
// returns become placeholder videos so every playlist slot keeps its position.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : No API key or token configured; no request is made
//   - [shared.ErrInvalidURL] : No playlist ID in the URL; no request is made
//   - [shared.ErrAPIRequest] : HTTP request failed; non-2xx responses are an [*APIError] carrying the status
//
// Any failure in any phase aborts the fetch. Nothing is retried here.
package services
