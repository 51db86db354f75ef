package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/youtube"
	"github.com/urfave/cli/v3"
)

// YouTubeResolve prints the IDs a URL refers to.
func (r *Runner) YouTubeResolve(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("url"))
	if raw == "" {
		return fmt.Errorf("%w: url is required", shared.ErrMissingArgument)
	}

	playlistID, hasPlaylist := youtube.ExtractPlaylistID(raw)
	videoID, hasVideo := youtube.ExtractVideoID(raw)
	if !hasPlaylist && !hasVideo {
		return fmt.Errorf("%w: %q", shared.ErrInvalidURL, raw)
	}

	if hasPlaylist {
		r.writePlain("Playlist: %s\n", playlistID)
	}
	if hasVideo {
		r.writePlain("Video: %s\n", videoID)
		r.writePlain("Watch: %s\n", youtube.WatchURL(videoID.String()))
	}
	return nil
}

// YouTubeDuration converts an ISO-8601 duration such as PT1H2M30S to whole minutes.
func (r *Runner) YouTubeDuration(ctx context.Context, cmd *cli.Command) error {
	iso := strings.TrimSpace(cmd.StringArg("duration"))
	if iso == "" {
		return fmt.Errorf("%w: duration is required", shared.ErrMissingArgument)
	}
	return r.writePlain("%d\n", youtube.DurationMinutes(iso))
}

// YouTubeFetch runs the playlist fetcher without storing anything.
func (r *Runner) YouTubeFetch(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("url"))
	if raw == "" {
		return fmt.Errorf("%w: url is required", shared.ErrMissingArgument)
	}

	concurrency := int(cmd.Int("concurrency"))
	if concurrency <= 0 {
		concurrency = r.config.Import.Concurrency
	}
	useJSON := cmd.Bool("json")

	fetcher := services.NewPlaylistFetcher(r.youtube, services.FetcherOpts{
		Concurrency: concurrency,
		Logger:      r.logger,
		OnEvent: func(ev services.FetchEvent) {
			r.logger.Debug(ev.Message, "phase", ev.Phase, "step", ev.Step, "total", ev.Total)
		},
	})

	outcome := fetcher.Fetch(ctx, raw)
	switch outcome.Kind {
	case services.OutcomeNotFound:
		return fmt.Errorf("%w: playlist not found or private", shared.ErrPlaylistNotFound)
	case services.OutcomeFailed:
		return outcome.Err
	}
	playlist := outcome.Playlist

	if useJSON {
		return r.writeJSON(playlist, true)
	}

	r.writePlainHeader(playlist.Title)
	if playlist.Description != "" {
		r.writePlain("%s\n\n", playlist.Description)
	}
	total := 0
	for i, v := range playlist.Videos {
		minutes := youtube.DurationMinutes(v.Duration)
		total += minutes
		if v.Unavailable {
			r.writePlain("%3d. %s (%s)\n", i+1, models.UnavailableVideoTitle, v.ID)
			continue
		}
		r.writePlain("%3d. %s [%dm]\n", i+1, v.Title, minutes)
	}
	r.writePlain("\n%d videos, %d unavailable, %d minutes total\n", len(playlist.Videos), playlist.UnavailableCount(), total)
	return nil
}
