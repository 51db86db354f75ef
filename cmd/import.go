package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/tasks"
	"github.com/urfave/cli/v3"
)

type importSummary struct {
	Playlist    models.PlaylistMetadata `json:"playlist"`
	CourseItems []*models.CourseItem    `json:"courseItems"`
	Unavailable int                     `json:"unavailable"`
	JobID       string                  `json:"jobId,omitempty"`
}

type importJobJSON struct {
	ID               string              `json:"id"`
	CourseID         string              `json:"course_id"`
	PlaylistID       string              `json:"playlist_id,omitempty"`
	SourceURL        string              `json:"source_url"`
	Status           models.ImportStatus `json:"status"`
	ItemsTotal       int                 `json:"items_total"`
	ItemsUnavailable int                 `json:"items_unavailable"`
	Error            string              `json:"error,omitempty"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}

func toImportJobJSON(j *models.ImportJob) importJobJSON {
	return importJobJSON{
		ID:               j.ID(),
		CourseID:         j.CourseID(),
		PlaylistID:       j.PlaylistID(),
		SourceURL:        j.SourceURL(),
		Status:           j.Status(),
		ItemsTotal:       j.ItemsTotal(),
		ItemsUnavailable: j.ItemsUnavailable(),
		Error:            j.ErrorMessage(),
		StartedAt:        j.StartedAt(),
		CompletedAt:      j.CompletedAt(),
	}
}

// ImportPlaylist fetches a playlist and appends its videos to a course.
func (r *Runner) ImportPlaylist(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	courseID := cmd.String("course")
	playlistURL := strings.TrimSpace(cmd.String("url"))

	if cmd.Bool("tui") {
		return r.runTUI(ctx, user, courseID, playlistURL)
	}

	useJSON := cmd.Bool("json")
	r.logger.Info("starting import", "course", courseID, "url", playlistURL)

	progressCh, stop := r.followProgress(func(update tasks.ProgressUpdate) {
		if useJSON {
			return
		}
		switch update.Phase {
		case tasks.FetchDetails:
			r.writePlain("   %s\n", update.Message)
		case tasks.ImportDone:
		default:
			r.writePlain("📥 %s\n", update.Message)
		}
	})
	result, err := r.engine.Import(ctx, tasks.ImportRequest{
		UserID:      user.ID(),
		CourseID:    courseID,
		PlaylistURL: playlistURL,
	}, progressCh)
	stop()
	if err != nil {
		return err
	}

	if useJSON {
		summary := importSummary{
			Playlist:    result.Playlist,
			CourseItems: result.Items,
			Unavailable: result.Unavailable,
		}
		if result.Job != nil {
			summary.JobID = result.Job.ID()
		}
		return r.writeJSON(summary, true)
	}

	total := 0
	for _, item := range result.Items {
		if d := item.DurationMinutes(); d != nil {
			total += *d
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Playlist: %s\n", result.Playlist.Title)
	r.writePlain("Course: %s\n", result.Course.Title())
	r.writePlain("Items added: %d (%s)\n", len(result.Items), formatter.FormatMinutes(&total))
	if result.Unavailable > 0 {
		r.writePlain("Unavailable videos: %d\n", result.Unavailable)
	}
	return nil
}

// ImportHistory lists recorded imports, newest first.
func (r *Runner) ImportHistory(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	status := cmd.String("status")
	switch models.ImportStatus(status) {
	case "", models.ImportPending, models.ImportRunning, models.ImportCompleted, models.ImportNotFound, models.ImportFailed:
	default:
		return fmt.Errorf("%w: unknown import status %q", shared.ErrInvalidArgument, status)
	}

	jobs, err := r.jobs.List(map[string]any{
		"user_id":   user.ID(),
		"course_id": cmd.String("course"),
		"status":    status,
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]importJobJSON, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, toImportJobJSON(j))
		}
		return r.writeJSON(out, true)
	}

	if len(jobs) == 0 {
		return r.writePlain("No imports recorded.\n")
	}

	for _, j := range jobs {
		r.writePlain("%s  %-9s  %s\n", j.CreatedAt().Format(time.DateTime), j.Status(), j.SourceURL())
		switch j.Status() {
		case models.ImportCompleted:
			r.writePlain("   %d items, %d unavailable\n", j.ItemsTotal(), j.ItemsUnavailable())
		case models.ImportFailed:
			r.writePlain("   error: %s\n", j.ErrorMessage())
		}
	}
	return nil
}
