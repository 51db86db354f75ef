package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
)

// ImportRequest names the playlist to import and the course that receives it.
type ImportRequest struct {
	UserID      string
	CourseID    string
	PlaylistURL string
}

// ImportResult contains everything produced by a successful import.
type ImportResult struct {
	Job         *models.ImportJob       // Recorded history entry; nil when no job store is configured
	Course      *models.Course          // Course after source URL and description were updated
	Playlist    models.PlaylistMetadata // Playlist the items came from
	Items       []*models.CourseItem    // Persisted items in playlist order
	Unavailable int                     // Items created from placeholder videos
}

// CourseStore is the subset of the course repository the engine needs.
type CourseStore interface {
	GetOwned(id, userID string) (*models.Course, error)
	Update(course *models.Course) error
	List(criteria map[string]any) ([]*models.Course, error)
}

// ItemStore is the subset of the course item repository the engine needs.
type ItemStore interface {
	CreateMany(items []*models.CourseItem) error
	ListByCourse(courseID string) ([]*models.CourseItem, error)
}

// JobStore records import history.
type JobStore interface {
	Create(job *models.ImportJob) error
	Update(job *models.ImportJob) error
}

// Engine defines the long-running course operations exposed to the CLI, server and TUI.
type Engine interface {
	// Import fetches a playlist and appends its videos to an owned course as items.
	Import(ctx context.Context, req ImportRequest, progress chan<- ProgressUpdate) (*ImportResult, error)

	// Export snapshots one owned course with its items.
	Export(ctx context.Context, userID, courseID string) (*models.CourseExport, error)

	// BulkExport writes every course of a user to disk.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, userID string, opts BulkExportOpts) (*BulkExportResult, error)
}

// EngineOpts configures a [CourseEngine].
type EngineOpts struct {
	Service     services.Service // Video platform client
	Courses     CourseStore
	Items       ItemStore
	Jobs        JobStore    // Optional
	Concurrency int         // Concurrent video detail batches
	Logger      *log.Logger // Defaults to a discard logger
}

// CourseEngine implements [Engine] on top of the playlist fetcher and the repositories.
type CourseEngine struct {
	svc         services.Service
	courses     CourseStore
	items       ItemStore
	jobs        JobStore
	concurrency int
	logger      *log.Logger
}

// NewCourseEngine creates a new CourseEngine with the provided dependencies.
func NewCourseEngine(opts EngineOpts) *CourseEngine {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &CourseEngine{
		svc:         opts.Service,
		courses:     opts.Courses,
		items:       opts.Items,
		jobs:        opts.Jobs,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CourseEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import fetches the playlist at req.PlaylistURL and stores its videos as items of req.CourseID.
//
// Items take their playlist position as order index. On success the course's source URL becomes the
// playlist URL and its description is replaced only when the playlist has one. A playlist that the
// platform reports as missing fails with [shared.ErrPlaylistNotFound]; an empty playlist succeeds
// with zero items.
func (e *CourseEngine) Import(ctx context.Context, req ImportRequest, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.courses == nil || e.items == nil {
		return nil, fmt.Errorf("%w: course storage not initialized", shared.ErrServiceUnavailable)
	}
	if req.UserID == "" || req.CourseID == "" {
		return nil, fmt.Errorf("%w: user and course are required", shared.ErrMissingArgument)
	}
	if req.PlaylistURL == "" {
		return nil, fmt.Errorf("%w: playlist URL is required", shared.ErrMissingArgument)
	}

	logger := e.logger.With("course", req.CourseID, "user", req.UserID)

	e.sendProgress(progress, verifyCourseUpdate(req.CourseID))
	course, err := e.courses.GetOwned(req.CourseID, req.UserID)
	if err != nil {
		return nil, err
	}

	job, err := e.startJob(req)
	if err != nil {
		return nil, err
	}

	fetcher := services.NewPlaylistFetcher(e.svc, services.FetcherOpts{
		Concurrency: e.concurrency,
		Logger:      logger,
		OnEvent: func(ev services.FetchEvent) {
			e.sendProgress(progress, fetchUpdate(ev))
		},
	})

	outcome := fetcher.Fetch(ctx, req.PlaylistURL)
	switch outcome.Kind {
	case services.OutcomeNotFound:
		e.finishJob(job, func(j *models.ImportJob) { j.NotFound(time.Now()) })
		return nil, fmt.Errorf("%w: playlist not found or private", shared.ErrPlaylistNotFound)
	case services.OutcomeFailed:
		e.failJob(job, outcome.Err)
		return nil, outcome.Err
	}

	playlist := outcome.Playlist
	if job != nil {
		job.SetPlaylistID(playlist.ID)
	}

	drafts := ProjectItems(playlist)
	if len(drafts) == 0 {
		logger.Warn("playlist has no videos; nothing to import", "playlist", playlist.ID)
	}

	items := make([]*models.CourseItem, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, models.NewCourseItem(0, course.ID(), req.UserID, d))
	}

	e.sendProgress(progress, saveItemsUpdate(len(items)))
	if err := e.items.CreateMany(items); err != nil {
		e.failJob(job, err)
		return nil, fmt.Errorf("failed to save course items: %w", err)
	}

	course.SetSourceURL(req.PlaylistURL)
	if playlist.Description != "" {
		course.SetDescription(playlist.Description)
	}
	e.sendProgress(progress, updateCourseUpdate(course))
	if err := e.courses.Update(course); err != nil {
		e.failJob(job, err)
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	result := &ImportResult{
		Job:         job,
		Course:      course,
		Playlist:    playlist.PlaylistMetadata,
		Items:       items,
		Unavailable: playlist.UnavailableCount(),
	}
	e.finishJob(job, func(j *models.ImportJob) { j.Complete(time.Now(), len(items), result.Unavailable) })

	logger.Info("imported playlist", "playlist", playlist.ID, "items", len(items), "unavailable", result.Unavailable)
	e.sendProgress(progress, importDoneUpdate(result))
	return result, nil
}

func (e *CourseEngine) startJob(req ImportRequest) (*models.ImportJob, error) {
	if e.jobs == nil {
		return nil, nil
	}

	job := models.NewImportJob(0, req.UserID, req.CourseID, req.PlaylistURL)
	job.Start(time.Now())
	if err := e.jobs.Create(job); err != nil {
		return nil, fmt.Errorf("failed to record import job: %w", err)
	}
	return job, nil
}

// finishJob applies a terminal transition and persists it. Failing to record history never fails the import.
func (e *CourseEngine) finishJob(job *models.ImportJob, transition func(*models.ImportJob)) {
	if job == nil {
		return
	}
	transition(job)
	if err := e.jobs.Update(job); err != nil {
		e.logger.Error("failed to update import job", "job", job.ID(), "error", err)
	}
}

func (e *CourseEngine) failJob(job *models.ImportJob, cause error) {
	e.finishJob(job, func(j *models.ImportJob) { j.Fail(time.Now(), cause) })
}

// Export returns the course with its items in order, after checking that userID owns it.
func (e *CourseEngine) Export(ctx context.Context, userID, courseID string) (*models.CourseExport, error) {
	if e.courses == nil || e.items == nil {
		return nil, fmt.Errorf("%w: course storage not initialized", shared.ErrServiceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	course, err := e.courses.GetOwned(courseID, userID)
	if err != nil {
		return nil, err
	}
	return e.export(course)
}

func (e *CourseEngine) export(course *models.Course) (*models.CourseExport, error) {
	items, err := e.items.ListByCourse(course.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list items for course %s: %w", course.ID(), err)
	}
	return models.NewCourseExport(course, items), nil
}
