package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

var _ models.Repository[*models.ImportJob] = (*ImportJobRepository)(nil)

// ImportJobRepository implements models.Repository[*models.ImportJob] for import history.
//
// Handles job CRUD operations with soft delete support and status-based queries.
type ImportJobRepository struct {
	db *sql.DB
}

// NewImportJobRepository creates a new ImportJobRepository with the given database connection
func NewImportJobRepository(db *sql.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

const importJobColumns = `
	id, sequence, user_id, course_id, playlist_id, source_url, status, items_total,
	items_unavailable, error_message, started_at, completed_at, created_at, updated_at, deleted_at`

// Create inserts a new import job into the database with generated ID and sequence
func (r *ImportJobRepository) Create(job *models.ImportJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "import_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)
	job.SetSequence(sequence)

	query := `
		INSERT INTO import_jobs (
			id, sequence, user_id, course_id, playlist_id, source_url, status, items_total,
			items_unavailable, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.UserID(),
		job.CourseID(),
		job.PlaylistID(),
		job.SourceURL(),
		string(job.Status()),
		job.ItemsTotal(),
		job.ItemsUnavailable(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}

	return nil
}

// Get retrieves an import job by ID, excluding soft-deleted jobs
func (r *ImportJobRepository) Get(id string) (*models.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs WHERE id = ? AND deleted_at IS NULL`

	job, err := scanImportJob(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: import job %s", shared.ErrNotFound, id)
	}
	return job, err
}

// Update writes the job's progress fields
func (r *ImportJobRepository) Update(job *models.ImportJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE import_jobs
		SET playlist_id = ?, status = ?, items_total = ?, items_unavailable = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		job.PlaylistID(),
		string(job.Status()),
		job.ItemsTotal(),
		job.ItemsUnavailable(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: import job %s", shared.ErrNotFound, job.ID()))
}

// Delete soft-deletes an import job by ID
func (r *ImportJobRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE import_jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete import job: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: import job %s", shared.ErrNotFound, id))
}

// List retrieves import jobs newest first.
//
// Supported criteria: "user_id", "course_id", "status".
func (r *ImportJobRepository) List(criteria map[string]any) ([]*models.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs WHERE deleted_at IS NULL`
	args := []any{}

	for _, col := range []string{"user_id", "course_id", "status"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := scanImportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanImportJob(s scanner) (*models.ImportJob, error) {
	var (
		id               string
		sequence         int
		userID           string
		courseID         string
		playlistID       string
		sourceURL        string
		status           string
		itemsTotal       int
		itemsUnavailable int
		errorMessage     sql.NullString
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := s.Scan(
		&id, &sequence, &userID, &courseID, &playlistID, &sourceURL, &status, &itemsTotal,
		&itemsUnavailable, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan import job: %w", err)
	}

	job := models.RestoreImportJob(
		sequence, userID, courseID, playlistID, sourceURL, models.ImportStatus(status),
		itemsTotal, itemsUnavailable, errorMessage.String, timePtr(startedAt), timePtr(completedAt),
	)
	job.SetID(id)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	job.SetDeletedAt(timePtr(deletedAt))
	return job, nil
}
