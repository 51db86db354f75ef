package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

// ProgressRepository persists [models.Progress], one row per user and course item.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository with the given database connection
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `id, user_id, course_id, course_item_id, status, progress_percentage,
	time_spent_minutes, completed_at, updated_at`

// Upsert normalizes p and inserts it, or replaces the existing record for the same user and item.
//
// The stored record is read back into p, so p.ID is the surviving row's ID.
func (r *ProgressRepository) Upsert(p *models.Progress) error {
	if p.UserID == "" || p.CourseID == "" || p.CourseItemID == "" {
		return fmt.Errorf("%w: progress requires user, course and item", shared.ErrInvalidInput)
	}
	if _, err := models.ParseProgressStatus(string(p.Status)); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	p.Normalize(time.Now())
	if p.ID == "" {
		p.ID = shared.GenerateID()
	}

	query := `
		INSERT INTO user_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, course_item_id) DO UPDATE SET
			status = excluded.status,
			progress_percentage = excluded.progress_percentage,
			time_spent_minutes = excluded.time_spent_minutes,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`

	var completedAt any
	if p.CompletedAt != nil {
		completedAt = *p.CompletedAt
	}

	_, err := r.db.Exec(query,
		p.ID,
		p.UserID,
		p.CourseID,
		p.CourseItemID,
		string(p.Status),
		p.ProgressPercentage,
		p.TimeSpentMinutes,
		completedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	stored, err := r.Get(p.UserID, p.CourseItemID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// Get returns the record for userID on itemID.
func (r *ProgressRepository) Get(userID, itemID string) (*models.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND course_item_id = ?`

	p, err := scanProgress(r.db.QueryRow(query, userID, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: progress for item %s", shared.ErrNotFound, itemID)
	}
	return p, err
}

// ListByCourse returns userID's records for every item in courseID.
func (r *ProgressRepository) ListByCourse(userID, courseID string) ([]models.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND course_id = ? ORDER BY updated_at ASC`

	rows, err := r.db.Query(query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	records := []models.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func scanProgress(s scanner) (*models.Progress, error) {
	var (
		p           models.Progress
		status      string
		completedAt sql.NullTime
	)

	err := s.Scan(&p.ID, &p.UserID, &p.CourseID, &p.CourseItemID, &status, &p.ProgressPercentage,
		&p.TimeSpentMinutes, &completedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	p.Status = models.ProgressStatus(status)
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}
