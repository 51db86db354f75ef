package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

var _ models.Repository[*models.Course] = (*CourseRepository)(nil)

// CourseRepository implements models.Repository[*models.Course].
//
// Deleting a course soft-deletes its items in the same transaction.
type CourseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new CourseRepository with the given database connection
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, sequence, user_id, title, description, source_url, created_at, updated_at, deleted_at`

// Create inserts a new course with generated ID and sequence
func (r *CourseRepository) Create(course *models.Course) error {
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "courses")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	course.SetID(id)
	course.SetSequence(sequence)

	query := `
		INSERT INTO courses (id, sequence, user_id, title, description, source_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		course.UserID(),
		course.Title(),
		course.Description(),
		course.SourceURL(),
		course.CreatedAt(),
		course.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	return nil
}

// Get retrieves a course by ID, excluding soft-deleted courses
func (r *CourseRepository) Get(id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? AND deleted_at IS NULL`

	course, err := scanCourse(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, id)
	}
	return course, err
}

// GetOwned retrieves a course only if userID owns it.
//
// A course owned by someone else reports [shared.ErrCourseNotFound] so its existence is not leaked.
func (r *CourseRepository) GetOwned(id, userID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	course, err := scanCourse(r.db.QueryRow(query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, id)
	}
	return course, err
}

// Update modifies the title, description and source URL of a course
func (r *CourseRepository) Update(course *models.Course) error {
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	course.SetUpdatedAt(now)

	query := `
		UPDATE courses
		SET title = ?, description = ?, source_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, course.Title(), course.Description(), course.SourceURL(), now, course.ID())
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, course.ID()))
}

// Delete soft-deletes a course and its items
func (r *CourseRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.Exec(`UPDATE courses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if err := affectedOne(result, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, id)); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE course_items SET deleted_at = ? WHERE course_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return fmt.Errorf("failed to delete course items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit course deletion: %w", err)
	}
	return nil
}

// List retrieves all courses matching the given criteria, excluding soft-deleted courses
//
// Supported criteria: "user_id".
func (r *CourseRepository) List(criteria map[string]any) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return courses, nil
}

func scanCourse(s scanner) (*models.Course, error) {
	var (
		id          string
		sequence    int
		userID      string
		title       string
		description string
		sourceURL   string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &userID, &title, &description, &sourceURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	course := models.NewCourse(sequence, userID, title, description)
	course.SetID(id)
	course.SetSourceURL(sourceURL)
	course.SetCreatedAt(createdAt)
	course.SetUpdatedAt(updatedAt)
	course.SetDeletedAt(timePtr(deletedAt))
	return course, nil
}
