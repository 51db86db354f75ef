package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

var _ models.Repository[*models.Note] = (*NoteRepository)(nil)

// NoteRepository implements models.Repository[*models.Note].
//
// Reads and writes other than Create, Get and Delete are scoped to the note's owner.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository with the given database connection
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, sequence, user_id, course_id, course_item_id, title, content, timestamp_seconds,
	created_at, updated_at, deleted_at`

// Create inserts a new note with generated ID and sequence
func (r *NoteRepository) Create(note *models.Note) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "course_notes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO course_notes (
			id, sequence, user_id, course_id, course_item_id, title, content, timestamp_seconds,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		note.UserID(),
		note.CourseID(),
		note.CourseItemID(),
		nullString(note.Title()),
		note.Content(),
		nullInt(note.TimestampSeconds()),
		note.CreatedAt(),
		note.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	note.SetID(id)
	note.SetSequence(sequence)
	return nil
}

// Get retrieves a note by ID, excluding soft-deleted notes
func (r *NoteRepository) Get(id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM course_notes WHERE id = ? AND deleted_at IS NULL`
	return r.getOne(id, query, id)
}

// GetOwned retrieves a note only if userID wrote it.
func (r *NoteRepository) GetOwned(id, userID string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM course_notes WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	return r.getOne(id, query, id, userID)
}

func (r *NoteRepository) getOne(id, query string, args ...any) (*models.Note, error) {
	note, err := scanNote(r.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoteNotFound, id)
	}
	return note, err
}

// Update writes the note's title, content and timestamp. Only the note's owner can match.
func (r *NoteRepository) Update(note *models.Note) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	query := `
		UPDATE course_notes
		SET title = ?, content = ?, timestamp_seconds = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullString(note.Title()),
		note.Content(),
		nullInt(note.TimestampSeconds()),
		now,
		note.ID(),
		note.UserID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	if err := affectedOne(result, fmt.Errorf("%w: %s", shared.ErrNoteNotFound, note.ID())); err != nil {
		return err
	}
	note.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a note by ID
func (r *NoteRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE course_notes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrNoteNotFound, id))
}

// DeleteOwned soft-deletes a note only if userID wrote it.
func (r *NoteRepository) DeleteOwned(id, userID string) error {
	query := `UPDATE course_notes SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	result, err := r.db.Exec(query, time.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrNoteNotFound, id))
}

// List retrieves notes newest first.
//
// Supported criteria: "user_id", "course_id", "course_item_id".
func (r *NoteRepository) List(criteria map[string]any) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM course_notes WHERE deleted_at IS NULL`
	args := []any{}

	for _, col := range []string{"user_id", "course_id", "course_item_id"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return notes, nil
}

// ListByItem returns userID's notes on one course item, newest first.
func (r *NoteRepository) ListByItem(userID, itemID string) ([]*models.Note, error) {
	return r.List(map[string]any{"user_id": userID, "course_item_id": itemID})
}

// ListByCourse returns userID's notes across a course, newest first.
func (r *NoteRepository) ListByCourse(userID, courseID string) ([]*models.Note, error) {
	return r.List(map[string]any{"user_id": userID, "course_id": courseID})
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		id           string
		sequence     int
		userID       string
		courseID     string
		courseItemID string
		title        sql.NullString
		content      string
		timestamp    sql.NullInt64
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := s.Scan(&id, &sequence, &userID, &courseID, &courseItemID, &title, &content, &timestamp,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	draft := models.NoteDraft{Title: title.String, Content: content}
	if timestamp.Valid {
		ts := int(timestamp.Int64)
		draft.TimestampSeconds = &ts
	}

	note := models.NewNote(sequence, userID, courseID, courseItemID, draft)
	note.SetID(id)
	note.SetCreatedAt(createdAt)
	note.SetUpdatedAt(updatedAt)
	note.SetDeletedAt(timePtr(deletedAt))
	return note, nil
}
