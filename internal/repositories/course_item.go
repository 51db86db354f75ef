package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

var _ models.Repository[*models.CourseItem] = (*CourseItemRepository)(nil)

// CourseItemRepository implements models.Repository[*models.CourseItem].
//
// Items are always listed by order_index, with the insertion sequence breaking ties.
type CourseItemRepository struct {
	db *sql.DB
}

// NewCourseItemRepository creates a new CourseItemRepository with the given database connection
func NewCourseItemRepository(db *sql.DB) *CourseItemRepository {
	return &CourseItemRepository{db: db}
}

const courseItemColumns = `id, sequence, course_id, user_id, title, description, item_type, content_url,
	duration_minutes, order_index, metadata, created_at, updated_at, deleted_at`

// Create inserts a single item with generated ID and sequence
func (r *CourseItemRepository) Create(item *models.CourseItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertItem(tx, item); err != nil {
		return err
	}
	return commit(tx, "course item")
}

// CreateMany inserts items all-or-nothing.
func (r *CourseItemRepository) CreateMany(items []*models.CourseItem) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %w", shared.ErrInvalidInput, i, err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if err := insertItem(tx, item); err != nil {
			return err
		}
	}
	return commit(tx, "course items")
}

// Append places item after the last item of its course and inserts it.
func (r *CourseItemRepository) Append(item *models.CourseItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	next, err := nextOrderIndex(tx, item.CourseID())
	if err != nil {
		return err
	}
	item.SetOrderIndex(next)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if err := insertItem(tx, item); err != nil {
		return err
	}
	return commit(tx, "course item")
}

// nextOrderIndex returns one past the highest order index in the course, or 0 for an empty course.
func nextOrderIndex(q execQuerier, courseID string) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(order_index), -1) + 1 FROM course_items WHERE course_id = ? AND deleted_at IS NULL`
	if err := q.QueryRow(query, courseID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next order index: %w", err)
	}
	return next, nil
}

func insertItem(q execQuerier, item *models.CourseItem) error {
	sequence, err := nextSequence(q, "course_items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	metadata, err := json.Marshal(item.Metadata())
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO course_items (
			id, sequence, course_id, user_id, title, description, item_type, content_url,
			duration_minutes, order_index, metadata, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var duration any
	if d := item.DurationMinutes(); d != nil {
		duration = *d
	}

	_, err = q.Exec(query,
		id,
		sequence,
		item.CourseID(),
		item.UserID(),
		item.Title(),
		item.Description(),
		string(item.ItemType()),
		item.ContentURL(),
		duration,
		item.OrderIndex(),
		string(metadata),
		item.CreatedAt(),
		item.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert course item: %w", err)
	}

	item.SetID(id)
	item.SetSequence(sequence)
	return nil
}

func commit(tx *sql.Tx, what string) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}

// Get retrieves an item by ID, excluding soft-deleted items
func (r *CourseItemRepository) Get(id string) (*models.CourseItem, error) {
	query := `SELECT ` + courseItemColumns + ` FROM course_items WHERE id = ? AND deleted_at IS NULL`

	item, err := scanCourseItem(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	return item, err
}

// Update modifies an item's content fields and position
func (r *CourseItemRepository) Update(item *models.CourseItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	metadata, err := json.Marshal(item.Metadata())
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	now := time.Now()
	item.SetUpdatedAt(now)

	var duration any
	if d := item.DurationMinutes(); d != nil {
		duration = *d
	}

	query := `
		UPDATE course_items
		SET title = ?, description = ?, item_type = ?, content_url = ?, duration_minutes = ?,
			order_index = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		item.Title(),
		item.Description(),
		string(item.ItemType()),
		item.ContentURL(),
		duration,
		item.OrderIndex(),
		string(metadata),
		now,
		item.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update course item: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrItemNotFound, item.ID()))
}

// Delete soft-deletes an item by ID
func (r *CourseItemRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE course_items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete course item: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id))
}

// List retrieves items matching the given criteria in course order.
//
// Supported criteria: "course_id", "user_id", "item_type".
func (r *CourseItemRepository) List(criteria map[string]any) ([]*models.CourseItem, error) {
	query := `SELECT ` + courseItemColumns + ` FROM course_items WHERE deleted_at IS NULL`
	args := []any{}

	for _, col := range []string{"course_id", "user_id", "item_type"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY order_index ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query course items: %w", err)
	}
	defer rows.Close()

	var items []*models.CourseItem
	for rows.Next() {
		item, err := scanCourseItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// ListByCourse returns the course's items in order
func (r *CourseItemRepository) ListByCourse(courseID string) ([]*models.CourseItem, error) {
	return r.List(map[string]any{"course_id": courseID})
}

func scanCourseItem(s scanner) (*models.CourseItem, error) {
	var (
		id          string
		sequence    int
		courseID    string
		userID      string
		title       string
		description string
		itemType    string
		contentURL  string
		duration    sql.NullInt64
		orderIndex  int
		metadata    string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &courseID, &userID, &title, &description, &itemType, &contentURL,
		&duration, &orderIndex, &metadata, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan course item: %w", err)
	}

	draft := models.CourseItemDraft{
		Title:       title,
		Description: description,
		ItemType:    models.ParseItemType(itemType),
		ContentURL:  contentURL,
		OrderIndex:  orderIndex,
	}
	if duration.Valid {
		d := int(duration.Int64)
		draft.DurationMinutes = &d
	}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &draft.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for item %s: %w", id, err)
		}
	}

	item := models.NewCourseItem(sequence, courseID, userID, draft)
	item.SetID(id)
	item.SetCreatedAt(createdAt)
	item.SetUpdatedAt(updatedAt)
	item.SetDeletedAt(timePtr(deletedAt))
	return item, nil
}
