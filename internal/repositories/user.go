package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

var _ models.Repository[*models.User] = (*UserRepository)(nil)

// UserRepository implements [models.Repository] for user [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, sequence, email, name, created_at, updated_at, deleted_at`

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	user.SetID(id)
	user.SetSequence(sequence)

	query := `
		INSERT INTO users (id, sequence, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, user.Email(), user.Name(), user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	return user, err
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
	}
	return user, err
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET email = ?, name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, user.Email(), user.Name(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: user %s", shared.ErrNotFound, user.ID()))
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(id string) error {
	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: user %s", shared.ErrNotFound, id))
}

// List retrieves all users matching the given criteria, excluding soft-deleted users
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// scanner is satisfied by [*sql.Row] and [*sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		id        string
		sequence  int
		email     string
		name      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &email, &name, &createdAt, &updatedAt, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user := models.NewUser(sequence, email, name)
	user.SetID(id)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	user.SetDeletedAt(timePtr(deletedAt))
	return user, nil
}
