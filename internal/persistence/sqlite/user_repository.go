package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewUserRepository creates a new SQLite user repository. The clock stamps
// created_at and updated_at on writes; nil falls back to time.Now.
func NewUserRepository(pool *ConnectionPool, now func() time.Time) *UserRepository {
	if now == nil {
		now = time.Now
	}
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

// CreateUser inserts a new user and returns the stored record with its
// assigned identity and server-set timestamps.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.helper.Exec(ctx, `
		INSERT INTO users (username, email, display_name, is_host, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(user.Username),
		normalizeEmail(user.Email),
		user.DisplayName,
		user.IsHost,
		user.PasswordHash,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to read inserted user id: %w", err)
	}

	return r.GetUser(ctx, id)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, username, email, display_name, is_host, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by its unique username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, username, email, display_name, is_host, password_hash, created_at, updated_at
		FROM users WHERE username = ?`, strings.TrimSpace(username))
	return scanUser(row)
}

// CountUsersByUsername reports how many users carry the given username.
// The signup path uses this as an optimistic pre-check before the UNIQUE
// constraint has the final say.
func (r *UserRepository) CountUsersByUsername(ctx context.Context, username string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", strings.TrimSpace(username)).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// UpdateUser updates mutable user fields and refreshes updated_at.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	user.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE users
		SET email = ?, display_name = ?, is_host = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.IsHost,
		user.PasswordHash,
		user.UpdatedAt.Format(time.RFC3339),
		user.ID,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.User{}, persistence.ErrNotFound
	}

	return r.GetUser(ctx, user.ID)
}

// DeleteUser removes a user by ID.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.IsHost,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, NewErrorMapper().MapError(err)
	}

	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
