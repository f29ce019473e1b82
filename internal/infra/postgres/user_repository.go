package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
)

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user profile.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, display_name, email, phone,
			avatar_override_url, social_avatar_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID().String(),
		u.DisplayName(),
		u.Email(),
		u.Phone(),
		u.AvatarOverrideURL(),
		u.SocialAvatarURL(),
		u.CreatedAt(),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.ID) (*user.User, error) {
	query := `
		SELECT id, display_name, email, phone,
			   avatar_override_url, social_avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, display_name, email, phone,
			   avatar_override_url, social_avatar_url, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`

	return scanUser(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
}

// Update updates an existing user profile.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET display_name = $2, email = $3, phone = $4,
			avatar_override_url = $5, social_avatar_url = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		u.ID().String(),
		u.DisplayName(),
		u.Email(),
		u.Phone(),
		u.AvatarOverrideURL(),
		u.SocialAvatarURL(),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ListByIDs retrieves multiple users by their IDs.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []shared.ID) ([]*user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id.String()
	}

	query := fmt.Sprintf(`
		SELECT id, display_name, email, phone,
			   avatar_override_url, social_avatar_url, created_at, updated_at
		FROM users
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by IDs: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func scanUser(row *sql.Row) (*user.User, error) {
	var (
		idStr, displayName, email, phone string
		avatarOverrideURL, socialAvatar  string
		createdAt, updatedAt             time.Time
	)

	err := row.Scan(
		&idStr, &displayName, &email, &phone,
		&avatarOverrideURL, &socialAvatar, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return user.Reconstitute(id, displayName, email, phone, avatarOverrideURL, socialAvatar, createdAt, updatedAt), nil
}

func scanUserRow(rows *sql.Rows) (*user.User, error) {
	var (
		idStr, displayName, email, phone string
		avatarOverrideURL, socialAvatar  string
		createdAt, updatedAt             time.Time
	)

	err := rows.Scan(
		&idStr, &displayName, &email, &phone,
		&avatarOverrideURL, &socialAvatar, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return user.Reconstitute(id, displayName, email, phone, avatarOverrideURL, socialAvatar, createdAt, updatedAt), nil
}
