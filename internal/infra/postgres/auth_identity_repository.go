package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
)

// AuthIdentityRepository implements user.IdentityRepository using PostgreSQL.
type AuthIdentityRepository struct {
	db *DB
}

// NewAuthIdentityRepository creates a new AuthIdentityRepository.
func NewAuthIdentityRepository(db *DB) *AuthIdentityRepository {
	return &AuthIdentityRepository{db: db}
}

// Add persists a new auth identity. Adding the same provider and subject
// twice is a no-op.
func (r *AuthIdentityRepository) Add(ctx context.Context, identity *user.AuthIdentity) error {
	query := `
		INSERT INTO auth_identities (id, user_id, provider, provider_subject, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT auth_identities_provider_subject_key DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		identity.ID().String(),
		identity.UserID().String(),
		identity.Provider(),
		identity.ProviderSubject(),
		identity.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to add auth identity: %w", err)
	}

	return nil
}

// ListByUser lists all auth identities of a user.
func (r *AuthIdentityRepository) ListByUser(ctx context.Context, userID shared.ID) ([]*user.AuthIdentity, error) {
	query := `
		SELECT id, user_id, provider, provider_subject, created_at
		FROM auth_identities
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list auth identities: %w", err)
	}
	defer rows.Close()

	var identities []*user.AuthIdentity
	for rows.Next() {
		identity, err := scanAuthIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}

	return identities, rows.Err()
}

// GetByProviderSubject retrieves an identity by provider and subject.
func (r *AuthIdentityRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*user.AuthIdentity, error) {
	query := `
		SELECT id, user_id, provider, provider_subject, created_at
		FROM auth_identities
		WHERE provider = $1 AND provider_subject = $2
	`

	var (
		idStr, userIDStr, prov, sub string
		createdAt                   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, provider, subject).Scan(
		&idStr, &userIDStr, &prov, &sub, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get auth identity: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	userID, _ := shared.IDFromString(userIDStr)
	return user.ReconstituteAuthIdentity(id, userID, prov, sub, createdAt), nil
}

func scanAuthIdentity(rows *sql.Rows) (*user.AuthIdentity, error) {
	var (
		idStr, userIDStr, provider, subject string
		createdAt                           time.Time
	)

	if err := rows.Scan(&idStr, &userIDStr, &provider, &subject, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan auth identity: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	userID, _ := shared.IDFromString(userIDStr)
	return user.ReconstituteAuthIdentity(id, userID, provider, subject, createdAt), nil
}
