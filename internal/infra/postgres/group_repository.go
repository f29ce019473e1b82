package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/shared"
)

// GroupRepository implements group.Repository using PostgreSQL.
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create persists a group together with its owner membership in one
// transaction. The unique constraint on (owner, name) backs the duplicate
// check done by the service.
func (r *GroupRepository) Create(ctx context.Context, g *group.Group, ownerMembership *group.Membership) error {
	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO groups (id, owner_user_id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			g.ID().String(),
			g.OwnerUserID().String(),
			g.Name(),
			g.CreatedAt(),
			g.UpdatedAt(),
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO memberships (id, group_id, user_id, role, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			ownerMembership.ID().String(),
			ownerMembership.GroupID().String(),
			ownerMembership.UserID().String(),
			ownerMembership.Role().String(),
			ownerMembership.CreatedAt(),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, "groups_owner_user_id_name_key") {
			return group.ErrDuplicateName
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by ID.
func (r *GroupRepository) GetByID(ctx context.Context, id shared.ID) (*group.Group, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	return scanGroup(r.db.QueryRowContext(ctx, query, id.String()))
}

// Update updates an existing group.
func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	query := `
		UPDATE groups
		SET name = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		g.ID().String(),
		g.Name(),
		g.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "groups_owner_user_id_name_key") {
			return group.ErrDuplicateName
		}
		return fmt.Errorf("failed to update group: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return group.ErrGroupNotFound
	}

	return nil
}

// ListOwned lists groups owned by a user, newest first.
func (r *GroupRepository) ListOwned(ctx context.Context, ownerUserID shared.ID) ([]*group.Group, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM groups
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerUserID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list owned groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// ListMember lists groups where the user holds a non-owner membership,
// newest membership first.
func (r *GroupRepository) ListMember(ctx context.Context, userID shared.ID) ([]*group.Group, error) {
	query := `
		SELECT g.id, g.owner_user_id, g.name, g.created_at, g.updated_at
		FROM groups g
		INNER JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = $1 AND m.role <> 'owner'
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list member groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// ExistsNameForOwner checks whether the owner already has a group with the
// given name. The match is case-sensitive, like the unique constraint
// backing it.
func (r *GroupRepository) ExistsNameForOwner(ctx context.Context, ownerUserID shared.ID, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM groups WHERE owner_user_id = $1 AND name = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, ownerUserID.String(), strings.TrimSpace(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group name existence: %w", err)
	}

	return exists, nil
}

func collectGroups(rows *sql.Rows) ([]*group.Group, error) {
	var groups []*group.Group
	for rows.Next() {
		g, err := scanGroupRow(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanGroup(row *sql.Row) (*group.Group, error) {
	var (
		idStr, ownerStr, name string
		createdAt, updatedAt  time.Time
	)

	err := row.Scan(&idStr, &ownerStr, &name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	owner, _ := shared.IDFromString(ownerStr)
	return group.Reconstitute(id, owner, name, createdAt, updatedAt), nil
}

func scanGroupRow(rows *sql.Rows) (*group.Group, error) {
	var (
		idStr, ownerStr, name string
		createdAt, updatedAt  time.Time
	)

	if err := rows.Scan(&idStr, &ownerStr, &name, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	owner, _ := shared.IDFromString(ownerStr)
	return group.Reconstitute(id, owner, name, createdAt, updatedAt), nil
}
