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

// MembershipRepository implements group.MembershipRepository using PostgreSQL.
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Add persists a new membership.
func (r *MembershipRepository) Add(ctx context.Context, m *group.Membership) error {
	query := `
		INSERT INTO memberships (id, group_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID().String(),
		m.GroupID().String(),
		m.UserID().String(),
		m.Role().String(),
		m.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "memberships_group_id_user_id_key") {
			return group.ErrAlreadyMember
		}
		return fmt.Errorf("failed to add membership: %w", err)
	}

	return nil
}

// GetByUserAndGroup retrieves a membership by user and group.
func (r *MembershipRepository) GetByUserAndGroup(ctx context.Context, userID, groupID shared.ID) (*group.Membership, error) {
	query := `
		SELECT id, group_id, user_id, role, created_at
		FROM memberships
		WHERE user_id = $1 AND group_id = $2
	`

	var (
		idStr, groupIDStr, userIDStr, roleStr string
		createdAt                             time.Time
	)
	err := r.db.QueryRowContext(ctx, query, userID.String(), groupID.String()).Scan(
		&idStr, &groupIDStr, &userIDStr, &roleStr, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return reconstituteMembership(idStr, groupIDStr, userIDStr, roleStr, createdAt), nil
}

// ListMembers lists all memberships of a group, oldest first.
func (r *MembershipRepository) ListMembers(ctx context.Context, groupID shared.ID) ([]*group.Membership, error) {
	query := `
		SELECT id, group_id, user_id, role, created_at
		FROM memberships
		WHERE group_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*group.Membership
	for rows.Next() {
		var (
			idStr, groupIDStr, userIDStr, roleStr string
			createdAt                             time.Time
		)
		if err := rows.Scan(&idStr, &groupIDStr, &userIDStr, &roleStr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, reconstituteMembership(idStr, groupIDStr, userIDStr, roleStr, createdAt))
	}

	return members, rows.Err()
}

// CountMembers counts members in a group.
func (r *MembershipRepository) CountMembers(ctx context.Context, groupID shared.ID) (int64, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE group_id = $1`

	var count int64
	err := r.db.QueryRowContext(ctx, query, groupID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// CountByGroupIDs counts members per group in a single query. Groups with no
// memberships are absent from the result map.
func (r *MembershipRepository) CountByGroupIDs(ctx context.Context, groupIDs []shared.ID) (map[shared.ID]int64, error) {
	counts := make(map[shared.ID]int64)
	if len(groupIDs) == 0 {
		return counts, nil
	}

	placeholders := make([]string, len(groupIDs))
	args := make([]interface{}, len(groupIDs))
	for i, id := range groupIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id.String()
	}

	query := fmt.Sprintf(`
		SELECT group_id, COUNT(*)
		FROM memberships
		WHERE group_id IN (%s)
		GROUP BY group_id
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count members by group: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			groupIDStr string
			count      int64
		)
		if err := rows.Scan(&groupIDStr, &count); err != nil {
			return nil, fmt.Errorf("failed to scan member count: %w", err)
		}
		groupID, err := shared.IDFromString(groupIDStr)
		if err != nil {
			continue
		}
		counts[groupID] = count
	}

	return counts, rows.Err()
}

func reconstituteMembership(idStr, groupIDStr, userIDStr, roleStr string, createdAt time.Time) *group.Membership {
	id, _ := shared.IDFromString(idStr)
	groupID, _ := shared.IDFromString(groupIDStr)
	userID, _ := shared.IDFromString(userIDStr)
	return group.ReconstituteMembership(id, groupID, userID, group.MemberRole(roleStr), createdAt)
}
