package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/invitation"
	"github.com/loopmeet/api/pkg/domain/shared"
)

// InvitationRepository implements invitation.Repository using PostgreSQL.
type InvitationRepository struct {
	db *DB
}

// NewInvitationRepository creates a new InvitationRepository.
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create persists a new invitation. The partial unique index on pending
// invitations backs the duplicate check done by the service.
func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	query := `
		INSERT INTO invitations (
			id, group_id, invited_email, invited_user_id, inviter_user_id,
			status, created_at, accepted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID().String(),
		inv.GroupID().String(),
		inv.InvitedEmail(),
		nullID(inv.InvitedUserID()),
		nullID(inv.InviterUserID()),
		inv.Status().String(),
		inv.CreatedAt(),
		nullTime(inv.AcceptedAt()),
	)
	if err != nil {
		if isUniqueViolation(err, "invitations_group_pending_email_key") {
			return invitation.ErrDuplicate
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetByID retrieves an invitation by ID.
func (r *InvitationRepository) GetByID(ctx context.Context, id shared.ID) (*invitation.Invitation, error) {
	query := `
		SELECT id, group_id, invited_email, invited_user_id, inviter_user_id,
			   status, created_at, accepted_at
		FROM invitations
		WHERE id = $1
	`

	var (
		idStr, groupIDStr, email, statusStr string
		invitedUserID, inviterUserID        sql.NullString
		createdAt                           time.Time
		acceptedAt                          sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &groupIDStr, &email, &invitedUserID, &inviterUserID,
		&statusStr, &createdAt, &acceptedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invitation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return reconstituteInvitation(idStr, groupIDStr, email, invitedUserID, inviterUserID, statusStr, createdAt, acceptedAt), nil
}

// Update persists invitation state transitions.
func (r *InvitationRepository) Update(ctx context.Context, inv *invitation.Invitation) error {
	query := `
		UPDATE invitations
		SET invited_user_id = $2, status = $3, accepted_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		inv.ID().String(),
		nullID(inv.InvitedUserID()),
		inv.Status().String(),
		nullTime(inv.AcceptedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return invitation.ErrNotFound
	}

	return nil
}

// ExistsPendingForEmail checks whether a pending invitation already exists
// for the email in the group, case-insensitively.
func (r *InvitationRepository) ExistsPendingForEmail(ctx context.Context, groupID shared.ID, email string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE group_id = $1 AND lower(invited_email) = lower($2) AND status = 'pending'
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, groupID.String(), strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}

	return exists, nil
}

// ListPendingByEmail returns pending invitations for the email, oldest first.
func (r *InvitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]*invitation.Invitation, error) {
	query := `
		SELECT id, group_id, invited_email, invited_user_id, inviter_user_id,
			   status, created_at, accepted_at
		FROM invitations
		WHERE lower(invited_email) = lower($1) AND status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*invitation.Invitation
	for rows.Next() {
		var (
			idStr, groupIDStr, invEmail, statusStr string
			invitedUserID, inviterUserID           sql.NullString
			createdAt                              time.Time
			acceptedAt                             sql.NullTime
		)
		if err := rows.Scan(
			&idStr, &groupIDStr, &invEmail, &invitedUserID, &inviterUserID,
			&statusStr, &createdAt, &acceptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, reconstituteInvitation(
			idStr, groupIDStr, invEmail, invitedUserID, inviterUserID, statusStr, createdAt, acceptedAt,
		))
	}

	return invitations, rows.Err()
}

func reconstituteInvitation(
	idStr, groupIDStr, email string,
	invitedUserID, inviterUserID sql.NullString,
	statusStr string,
	createdAt time.Time,
	acceptedAt sql.NullTime,
) *invitation.Invitation {
	id, _ := shared.IDFromString(idStr)
	groupID, _ := shared.IDFromString(groupIDStr)
	return invitation.Reconstitute(
		id, groupID, email,
		parseNullID(invitedUserID),
		parseNullID(inviterUserID),
		invitation.Status(statusStr),
		createdAt,
		nullTimeValue(acceptedAt),
	)
}
