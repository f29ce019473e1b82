// Package invitation provides the invitation lifecycle domain model.
package invitation

import (
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Status represents the lifecycle state of an invitation.
type Status string

const (
	// StatusPending awaits an accept or decline by the invited email's owner.
	StatusPending Status = "pending"
	// StatusAccepted is terminal.
	StatusAccepted Status = "accepted"
	// StatusDeclined is terminal.
	StatusDeclined Status = "declined"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Invitation represents an invitation to join a group. The only transitions
// are pending to accepted and pending to declined; terminal states absorb
// all further attempts.
type Invitation struct {
	id            shared.ID
	groupID       shared.ID
	invitedEmail  string
	invitedUserID *shared.ID
	inviterUserID *shared.ID
	status        Status
	createdAt     time.Time
	acceptedAt    *time.Time
}

// New creates a new pending Invitation. invitedUserID may be zero when the
// email does not match a known profile; inviterUserID records who sent it.
func New(groupID shared.ID, invitedEmail string, invitedUserID, inviterUserID *shared.ID) (*Invitation, error) {
	if groupID.IsZero() {
		return nil, fmt.Errorf("%w: groupID is required", shared.ErrValidation)
	}
	trimmed := strings.TrimSpace(invitedEmail)
	if trimmed == "" {
		return nil, ErrInvalidEmail
	}

	return &Invitation{
		id:            shared.NewID(),
		groupID:       groupID,
		invitedEmail:  trimmed,
		invitedUserID: invitedUserID,
		inviterUserID: inviterUserID,
		status:        StatusPending,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Reconstitute recreates an Invitation from persistence.
func Reconstitute(
	id, groupID shared.ID,
	invitedEmail string,
	invitedUserID, inviterUserID *shared.ID,
	status Status,
	createdAt time.Time,
	acceptedAt *time.Time,
) *Invitation {
	return &Invitation{
		id:            id,
		groupID:       groupID,
		invitedEmail:  invitedEmail,
		invitedUserID: invitedUserID,
		inviterUserID: inviterUserID,
		status:        status,
		createdAt:     createdAt,
		acceptedAt:    acceptedAt,
	}
}

// ID returns the invitation ID.
func (i *Invitation) ID() shared.ID {
	return i.id
}

// GroupID returns the target group's ID.
func (i *Invitation) GroupID() shared.ID {
	return i.groupID
}

// InvitedEmail returns the invited email address.
func (i *Invitation) InvitedEmail() string {
	return i.invitedEmail
}

// InvitedUserID returns the resolved invited user, if known.
func (i *Invitation) InvitedUserID() *shared.ID {
	return i.invitedUserID
}

// InviterUserID returns the sending user, if recorded.
func (i *Invitation) InviterUserID() *shared.ID {
	return i.inviterUserID
}

// Status returns the lifecycle status.
func (i *Invitation) Status() Status {
	return i.status
}

// CreatedAt returns the creation timestamp.
func (i *Invitation) CreatedAt() time.Time {
	return i.createdAt
}

// AcceptedAt returns when the invitation was answered, if it was.
func (i *Invitation) AcceptedAt() *time.Time {
	return i.acceptedAt
}

// IsPending reports whether the invitation still awaits an answer.
func (i *Invitation) IsPending() bool {
	return i.status == StatusPending
}

// IsFor reports whether the invitation is addressed to the given email.
// The match is case-insensitive: the invited address came from the sender,
// while the caller's email comes from their identity provider claims.
func (i *Invitation) IsFor(email string) bool {
	return strings.EqualFold(i.invitedEmail, strings.TrimSpace(email))
}

// Accept transitions the invitation to accepted, binding the accepting user.
func (i *Invitation) Accept(userID shared.ID) error {
	if i.status != StatusPending {
		return ErrNotPending
	}
	now := time.Now().UTC()
	i.status = StatusAccepted
	i.acceptedAt = &now
	i.invitedUserID = &userID
	return nil
}

// Decline transitions the invitation to declined, recording the acting user.
func (i *Invitation) Decline(userID shared.ID) error {
	if i.status != StatusPending {
		return ErrNotPending
	}
	now := time.Now().UTC()
	i.status = StatusDeclined
	i.acceptedAt = &now
	i.invitedUserID = &userID
	return nil
}
