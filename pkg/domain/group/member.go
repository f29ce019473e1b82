package group

import (
	"fmt"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// MemberRole represents a user's role within a group.
type MemberRole string

const (
	// MemberRoleOwner is the group creator.
	MemberRoleOwner MemberRole = "owner"
	// MemberRoleMember is a standard member.
	MemberRoleMember MemberRole = "member"
)

// IsValid checks if the member role is valid.
func (r MemberRole) IsValid() bool {
	return r == MemberRoleOwner || r == MemberRoleMember
}

// String returns the string representation.
func (r MemberRole) String() string {
	return string(r)
}

// Membership represents a user's membership in a group. Memberships are
// append-only; removal is not modeled.
type Membership struct {
	id        shared.ID
	groupID   shared.ID
	userID    shared.ID
	role      MemberRole
	createdAt time.Time
}

// NewMembership creates a new Membership.
func NewMembership(groupID, userID shared.ID, role MemberRole) (*Membership, error) {
	if groupID.IsZero() {
		return nil, fmt.Errorf("%w: groupID is required", shared.ErrValidation)
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid member role", shared.ErrValidation)
	}

	return &Membership{
		id:        shared.NewID(),
		groupID:   groupID,
		userID:    userID,
		role:      role,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteMembership recreates a Membership from persistence.
func ReconstituteMembership(id, groupID, userID shared.ID, role MemberRole, createdAt time.Time) *Membership {
	return &Membership{
		id:        id,
		groupID:   groupID,
		userID:    userID,
		role:      role,
		createdAt: createdAt,
	}
}

// ID returns the membership ID.
func (m *Membership) ID() shared.ID {
	return m.id
}

// GroupID returns the group ID.
func (m *Membership) GroupID() shared.ID {
	return m.groupID
}

// UserID returns the user ID.
func (m *Membership) UserID() shared.ID {
	return m.userID
}

// Role returns the member's role in the group.
func (m *Membership) Role() MemberRole {
	return m.role
}

// CreatedAt returns when the membership was created.
func (m *Membership) CreatedAt() time.Time {
	return m.createdAt
}

// IsOwner checks if this membership carries the owner role.
func (m *Membership) IsOwner() bool {
	return m.role == MemberRoleOwner
}
