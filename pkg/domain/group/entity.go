// Package group provides the group and membership domain model.
package group

import (
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Group represents a user-owned group.
type Group struct {
	id          shared.ID
	ownerUserID shared.ID
	name        string
	createdAt   time.Time
	updatedAt   time.Time
}

// New creates a new Group.
func New(ownerUserID shared.ID, name string) (*Group, error) {
	if ownerUserID.IsZero() {
		return nil, fmt.Errorf("%w: ownerUserID is required", shared.ErrValidation)
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidName
	}

	now := time.Now().UTC()
	return &Group{
		id:          shared.NewID(),
		ownerUserID: ownerUserID,
		name:        trimmed,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstitute recreates a Group from persistence.
func Reconstitute(id, ownerUserID shared.ID, name string, createdAt, updatedAt time.Time) *Group {
	return &Group{
		id:          id,
		ownerUserID: ownerUserID,
		name:        name,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the group ID.
func (g *Group) ID() shared.ID {
	return g.id
}

// OwnerUserID returns the owning user's ID.
func (g *Group) OwnerUserID() shared.ID {
	return g.ownerUserID
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// CreatedAt returns the creation timestamp.
func (g *Group) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns the last update timestamp.
func (g *Group) UpdatedAt() time.Time {
	return g.updatedAt
}

// IsOwnedBy checks whether the given user owns the group.
func (g *Group) IsOwnedBy(userID shared.ID) bool {
	return g.ownerUserID.Equals(userID)
}

// Rename updates the group name. Renaming to the current name is a no-op and
// reports false so callers can skip the write and cache invalidation.
func (g *Group) Rename(name string) (bool, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false, ErrInvalidName
	}
	if trimmed == g.name {
		return false, nil
	}
	g.name = trimmed
	g.updatedAt = time.Now().UTC()
	return true, nil
}
