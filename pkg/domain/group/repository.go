package group

import (
	"context"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Repository defines the interface for group persistence.
type Repository interface {
	// Create persists a group together with its owner membership. The two
	// writes are atomic: the owner row exists whenever the group does.
	Create(ctx context.Context, g *Group, ownerMembership *Membership) error
	GetByID(ctx context.Context, id shared.ID) (*Group, error)
	Update(ctx context.Context, g *Group) error
	ListOwned(ctx context.Context, ownerUserID shared.ID) ([]*Group, error)
	ListMember(ctx context.Context, userID shared.ID) ([]*Group, error)
	ExistsNameForOwner(ctx context.Context, ownerUserID shared.ID, name string) (bool, error)
}

// MembershipRepository defines the interface for membership persistence.
type MembershipRepository interface {
	Add(ctx context.Context, m *Membership) error
	GetByUserAndGroup(ctx context.Context, userID, groupID shared.ID) (*Membership, error)
	ListMembers(ctx context.Context, groupID shared.ID) ([]*Membership, error)
	CountMembers(ctx context.Context, groupID shared.ID) (int64, error)
	CountByGroupIDs(ctx context.Context, groupIDs []shared.ID) (map[shared.ID]int64, error)
}
