package app

import (
	"context"
	"fmt"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/logger"
)

// GroupService handles group write operations.
type GroupService struct {
	groups      group.Repository
	memberships group.MembershipRepository
	groupsCache GroupsCache
	detailCache GroupDetailCache
	logger      *logger.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	groups group.Repository,
	memberships group.MembershipRepository,
	groupsCache GroupsCache,
	detailCache GroupDetailCache,
	log *logger.Logger,
) *GroupService {
	return &GroupService{
		groups:      groups,
		memberships: memberships,
		groupsCache: groupsCache,
		detailCache: detailCache,
		logger:      log.With("service", "group"),
	}
}

// Create creates a group owned by ownerID, together with the owner's
// membership. The name must be unique among the owner's groups.
func (s *GroupService) Create(ctx context.Context, ownerID shared.ID, name string) (*GroupSummary, error) {
	g, err := group.New(ownerID, name)
	if err != nil {
		return nil, err
	}

	exists, err := s.groups.ExistsNameForOwner(ctx, ownerID, g.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}
	if exists {
		return nil, group.ErrDuplicateName
	}

	ownerMembership, err := group.NewMembership(g.ID(), ownerID, group.MemberRoleOwner)
	if err != nil {
		return nil, err
	}

	// The unique constraint backs the pre-check; a racing create surfaces
	// as the same ErrDuplicateName.
	if err := s.groups.Create(ctx, g, ownerMembership); err != nil {
		return nil, err
	}

	s.logger.Info("group created", "group_id", g.ID().String(), "owner_id", ownerID.String())

	s.invalidateGroups(ctx, ownerID)

	return &GroupSummary{
		ID:          g.ID().String(),
		Name:        g.Name(),
		OwnerUserID: g.OwnerUserID().String(),
		MemberCount: 1,
		CreatedAt:   g.CreatedAt(),
	}, nil
}

// Rename renames a group. Only the owner may rename; renaming to the current
// name succeeds without a write or cache invalidation.
func (s *GroupService) Rename(ctx context.Context, groupID, ownerID shared.ID, name string) (*GroupSummary, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwnedBy(ownerID) {
		return nil, group.ErrNotOwner
	}

	changed, err := g.Rename(name)
	if err != nil {
		return nil, err
	}

	if changed {
		exists, err := s.groups.ExistsNameForOwner(ctx, ownerID, g.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to check group name: %w", err)
		}
		if exists {
			return nil, group.ErrDuplicateName
		}

		if err := s.groups.Update(ctx, g); err != nil {
			return nil, err
		}

		s.logger.Info("group renamed", "group_id", groupID.String())

		s.invalidateGroups(ctx, ownerID)
		s.invalidateDetail(ctx, groupID)
	}

	count, err := s.memberships.CountMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	return &GroupSummary{
		ID:          g.ID().String(),
		Name:        g.Name(),
		OwnerUserID: g.OwnerUserID().String(),
		MemberCount: count,
		CreatedAt:   g.CreatedAt(),
	}, nil
}

// invalidateGroups drops a user's cached group overview. The write already
// committed, so failures are logged rather than returned.
func (s *GroupService) invalidateGroups(ctx context.Context, userID shared.ID) {
	if err := s.groupsCache.Delete(ctx, groupsCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate groups cache", "user_id", userID.String(), "error", err)
	}
}

func (s *GroupService) invalidateDetail(ctx context.Context, groupID shared.ID) {
	if err := s.detailCache.Delete(ctx, groupDetailCacheKey(groupID)); err != nil {
		s.logger.Warn("failed to invalidate group detail cache", "group_id", groupID.String(), "error", err)
	}
}
