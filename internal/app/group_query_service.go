package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
)

// GroupQueryService serves the cached group read side.
type GroupQueryService struct {
	groups      group.Repository
	memberships group.MembershipRepository
	users       user.Repository
	groupsCache GroupsCache
	detailCache GroupDetailCache
	logger      *logger.Logger
}

// NewGroupQueryService creates a new GroupQueryService.
func NewGroupQueryService(
	groups group.Repository,
	memberships group.MembershipRepository,
	users user.Repository,
	groupsCache GroupsCache,
	detailCache GroupDetailCache,
	log *logger.Logger,
) *GroupQueryService {
	return &GroupQueryService{
		groups:      groups,
		memberships: memberships,
		users:       users,
		groupsCache: groupsCache,
		detailCache: detailCache,
		logger:      log.With("service", "group_query"),
	}
}

// GetGroups returns the user's owned and joined groups, each with its member
// count, both lists sorted by name. Results are cached with a short TTL;
// writes invalidate the key.
func (s *GroupQueryService) GetGroups(ctx context.Context, userID shared.ID) (*GroupsView, error) {
	key := groupsCacheKey(userID)

	if cached, err := s.groupsCache.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	owned, err := s.groups.ListOwned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned groups: %w", err)
	}
	member, err := s.groups.ListMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member groups: %w", err)
	}

	ids := make([]shared.ID, 0, len(owned)+len(member))
	for _, g := range owned {
		ids = append(ids, g.ID())
	}
	for _, g := range member {
		ids = append(ids, g.ID())
	}

	counts, err := s.memberships.CountByGroupIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	view := &GroupsView{
		Owned:  summarize(owned, counts),
		Member: summarize(member, counts),
	}

	if err := s.groupsCache.Set(ctx, key, *view); err != nil {
		s.logger.Warn("failed to cache groups", "user_id", userID.String(), "error", err)
	}

	return view, nil
}

// GetGroupDetail returns a group with its member list sorted by display
// name. Cached with a short TTL.
func (s *GroupQueryService) GetGroupDetail(ctx context.Context, groupID shared.ID) (*GroupDetailView, error) {
	key := groupDetailCacheKey(groupID)

	if cached, err := s.detailCache.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	userIDs := make([]shared.ID, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID())
	}

	names, err := s.displayNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	members := make([]GroupMemberView, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, GroupMemberView{
			UserID:      m.UserID().String(),
			DisplayName: names[m.UserID()],
			Role:        m.Role().String(),
		})
	}
	sort.Slice(members, func(i, j int) bool {
		return strings.ToLower(members[i].DisplayName) < strings.ToLower(members[j].DisplayName)
	})

	view := &GroupDetailView{
		GroupSummary: GroupSummary{
			ID:          g.ID().String(),
			Name:        g.Name(),
			OwnerUserID: g.OwnerUserID().String(),
			MemberCount: int64(len(members)),
			CreatedAt:   g.CreatedAt(),
		},
		Members: members,
	}

	if err := s.detailCache.Set(ctx, key, *view); err != nil {
		s.logger.Warn("failed to cache group detail", "group_id", groupID.String(), "error", err)
	}

	return view, nil
}

// displayNames resolves user IDs to display names in one batched lookup,
// falling back to the email address when no display name is set.
func (s *GroupQueryService) displayNames(ctx context.Context, ids []shared.ID) (map[shared.ID]string, error) {
	names := make(map[shared.ID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		name := u.DisplayName()
		if name == "" {
			name = u.Email()
		}
		names[u.ID()] = name
	}
	return names, nil
}

func summarize(groups []*group.Group, counts map[shared.ID]int64) []GroupSummary {
	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, GroupSummary{
			ID:          g.ID().String(),
			Name:        g.Name(),
			OwnerUserID: g.OwnerUserID().String(),
			MemberCount: counts[g.ID()],
			CreatedAt:   g.CreatedAt(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return strings.ToLower(summaries[i].Name) < strings.ToLower(summaries[j].Name)
	})
	return summaries
}
