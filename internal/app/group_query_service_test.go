package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
)

type groupQueryFixture struct {
	queries     *GroupQueryService
	groups      *fakeGroupRepo
	memberships *fakeMembershipRepo
	users       *fakeUserRepo
	groupsCache *fakeCache[GroupsView]
	detailCache *fakeCache[GroupDetailView]
}

func newGroupQueryFixture() *groupQueryFixture {
	memberships := newFakeMembershipRepo()
	groups := newFakeGroupRepo(memberships)
	users := newFakeUserRepo()
	groupsCache := newFakeCache[GroupsView]()
	detailCache := newFakeCache[GroupDetailView]()

	return &groupQueryFixture{
		queries:     NewGroupQueryService(groups, memberships, users, groupsCache, detailCache, logger.NewNop()),
		groups:      groups,
		memberships: memberships,
		users:       users,
		groupsCache: groupsCache,
		detailCache: detailCache,
	}
}

func (f *groupQueryFixture) addUser(t *testing.T, name, email string) shared.ID {
	t.Helper()
	id := shared.NewID()
	u, err := user.New(id, name, email, "")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return id
}

func (f *groupQueryFixture) addGroup(t *testing.T, ownerID shared.ID, name string) shared.ID {
	t.Helper()
	g, err := group.New(ownerID, name)
	require.NoError(t, err)
	m, err := group.NewMembership(g.ID(), ownerID, group.MemberRoleOwner)
	require.NoError(t, err)
	require.NoError(t, f.groups.Create(context.Background(), g, m))
	return g.ID()
}

func (f *groupQueryFixture) join(t *testing.T, groupID, userID shared.ID) {
	t.Helper()
	m, err := group.NewMembership(groupID, userID, group.MemberRoleMember)
	require.NoError(t, err)
	require.NoError(t, f.memberships.Add(context.Background(), m))
}

func TestGroupQueryServiceGetGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("splits owned and member groups with counts", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "Alice", "alice@example.com")
		bobID := f.addUser(t, "Bob", "bob@example.com")

		ownedID := f.addGroup(t, aliceID, "Book Club")
		f.join(t, ownedID, bobID)

		joinedID := f.addGroup(t, bobID, "Wine Club")
		f.join(t, joinedID, aliceID)

		view, err := f.queries.GetGroups(ctx, aliceID)

		require.NoError(t, err)
		require.Len(t, view.Owned, 1)
		assert.Equal(t, "Book Club", view.Owned[0].Name)
		assert.Equal(t, int64(2), view.Owned[0].MemberCount)
		require.Len(t, view.Member, 1)
		assert.Equal(t, "Wine Club", view.Member[0].Name)
		assert.Equal(t, int64(2), view.Member[0].MemberCount)
	})

	t.Run("sorts by name case-insensitively", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "Alice", "alice@example.com")
		f.addGroup(t, aliceID, "zebra watchers")
		f.addGroup(t, aliceID, "Antique Fans")
		f.addGroup(t, aliceID, "book club")

		view, err := f.queries.GetGroups(ctx, aliceID)

		require.NoError(t, err)
		require.Len(t, view.Owned, 3)
		assert.Equal(t, "Antique Fans", view.Owned[0].Name)
		assert.Equal(t, "book club", view.Owned[1].Name)
		assert.Equal(t, "zebra watchers", view.Owned[2].Name)
	})

	t.Run("serves the cached view when present", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "Alice", "alice@example.com")
		cached := GroupsView{Owned: []GroupSummary{{Name: "Cached Club"}}}
		require.NoError(t, f.groupsCache.Set(ctx, aliceID.String(), cached))

		view, err := f.queries.GetGroups(ctx, aliceID)

		require.NoError(t, err)
		require.Len(t, view.Owned, 1)
		assert.Equal(t, "Cached Club", view.Owned[0].Name)
	})

	t.Run("caches the loaded view", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "Alice", "alice@example.com")
		f.addGroup(t, aliceID, "Book Club")

		_, err := f.queries.GetGroups(ctx, aliceID)
		require.NoError(t, err)

		cached, err := f.groupsCache.Get(ctx, aliceID.String())
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Len(t, cached.Owned, 1)
	})

	t.Run("empty lists for a user with no groups", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "Alice", "alice@example.com")

		view, err := f.queries.GetGroups(ctx, aliceID)

		require.NoError(t, err)
		assert.Empty(t, view.Owned)
		assert.Empty(t, view.Member)
	})
}

func TestGroupQueryServiceGetGroupDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("lists members sorted by display name", func(t *testing.T) {
		f := newGroupQueryFixture()
		aliceID := f.addUser(t, "alice", "alice@example.com")
		zoeID := f.addUser(t, "Zoe", "zoe@example.com")
		bobID := f.addUser(t, "Bob", "bob@example.com")

		groupID := f.addGroup(t, zoeID, "Book Club")
		f.join(t, groupID, aliceID)
		f.join(t, groupID, bobID)

		view, err := f.queries.GetGroupDetail(ctx, groupID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), view.MemberCount)
		require.Len(t, view.Members, 3)
		assert.Equal(t, "alice", view.Members[0].DisplayName)
		assert.Equal(t, "Bob", view.Members[1].DisplayName)
		assert.Equal(t, "Zoe", view.Members[2].DisplayName)
		assert.Equal(t, group.MemberRoleOwner.String(), view.Members[2].Role)
	})

	t.Run("falls back to email when display name is blank", func(t *testing.T) {
		f := newGroupQueryFixture()
		ownerID := f.addUser(t, "", "owner@example.com")
		groupID := f.addGroup(t, ownerID, "Book Club")

		view, err := f.queries.GetGroupDetail(ctx, groupID)

		require.NoError(t, err)
		require.Len(t, view.Members, 1)
		assert.Equal(t, "owner@example.com", view.Members[0].DisplayName)
	})

	t.Run("unknown group reads as not found", func(t *testing.T) {
		f := newGroupQueryFixture()

		_, err := f.queries.GetGroupDetail(ctx, shared.NewID())

		assert.ErrorIs(t, err, group.ErrGroupNotFound)
	})
}
