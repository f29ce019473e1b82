package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/logger"
)

func TestInvitationQueryServiceListPending(t *testing.T) {
	ctx := context.Background()

	newQueries := func(f *invitationServiceFixture) *InvitationQueryService {
		return NewInvitationQueryService(f.service, f.pendingCache, logger.NewNop())
	}

	t.Run("lists enriched pending invitations", func(t *testing.T) {
		f := newInvitationServiceFixture(t)
		queries := newQueries(f)
		_, err := f.service.Create(ctx, f.ownerID, f.groupID, "bob@example.com")
		require.NoError(t, err)

		view, err := queries.ListPending(ctx, "bob@example.com")

		require.NoError(t, err)
		require.Len(t, view.Invitations, 1)
		inv := view.Invitations[0]
		assert.Equal(t, "Book Club", inv.GroupName)
		assert.Equal(t, "Alice Owner", inv.SenderName)
		assert.Equal(t, "alice@example.com", inv.SenderEmail)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		f := newInvitationServiceFixture(t)
		queries := newQueries(f)
		_, err := f.service.Create(ctx, f.ownerID, f.groupID, "bob@example.com")
		require.NoError(t, err)

		view, err := queries.ListPending(ctx, "BOB@Example.com")

		require.NoError(t, err)
		assert.Len(t, view.Invitations, 1)
	})

	t.Run("empty list for an email with no invitations", func(t *testing.T) {
		f := newInvitationServiceFixture(t)
		queries := newQueries(f)

		view, err := queries.ListPending(ctx, "nobody@example.com")

		require.NoError(t, err)
		assert.Empty(t, view.Invitations)
	})

	t.Run("answered invitations drop out of the list", func(t *testing.T) {
		f := newInvitationServiceFixture(t)
		queries := newQueries(f)
		bobID := f.addUser(t, "Bob", "bob@example.com")
		created, err := f.service.Create(ctx, f.ownerID, f.groupID, "bob@example.com")
		require.NoError(t, err)

		view, err := queries.ListPending(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Len(t, view.Invitations, 1)

		require.NoError(t, f.service.Decline(ctx, bobID, "bob@example.com", shared.MustIDFromString(created.ID)))

		view, err = queries.ListPending(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Empty(t, view.Invitations)
	})

	t.Run("caches the loaded view under the lowered email", func(t *testing.T) {
		f := newInvitationServiceFixture(t)
		queries := newQueries(f)
		_, err := f.service.Create(ctx, f.ownerID, f.groupID, "bob@example.com")
		require.NoError(t, err)

		_, err = queries.ListPending(ctx, "BOB@Example.com")
		require.NoError(t, err)

		cached, err := f.pendingCache.Get(ctx, "bob@example.com")
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Len(t, cached.Invitations, 1)
	})
}
