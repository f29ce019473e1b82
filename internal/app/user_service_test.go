package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
)

type userServiceFixture struct {
	service    *UserService
	users      *fakeUserRepo
	identities *fakeIdentityRepo
}

func newUserServiceFixture(passwordConfigured bool) *userServiceFixture {
	users := newFakeUserRepo()
	identities := newFakeIdentityRepo()
	groups := newFakeGroupRepo(newFakeMembershipRepo())

	return &userServiceFixture{
		service:    NewUserService(users, identities, groups, passwordConfigured, logger.NewNop()),
		users:      users,
		identities: identities,
	}
}

func TestUserServiceUpsertProfile(t *testing.T) {
	ctx := context.Background()
	userID := shared.NewID()

	t.Run("creates a profile on first sight", func(t *testing.T) {
		f := newUserServiceFixture(true)

		u, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			DisplayName: "Alice",
			Email:       "alice@example.com",
			Providers:   []string{"google"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Alice", u.DisplayName())
		assert.Equal(t, "alice@example.com", u.Email())

		stored, err := f.users.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", stored.DisplayName())
	})

	t.Run("requires an email on first sight", func(t *testing.T) {
		f := newUserServiceFixture(true)

		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{DisplayName: "Alice"})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("blank email never erases a stored address", func(t *testing.T) {
		f := newUserServiceFixture(true)
		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			DisplayName: "Alice",
			Email:       "alice@example.com",
		})
		require.NoError(t, err)

		u, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{DisplayName: "Alice B"})

		require.NoError(t, err)
		assert.Equal(t, "Alice B", u.DisplayName())
		assert.Equal(t, "alice@example.com", u.Email())
	})

	t.Run("avatar override wins over the social URL", func(t *testing.T) {
		f := newUserServiceFixture(true)

		u, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			Email:             "alice@example.com",
			SocialAvatarURL:   "https://social.example.com/a.png",
			AvatarOverrideURL: "https://cdn.example.com/mine.png",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/mine.png", u.EffectiveAvatarURL())
		assert.Equal(t, user.AvatarSourceOverride, u.ResolveAvatarSource())
	})

	t.Run("social URL fills in when no override exists", func(t *testing.T) {
		f := newUserServiceFixture(true)

		u, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			Email:           "alice@example.com",
			SocialAvatarURL: "https://social.example.com/a.png",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://social.example.com/a.png", u.EffectiveAvatarURL())
		assert.Equal(t, user.AvatarSourceSocial, u.ResolveAvatarSource())
	})

	t.Run("records provider identities idempotently", func(t *testing.T) {
		f := newUserServiceFixture(true)
		input := UpsertProfileInput{
			Email:     "alice@example.com",
			Providers: []string{"google", "email"},
		}

		_, err := f.service.UpsertProfile(ctx, userID, input)
		require.NoError(t, err)
		_, err = f.service.UpsertProfile(ctx, userID, input)
		require.NoError(t, err)

		identities, err := f.identities.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, identities, 2)
	})
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()
	userID := shared.NewID()

	strPtr := func(s string) *string { return &s }

	setup := func(t *testing.T) *userServiceFixture {
		t.Helper()
		f := newUserServiceFixture(true)
		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			DisplayName: "Alice",
			Email:       "alice@example.com",
			Phone:       "+15551234",
		})
		require.NoError(t, err)
		return f
	}

	t.Run("applies only the provided fields", func(t *testing.T) {
		f := setup(t)

		u, err := f.service.UpdateProfile(ctx, userID, UpdateProfileInput{
			DisplayName: strPtr("Alice B"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Alice B", u.DisplayName())
		assert.Equal(t, "+15551234", u.Phone())
	})

	t.Run("unknown user reads as not found", func(t *testing.T) {
		f := newUserServiceFixture(true)

		_, err := f.service.UpdateProfile(ctx, shared.NewID(), UpdateProfileInput{})

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestUserServiceGetProfile(t *testing.T) {
	ctx := context.Background()
	userID := shared.NewID()

	t.Run("reports password capability flags for email accounts", func(t *testing.T) {
		f := newUserServiceFixture(true)
		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			Email:     "alice@example.com",
			Providers: []string{"email"},
		})
		require.NoError(t, err)

		view, err := f.service.GetProfile(ctx, userID)

		require.NoError(t, err)
		assert.True(t, view.CanChangePassword)
		assert.True(t, view.HasEmailProvider)
		assert.True(t, view.RequiresCurrentPassword)
		assert.False(t, view.RequiresEmailForPasswordSetup)
	})

	t.Run("social-only accounts skip the current password", func(t *testing.T) {
		f := newUserServiceFixture(true)
		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{
			Email:     "alice@example.com",
			Providers: []string{"google"},
		})
		require.NoError(t, err)

		view, err := f.service.GetProfile(ctx, userID)

		require.NoError(t, err)
		assert.False(t, view.HasEmailProvider)
		assert.False(t, view.RequiresCurrentPassword)
		assert.False(t, view.RequiresEmailForPasswordSetup)
	})

	t.Run("password changes disabled when the provider is not wired", func(t *testing.T) {
		f := newUserServiceFixture(false)
		_, err := f.service.UpsertProfile(ctx, userID, UpsertProfileInput{Email: "alice@example.com"})
		require.NoError(t, err)

		view, err := f.service.GetProfile(ctx, userID)

		require.NoError(t, err)
		assert.False(t, view.CanChangePassword)
	})
}
