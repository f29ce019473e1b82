package invitation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmeet/api/pkg/domain/shared"
)

func newPending(t *testing.T, email string) *Invitation {
	t.Helper()
	inviter := shared.NewID()
	inv, err := New(shared.NewID(), email, nil, &inviter)
	require.NoError(t, err)
	return inv
}

func TestNew(t *testing.T) {
	t.Run("starts pending with a trimmed email", func(t *testing.T) {
		inv := newPending(t, "  bob@example.com  ")

		assert.Equal(t, StatusPending, inv.Status())
		assert.Equal(t, "bob@example.com", inv.InvitedEmail())
		assert.Nil(t, inv.AcceptedAt())
	})

	t.Run("rejects a blank email", func(t *testing.T) {
		_, err := New(shared.NewID(), "   ", nil, nil)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("requires a group", func(t *testing.T) {
		_, err := New(shared.ID{}, "bob@example.com", nil, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestIsFor(t *testing.T) {
	inv := newPending(t, "bob@example.com")

	assert.True(t, inv.IsFor("bob@example.com"))
	assert.True(t, inv.IsFor("BOB@Example.com"))
	assert.True(t, inv.IsFor("  bob@example.com "))
	assert.False(t, inv.IsFor("eve@example.com"))
}

func TestAccept(t *testing.T) {
	t.Run("binds the accepting user and records the time", func(t *testing.T) {
		inv := newPending(t, "bob@example.com")
		userID := shared.NewID()

		require.NoError(t, inv.Accept(userID))

		assert.Equal(t, StatusAccepted, inv.Status())
		require.NotNil(t, inv.InvitedUserID())
		assert.True(t, inv.InvitedUserID().Equals(userID))
		assert.NotNil(t, inv.AcceptedAt())
	})

	t.Run("accepted is terminal", func(t *testing.T) {
		inv := newPending(t, "bob@example.com")
		require.NoError(t, inv.Accept(shared.NewID()))

		assert.ErrorIs(t, inv.Accept(shared.NewID()), ErrNotPending)
		assert.ErrorIs(t, inv.Decline(shared.NewID()), ErrNotPending)
	})
}

func TestDecline(t *testing.T) {
	t.Run("declined is terminal", func(t *testing.T) {
		inv := newPending(t, "bob@example.com")
		require.NoError(t, inv.Decline(shared.NewID()))

		assert.Equal(t, StatusDeclined, inv.Status())
		assert.ErrorIs(t, inv.Accept(shared.NewID()), ErrNotPending)
	})
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusAccepted.IsValid())
	assert.True(t, StatusDeclined.IsValid())
	assert.False(t, Status("expired").IsValid())
}
