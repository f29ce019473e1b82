package invitation

import (
	"context"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Repository defines the interface for invitation persistence.
type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id shared.ID) (*Invitation, error)
	Update(ctx context.Context, inv *Invitation) error
	ExistsPendingForEmail(ctx context.Context, groupID shared.ID, email string) (bool, error)
	// ListPendingByEmail returns pending invitations for the email ordered by
	// creation time ascending (oldest first).
	ListPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
}
