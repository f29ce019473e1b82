package user

import (
	"context"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Repository defines the interface for user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id shared.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByIDs(ctx context.Context, ids []shared.ID) ([]*User, error)
}

// IdentityRepository defines the interface for auth identity persistence.
type IdentityRepository interface {
	Add(ctx context.Context, identity *AuthIdentity) error
	ListByUser(ctx context.Context, userID shared.ID) ([]*AuthIdentity, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*AuthIdentity, error)
}
