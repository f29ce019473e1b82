package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// ProviderEmail is the provider name of a password-capable identity.
const ProviderEmail = "email"

// AuthIdentity maps an authentication provider and its subject to a user.
type AuthIdentity struct {
	id              shared.ID
	userID          shared.ID
	provider        string
	providerSubject string
	createdAt       time.Time
}

// NewAuthIdentity creates a new AuthIdentity.
func NewAuthIdentity(userID shared.ID, provider, providerSubject string) (*AuthIdentity, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if strings.TrimSpace(provider) == "" {
		return nil, fmt.Errorf("%w: provider is required", shared.ErrValidation)
	}
	if strings.TrimSpace(providerSubject) == "" {
		return nil, fmt.Errorf("%w: provider subject is required", shared.ErrValidation)
	}

	return &AuthIdentity{
		id:              shared.NewID(),
		userID:          userID,
		provider:        strings.ToLower(strings.TrimSpace(provider)),
		providerSubject: strings.TrimSpace(providerSubject),
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstituteAuthIdentity recreates an AuthIdentity from persistence.
func ReconstituteAuthIdentity(id, userID shared.ID, provider, providerSubject string, createdAt time.Time) *AuthIdentity {
	return &AuthIdentity{
		id:              id,
		userID:          userID,
		provider:        provider,
		providerSubject: providerSubject,
		createdAt:       createdAt,
	}
}

// ID returns the identity ID.
func (a *AuthIdentity) ID() shared.ID {
	return a.id
}

// UserID returns the owning user's ID.
func (a *AuthIdentity) UserID() shared.ID {
	return a.userID
}

// Provider returns the provider name.
func (a *AuthIdentity) Provider() string {
	return a.provider
}

// ProviderSubject returns the provider's subject identifier.
func (a *AuthIdentity) ProviderSubject() string {
	return a.providerSubject
}

// CreatedAt returns the creation timestamp.
func (a *AuthIdentity) CreatedAt() time.Time {
	return a.createdAt
}

// IsEmailProvider reports whether this identity supports password login.
func (a *AuthIdentity) IsEmailProvider() bool {
	return strings.EqualFold(a.provider, ProviderEmail)
}

// HasEmailIdentity reports whether any identity in the list is
// password-capable.
func HasEmailIdentity(identities []*AuthIdentity) bool {
	for _, identity := range identities {
		if identity.IsEmailProvider() {
			return true
		}
	}
	return false
}
