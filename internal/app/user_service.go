package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
)

// UserService manages user profiles and their auth identities.
type UserService struct {
	users      user.Repository
	identities user.IdentityRepository
	groups     group.Repository
	// passwordConfigured reports whether the password-change provider is
	// wired; it drives the CanChangePassword capability flag.
	passwordConfigured bool
	logger             *logger.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users user.Repository,
	identities user.IdentityRepository,
	groups group.Repository,
	passwordConfigured bool,
	log *logger.Logger,
) *UserService {
	return &UserService{
		users:              users,
		identities:         identities,
		groups:             groups,
		passwordConfigured: passwordConfigured,
		logger:             log.With("service", "user"),
	}
}

// UpsertProfileInput carries the profile fields synced at login.
type UpsertProfileInput struct {
	DisplayName       string   `json:"display_name" validate:"max=100"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Phone             string   `json:"phone" validate:"max=32"`
	AvatarOverrideURL string   `json:"avatar_override_url" validate:"omitempty,url"`
	SocialAvatarURL   string   `json:"-"`
	Providers         []string `json:"-"`
}

// UpsertProfile creates the profile on first sight (email required) or
// updates it. Display name and phone are written as given; a blank email
// never erases a stored address; avatar override always wins and a social
// URL never clobbers an override. Provider identities are recorded
// idempotently.
func (s *UserService) UpsertProfile(ctx context.Context, userID shared.ID, input UpsertProfileInput) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		u.UpdateDisplayName(input.DisplayName)
		u.UpdatePhone(input.Phone)
		u.UpdateEmail(input.Email)
		u.ApplyAvatar(input.SocialAvatarURL, input.AvatarOverrideURL)
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	case errors.Is(err, user.ErrUserNotFound):
		u, err = user.New(userID, input.DisplayName, input.Email, input.Phone)
		if err != nil {
			return nil, err
		}
		u.ApplyAvatar(input.SocialAvatarURL, input.AvatarOverrideURL)
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("profile created", "user_id", userID.String())
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.syncIdentities(ctx, userID, input.Providers); err != nil {
		return nil, err
	}

	return u, nil
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	DisplayName       *string `json:"display_name" validate:"omitempty,max=100"`
	Phone             *string `json:"phone" validate:"omitempty,max=32"`
	AvatarOverrideURL *string `json:"avatar_override_url" validate:"omitempty,url"`
}

// UpdateProfile applies a partial update to an existing profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID shared.ID, input UpdateProfileInput) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		u.UpdateDisplayName(*input.DisplayName)
	}
	if input.Phone != nil {
		u.UpdatePhone(*input.Phone)
	}
	if input.AvatarOverrideURL != nil {
		u.ApplyAvatar("", *input.AvatarOverrideURL)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// ProfileView is the profile projection returned to the caller.
type ProfileView struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	AvatarURL    string    `json:"avatar_url"`
	AvatarSource string    `json:"avatar_source"`
	MemberSince  time.Time `json:"member_since"`
	GroupCount   int       `json:"group_count"`

	// Password capability flags derived from the stored auth identities.
	CanChangePassword             bool `json:"can_change_password"`
	HasEmailProvider              bool `json:"has_email_provider"`
	RequiresCurrentPassword       bool `json:"requires_current_password"`
	RequiresEmailForPasswordSetup bool `json:"requires_email_for_password_setup"`
}

// GetProfile returns the profile projection with the effective avatar, the
// user's group count, and password capability flags.
func (s *UserService) GetProfile(ctx context.Context, userID shared.ID) (*ProfileView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	identities, err := s.identities.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	hasEmail := user.HasEmailIdentity(identities)

	owned, err := s.groups.ListOwned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned groups: %w", err)
	}
	member, err := s.groups.ListMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member groups: %w", err)
	}

	return &ProfileView{
		ID:           u.ID().String(),
		DisplayName:  u.DisplayName(),
		Email:        u.Email(),
		Phone:        u.Phone(),
		AvatarURL:    u.EffectiveAvatarURL(),
		AvatarSource: u.ResolveAvatarSource().String(),
		MemberSince:  u.CreatedAt(),
		GroupCount:   len(owned) + len(member),

		CanChangePassword:             s.passwordConfigured,
		HasEmailProvider:              hasEmail,
		RequiresCurrentPassword:       hasEmail,
		RequiresEmailForPasswordSetup: !hasEmail && u.Email() == "",
	}, nil
}

// syncIdentities records provider identities idempotently. The provider
// subject is the auth account's UUID, which is also the local user ID.
func (s *UserService) syncIdentities(ctx context.Context, userID shared.ID, providers []string) error {
	for _, provider := range providers {
		identity, err := user.NewAuthIdentity(userID, provider, userID.String())
		if err != nil {
			s.logger.Warn("skipping invalid identity", "provider", provider, "error", err)
			continue
		}
		if err := s.identities.Add(ctx, identity); err != nil {
			return fmt.Errorf("failed to record identity: %w", err)
		}
	}
	return nil
}
