// Package user provides the user profile domain model.
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// AvatarSource explains which URL is shown as a user's avatar.
type AvatarSource string

const (
	// AvatarSourceNone indicates no avatar is set.
	AvatarSourceNone AvatarSource = "none"
	// AvatarSourceSocial indicates the avatar came from an OAuth provider.
	AvatarSourceSocial AvatarSource = "social"
	// AvatarSourceOverride indicates the user explicitly set the avatar.
	AvatarSourceOverride AvatarSource = "user_override"
)

// String returns the string representation.
func (s AvatarSource) String() string {
	return string(s)
}

// User represents a user profile.
type User struct {
	id                shared.ID
	displayName       string
	email             string
	phone             string
	avatarOverrideURL string
	socialAvatarURL   string
	createdAt         time.Time
	updatedAt         time.Time
}

// New creates a new User profile. The id is the identity provider's subject,
// so callers supply it rather than the entity generating one.
func New(id shared.ID, displayName, email, phone string) (*User, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: id is required", shared.ErrValidation)
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}

	now := time.Now().UTC()
	return &User{
		id:          id,
		displayName: strings.TrimSpace(displayName),
		email:       strings.TrimSpace(email),
		phone:       strings.TrimSpace(phone),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstitute recreates a User from persistence.
func Reconstitute(
	id shared.ID,
	displayName, email, phone string,
	avatarOverrideURL, socialAvatarURL string,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:                id,
		displayName:       displayName,
		email:             email,
		phone:             phone,
		avatarOverrideURL: avatarOverrideURL,
		socialAvatarURL:   socialAvatarURL,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// ID returns the user ID.
func (u *User) ID() shared.ID {
	return u.id
}

// DisplayName returns the display name.
func (u *User) DisplayName() string {
	return u.displayName
}

// Email returns the email address.
func (u *User) Email() string {
	return u.email
}

// Phone returns the phone number.
func (u *User) Phone() string {
	return u.phone
}

// AvatarOverrideURL returns the user-set avatar URL.
func (u *User) AvatarOverrideURL() string {
	return u.avatarOverrideURL
}

// SocialAvatarURL returns the OAuth-provided avatar URL.
func (u *User) SocialAvatarURL() string {
	return u.socialAvatarURL
}

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns the last update timestamp.
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// UpdateDisplayName updates the display name.
func (u *User) UpdateDisplayName(name string) {
	u.displayName = strings.TrimSpace(name)
	u.updatedAt = time.Now().UTC()
}

// UpdatePhone updates the phone number.
func (u *User) UpdatePhone(phone string) {
	u.phone = strings.TrimSpace(phone)
	u.updatedAt = time.Now().UTC()
}

// UpdateEmail updates the email address. A blank email is ignored so that
// partial profile writes never erase a stored address.
func (u *User) UpdateEmail(email string) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return
	}
	u.email = trimmed
	u.updatedAt = time.Now().UTC()
}
