package user

import (
	"strings"
	"time"
)

// ApplyAvatar applies avatar URLs from a request or OAuth prefill.
// An explicit override always wins; a social URL is only stored when no
// override exists, so prefill flows never clobber a user's choice.
func (u *User) ApplyAvatar(socialURL, overrideURL string) {
	changed := false

	if trimmed := strings.TrimSpace(overrideURL); trimmed != "" {
		u.avatarOverrideURL = trimmed
		changed = true
	}

	if trimmed := strings.TrimSpace(socialURL); trimmed != "" && u.avatarOverrideURL == "" {
		u.socialAvatarURL = trimmed
		changed = true
	}

	if changed {
		u.updatedAt = time.Now().UTC()
	}
}

// EffectiveAvatarURL resolves the avatar URL shown for the user.
func (u *User) EffectiveAvatarURL() string {
	if u.avatarOverrideURL != "" {
		return u.avatarOverrideURL
	}
	return u.socialAvatarURL
}

// ResolveAvatarSource reports which tier supplied the effective avatar.
func (u *User) ResolveAvatarSource() AvatarSource {
	switch {
	case u.avatarOverrideURL != "":
		return AvatarSourceOverride
	case u.socialAvatarURL != "":
		return AvatarSourceSocial
	default:
		return AvatarSourceNone
	}
}
