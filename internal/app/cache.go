// Package app provides the application services: group and invitation
// commands and queries, user profile management, and the password change
// workflow.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Cache key prefixes. Full keys look like "groups:{userID}",
// "group-detail:{groupID}" and "pending-invitations:{email}".
const (
	GroupsCachePrefix             = "groups"
	GroupDetailCachePrefix        = "group-detail"
	PendingInvitationsCachePrefix = "pending-invitations"
)

// GroupsCache caches a user's group overview.
// Satisfied by *redis.Cache[GroupsView].
type GroupsCache interface {
	Get(ctx context.Context, key string) (*GroupsView, error)
	Set(ctx context.Context, key string, value GroupsView) error
	Delete(ctx context.Context, key string) error
}

// GroupDetailCache caches a single group's detail view.
// Satisfied by *redis.Cache[GroupDetailView].
type GroupDetailCache interface {
	Get(ctx context.Context, key string) (*GroupDetailView, error)
	Set(ctx context.Context, key string, value GroupDetailView) error
	Delete(ctx context.Context, key string) error
}

// PendingInvitationsCache caches the pending invitations for an email.
// Satisfied by *redis.Cache[PendingInvitationsView].
type PendingInvitationsCache interface {
	Get(ctx context.Context, key string) (*PendingInvitationsView, error)
	Set(ctx context.Context, key string, value PendingInvitationsView) error
	Delete(ctx context.Context, key string) error
}

// groupsCacheKey builds the cache key for a user's group overview.
func groupsCacheKey(userID shared.ID) string {
	return userID.String()
}

// groupDetailCacheKey builds the cache key for a group's detail view.
func groupDetailCacheKey(groupID shared.ID) string {
	return groupID.String()
}

// pendingInvitationsCacheKey builds the cache key for an email's pending
// invitations. Emails are lowered so the key matches however the address was
// cased on the invitation or the caller's token.
func pendingInvitationsCacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GroupSummary is the overview projection of a group.
type GroupSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"owner_user_id"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupsView is a user's group overview: groups they own and groups they
// joined as a member.
type GroupsView struct {
	Owned  []GroupSummary `json:"owned"`
	Member []GroupSummary `json:"member"`
}

// GroupMemberView is one member row in a group detail.
type GroupMemberView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// GroupDetailView is the full projection of a group with its member list.
type GroupDetailView struct {
	GroupSummary
	Members []GroupMemberView `json:"members"`
}

// PendingInvitationView is the enriched projection of a pending invitation.
// Sender falls back to the group owner when no inviter was recorded.
type PendingInvitationView struct {
	ID           string    `json:"id"`
	GroupID      string    `json:"group_id"`
	GroupName    string    `json:"group_name"`
	InvitedEmail string    `json:"invited_email"`
	SenderName   string    `json:"sender_name"`
	SenderEmail  string    `json:"sender_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// PendingInvitationsView wraps the pending invitations list for caching.
type PendingInvitationsView struct {
	Invitations []PendingInvitationView `json:"invitations"`
}
