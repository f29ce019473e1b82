package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/invitation"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
)

// InvitationService handles the invitation lifecycle: create, accept,
// decline. The only transitions are pending to accepted and pending to
// declined; answered invitations absorb all further attempts as not-found.
type InvitationService struct {
	invitations  invitation.Repository
	groups       group.Repository
	memberships  group.MembershipRepository
	users        user.Repository
	pendingCache PendingInvitationsCache
	groupsCache  GroupsCache
	logger       *logger.Logger
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitations invitation.Repository,
	groups group.Repository,
	memberships group.MembershipRepository,
	users user.Repository,
	pendingCache PendingInvitationsCache,
	groupsCache GroupsCache,
	log *logger.Logger,
) *InvitationService {
	return &InvitationService{
		invitations:  invitations,
		groups:       groups,
		memberships:  memberships,
		users:        users,
		pendingCache: pendingCache,
		groupsCache:  groupsCache,
		logger:       log.With("service", "invitation"),
	}
}

// Create invites an email to a group. Only the group owner can invite. When
// the email belongs to a known user who is already a member the invitation
// is refused, as is a second pending invitation for the same email.
func (s *InvitationService) Create(ctx context.Context, ownerID, groupID shared.ID, email string) (*PendingInvitationView, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, invitation.ErrInvalidEmail
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwnedBy(ownerID) {
		return nil, group.ErrNotOwner
	}

	var invitedUserID *shared.ID
	invited, err := s.users.GetByEmail(ctx, trimmed)
	switch {
	case err == nil:
		_, err := s.memberships.GetByUserAndGroup(ctx, invited.ID(), groupID)
		if err == nil {
			return nil, invitation.ErrAlreadyMember
		}
		if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		id := invited.ID()
		invitedUserID = &id
	case errors.Is(err, user.ErrUserNotFound):
		// Invitations to unknown emails are allowed; the user binds on accept.
	default:
		return nil, fmt.Errorf("failed to look up invited user: %w", err)
	}

	exists, err := s.invitations.ExistsPendingForEmail(ctx, groupID, trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	if exists {
		return nil, invitation.ErrDuplicate
	}

	inv, err := invitation.New(groupID, trimmed, invitedUserID, &ownerID)
	if err != nil {
		return nil, err
	}

	// A racing duplicate trips the partial unique index and surfaces as the
	// same ErrDuplicate.
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invitation created",
		"invitation_id", inv.ID().String(),
		"group_id", groupID.String(),
	)

	s.invalidatePending(ctx, trimmed)

	views, err := s.enrich(ctx, []*invitation.Invitation{inv})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Accept accepts a pending invitation addressed to the caller's email and
// adds the caller to the group. Answered, missing, or misaddressed
// invitations all read as not-found.
func (s *InvitationService) Accept(ctx context.Context, userID shared.ID, email string, invitationID shared.ID) error {
	inv, err := s.loadActionable(ctx, invitationID, email)
	if err != nil {
		return err
	}

	_, err = s.memberships.GetByUserAndGroup(ctx, userID, inv.GroupID())
	if err == nil {
		return invitation.ErrAlreadyMember
	}
	if !shared.IsNotFound(err) {
		return fmt.Errorf("failed to check membership: %w", err)
	}

	// Membership first: if it races with another accept, the invitation
	// stays pending rather than ending accepted without a member row.
	m, err := group.NewMembership(inv.GroupID(), userID, group.MemberRoleMember)
	if err != nil {
		return err
	}
	if err := s.memberships.Add(ctx, m); err != nil {
		if errors.Is(err, group.ErrAlreadyMember) {
			return invitation.ErrAlreadyMember
		}
		return err
	}

	if err := inv.Accept(userID); err != nil {
		return err
	}
	if err := s.invitations.Update(ctx, inv); err != nil {
		return err
	}

	s.logger.Info("invitation accepted",
		"invitation_id", inv.ID().String(),
		"group_id", inv.GroupID().String(),
	)

	s.invalidatePending(ctx, inv.InvitedEmail())
	if err := s.groupsCache.Delete(ctx, groupsCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate groups cache", "user_id", userID.String(), "error", err)
	}

	return nil
}

// Decline declines a pending invitation addressed to the caller's email.
func (s *InvitationService) Decline(ctx context.Context, userID shared.ID, email string, invitationID shared.ID) error {
	inv, err := s.loadActionable(ctx, invitationID, email)
	if err != nil {
		return err
	}

	if err := inv.Decline(userID); err != nil {
		return err
	}
	if err := s.invitations.Update(ctx, inv); err != nil {
		return err
	}

	s.logger.Info("invitation declined",
		"invitation_id", inv.ID().String(),
		"group_id", inv.GroupID().String(),
	)

	s.invalidatePending(ctx, inv.InvitedEmail())

	return nil
}

// loadActionable fetches an invitation the caller may answer. Pending status
// and an email match are required; anything else reads as not-found so
// callers cannot probe other people's invitations.
func (s *InvitationService) loadActionable(ctx context.Context, invitationID shared.ID, email string) (*invitation.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() || !inv.IsFor(email) {
		return nil, invitation.ErrNotFound
	}
	return inv, nil
}

// enrich builds pending invitation views with group and sender data using
// batched lookups. The sender is the recorded inviter, falling back to the
// group owner.
func (s *InvitationService) enrich(ctx context.Context, invitations []*invitation.Invitation) ([]PendingInvitationView, error) {
	if len(invitations) == 0 {
		return []PendingInvitationView{}, nil
	}

	groupIDs := make(map[shared.ID]bool)
	for _, inv := range invitations {
		groupIDs[inv.GroupID()] = true
	}

	groupsByID := make(map[shared.ID]*group.Group, len(groupIDs))
	for id := range groupIDs {
		g, err := s.groups.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		groupsByID[id] = g
	}

	senderIDs := make(map[shared.ID]bool)
	for _, inv := range invitations {
		if inv.InviterUserID() != nil {
			senderIDs[*inv.InviterUserID()] = true
		} else {
			senderIDs[groupsByID[inv.GroupID()].OwnerUserID()] = true
		}
	}

	ids := make([]shared.ID, 0, len(senderIDs))
	for id := range senderIDs {
		ids = append(ids, id)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list senders: %w", err)
	}
	usersByID := make(map[shared.ID]*user.User, len(users))
	for _, u := range users {
		usersByID[u.ID()] = u
	}

	views := make([]PendingInvitationView, 0, len(invitations))
	for _, inv := range invitations {
		g := groupsByID[inv.GroupID()]

		senderID := g.OwnerUserID()
		if inv.InviterUserID() != nil {
			senderID = *inv.InviterUserID()
		}

		var senderName, senderEmail string
		if sender, ok := usersByID[senderID]; ok {
			senderName = sender.DisplayName()
			if senderName == "" {
				senderName = sender.Email()
			}
			senderEmail = sender.Email()
		}

		views = append(views, PendingInvitationView{
			ID:           inv.ID().String(),
			GroupID:      inv.GroupID().String(),
			GroupName:    g.Name(),
			InvitedEmail: inv.InvitedEmail(),
			SenderName:   senderName,
			SenderEmail:  senderEmail,
			CreatedAt:    inv.CreatedAt(),
		})
	}

	return views, nil
}

func (s *InvitationService) invalidatePending(ctx context.Context, email string) {
	if err := s.pendingCache.Delete(ctx, pendingInvitationsCacheKey(email)); err != nil {
		s.logger.Warn("failed to invalidate pending invitations cache", "error", err)
	}
}
