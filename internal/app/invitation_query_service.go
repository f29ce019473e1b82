package app

import (
	"context"
	"fmt"

	"github.com/loopmeet/api/pkg/logger"
)

// InvitationQueryService serves the cached pending-invitation read side.
type InvitationQueryService struct {
	lifecycle    *InvitationService
	pendingCache PendingInvitationsCache
	logger       *logger.Logger
}

// NewInvitationQueryService creates a new InvitationQueryService. It shares
// the lifecycle service's enrichment so list rows and create responses carry
// the same shape.
func NewInvitationQueryService(
	lifecycle *InvitationService,
	pendingCache PendingInvitationsCache,
	log *logger.Logger,
) *InvitationQueryService {
	return &InvitationQueryService{
		lifecycle:    lifecycle,
		pendingCache: pendingCache,
		logger:       log.With("service", "invitation_query"),
	}
}

// ListPending returns the pending invitations addressed to an email, oldest
// first, enriched with group and sender data. Cached with a short TTL;
// lifecycle transitions invalidate the key.
func (s *InvitationQueryService) ListPending(ctx context.Context, email string) (*PendingInvitationsView, error) {
	key := pendingInvitationsCacheKey(email)

	if cached, err := s.pendingCache.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	pending, err := s.lifecycle.invitations.ListPendingByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}

	views, err := s.lifecycle.enrich(ctx, pending)
	if err != nil {
		return nil, err
	}

	view := &PendingInvitationsView{Invitations: views}

	if err := s.pendingCache.Set(ctx, key, *view); err != nil {
		s.logger.Warn("failed to cache pending invitations", "error", err)
	}

	return view, nil
}
