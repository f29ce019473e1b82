package app

import (
	"context"
	"strings"
	"sync"

	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/invitation"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
)

// In-memory fakes backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[shared.ID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[shared.ID]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email(), u.Email()) {
			return user.ErrEmailExists
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id shared.ID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email(), email) {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []shared.ID) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities []*user.AuthIdentity
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{}
}

func (r *fakeIdentityRepo) Add(_ context.Context, identity *user.AuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.identities {
		if existing.Provider() == identity.Provider() && existing.ProviderSubject() == identity.ProviderSubject() {
			return nil
		}
	}
	r.identities = append(r.identities, identity)
	return nil
}

func (r *fakeIdentityRepo) ListByUser(_ context.Context, userID shared.ID) ([]*user.AuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.AuthIdentity
	for _, identity := range r.identities {
		if identity.UserID().Equals(userID) {
			out = append(out, identity)
		}
	}
	return out, nil
}

func (r *fakeIdentityRepo) GetByProviderSubject(_ context.Context, provider, subject string) (*user.AuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.identities {
		if identity.Provider() == provider && identity.ProviderSubject() == subject {
			return identity, nil
		}
	}
	return nil, user.ErrUserNotFound
}

type fakeGroupRepo struct {
	mu          sync.Mutex
	groups      map[shared.ID]*group.Group
	memberships *fakeMembershipRepo
}

func newFakeGroupRepo(memberships *fakeMembershipRepo) *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:      make(map[shared.ID]*group.Group),
		memberships: memberships,
	}
}

func (r *fakeGroupRepo) Create(ctx context.Context, g *group.Group, ownerMembership *group.Membership) error {
	r.mu.Lock()
	for _, existing := range r.groups {
		if existing.OwnerUserID().Equals(g.OwnerUserID()) && existing.Name() == g.Name() {
			r.mu.Unlock()
			return group.ErrDuplicateName
		}
	}
	r.groups[g.ID()] = g
	r.mu.Unlock()
	return r.memberships.Add(ctx, ownerMembership)
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id shared.ID) (*group.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) Update(_ context.Context, g *group.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID()]; !ok {
		return group.ErrGroupNotFound
	}
	r.groups[g.ID()] = g
	return nil
}

func (r *fakeGroupRepo) ListOwned(_ context.Context, ownerUserID shared.ID) ([]*group.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*group.Group
	for _, g := range r.groups {
		if g.OwnerUserID().Equals(ownerUserID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) ListMember(ctx context.Context, userID shared.ID) ([]*group.Group, error) {
	memberships, err := r.memberships.listByUser(userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*group.Group
	for _, m := range memberships {
		if m.IsOwner() {
			continue
		}
		if g, ok := r.groups[m.GroupID()]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) ExistsNameForOwner(_ context.Context, ownerUserID shared.ID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.OwnerUserID().Equals(ownerUserID) && g.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeMembershipRepo struct {
	mu      sync.Mutex
	members []*group.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{}
}

func (r *fakeMembershipRepo) Add(_ context.Context, m *group.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.GroupID().Equals(m.GroupID()) && existing.UserID().Equals(m.UserID()) {
			return group.ErrAlreadyMember
		}
	}
	r.members = append(r.members, m)
	return nil
}

func (r *fakeMembershipRepo) GetByUserAndGroup(_ context.Context, userID, groupID shared.ID) (*group.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID().Equals(userID) && m.GroupID().Equals(groupID) {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMembershipRepo) ListMembers(_ context.Context, groupID shared.ID) ([]*group.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*group.Membership
	for _, m := range r.members {
		if m.GroupID().Equals(groupID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) CountMembers(_ context.Context, groupID shared.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.members {
		if m.GroupID().Equals(groupID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMembershipRepo) CountByGroupIDs(_ context.Context, groupIDs []shared.ID) (map[shared.ID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.ID]int64)
	for _, id := range groupIDs {
		for _, m := range r.members {
			if m.GroupID().Equals(id) {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (r *fakeMembershipRepo) listByUser(userID shared.ID) ([]*group.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*group.Membership
	for _, m := range r.members {
		if m.UserID().Equals(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[shared.ID]*invitation.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[shared.ID]*invitation.Invitation)}
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv *invitation.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invitations {
		if existing.GroupID().Equals(inv.GroupID()) &&
			existing.IsPending() &&
			strings.EqualFold(existing.InvitedEmail(), inv.InvitedEmail()) {
			return invitation.ErrDuplicate
		}
	}
	r.invitations[inv.ID()] = inv
	return nil
}

func (r *fakeInvitationRepo) GetByID(_ context.Context, id shared.ID) (*invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, invitation.ErrNotFound
	}
	return inv, nil
}

func (r *fakeInvitationRepo) Update(_ context.Context, inv *invitation.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[inv.ID()]; !ok {
		return invitation.ErrNotFound
	}
	r.invitations[inv.ID()] = inv
	return nil
}

func (r *fakeInvitationRepo) ExistsPendingForEmail(_ context.Context, groupID shared.ID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.GroupID().Equals(groupID) && inv.IsPending() && strings.EqualFold(inv.InvitedEmail(), email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvitationRepo) ListPendingByEmail(_ context.Context, email string) ([]*invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*invitation.Invitation
	for _, inv := range r.invitations {
		if inv.IsPending() && strings.EqualFold(inv.InvitedEmail(), email) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// fakeCache is an in-memory stand-in for the Redis-backed view caches. It
// records deleted keys so tests can assert invalidation.
type fakeCache[T any] struct {
	mu      sync.Mutex
	values  map[string]*T
	deleted []string
}

func newFakeCache[T any]() *fakeCache[T] {
	return &fakeCache[T]{values: make(map[string]*T)}
}

func (c *fakeCache[T]) Get(_ context.Context, key string) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (c *fakeCache[T]) Set(_ context.Context, key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = &value
	return nil
}

func (c *fakeCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache[T]) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}
