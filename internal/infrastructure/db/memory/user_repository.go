package memory

import (
	"context"
	"sort"

	"github.com/taskboard/task-manager/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	stored := cloneUser(user)
	stored.ID = newID()
	r.s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := cloneUser(u)
	clone.PasswordHash = ""
	return clone, nil
}

func (r *UserRepository) FindRefs(_ context.Context, ids []string) (map[string]domain.UserRef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]domain.UserRef, len(ids))
	for _, id := range ids {
		if err := validID(id); err != nil {
			return nil, err
		}
		if u, ok := r.s.users[id]; ok {
			out[id] = u.Ref()
		}
	}
	return out, nil
}

func (r *UserRepository) ListRefs(_ context.Context) ([]domain.UserRef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	refs := make([]domain.UserRef, 0, len(r.s.users))
	for _, u := range r.s.users {
		refs = append(refs, u.Ref())
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}
