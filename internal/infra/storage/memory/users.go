package memory

import (
	"context"
	"sort"

	domainuser "stayhub/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*domainuser.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domainuser.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Save enforces the unique email index.
func (r *UserRepository) Save(_ context.Context, u *domainuser.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, existing := range r.store.users {
		if id != u.ID && existing.Email == u.Email {
			return domainuser.ErrEmailAlreadyUsed
		}
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id domainuser.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return domainuser.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}
