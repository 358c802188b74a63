// Package memory holds mutex guarded in-process stores. They are the default
// storage driver and back the service and handler tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type UserStore struct {
	mu         sync.RWMutex
	items      map[string]*model.User
	byUsername map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		items:      make(map[string]*model.User),
		byUsername: make(map[string]string),
	}
}

func (s *UserStore) Save(_ context.Context, u *model.User) error {
	key := usernameKey(u.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUsername[key]; ok && id != u.ID {
		return model.NewConflict(model.ErrDuplicateUsername)
	}
	s.items[u.ID] = cloneUser(u)
	s.byUsername[key] = u.ID
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return nil, nil
	}
	return cloneUser(s.items[id]), nil
}

func (s *UserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[usernameKey(username)]
	return ok, nil
}

// usernames are unique regardless of case
func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func cloneUser(u *model.User) *model.User {
	return &model.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Age:          u.Age,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}
