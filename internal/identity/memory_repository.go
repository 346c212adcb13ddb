package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID UserID
	users  map[string]User
}

// NewMemoryRepository builds an in-memory credential store. Identifiers start
// at 1, like a SERIAL column.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, users: make(map[string]User)}
}

func (r *memoryRepository) Insert(_ context.Context, login, passwordHash string) (UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[login]; exists {
		return 0, ErrDuplicateLogin
	}
	user := User{ID: r.nextID, Login: login, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.users[login] = user
	r.nextID++
	return user.ID, nil
}

func (r *memoryRepository) FindByLogin(_ context.Context, login string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[login]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id UserID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}
