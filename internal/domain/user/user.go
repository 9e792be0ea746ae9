package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// UserRecord is the slice of user data the checkout flow needs.
type UserRecord struct {
	ID     uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Active bool      `json:"active"`
}

// Directory is a read-only user lookup. Implementations return nil (not an
// error) when the user is unknown.
type Directory interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*UserRecord, error)
}

// MemoryDirectory is a static in-memory directory for tests and simulation.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]UserRecord
}

// NewMemoryDirectory creates a directory preloaded with the given users.
func NewMemoryDirectory(users []UserRecord) *MemoryDirectory {
	m := make(map[uuid.UUID]UserRecord, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &MemoryDirectory{users: m}
}

func (d *MemoryDirectory) GetUser(_ context.Context, userID uuid.UUID) (*UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Put adds or replaces a user.
func (d *MemoryDirectory) Put(u UserRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}
