// AngelaMos | 2026
// memory.go

package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/light618/linkbot-ai/internal/core"
)

// MemoryRepository is the memory storage driver's credential store. Username
// and email are unique, emails compared case-insensitively.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	if _, ok := r.byEmail[email]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	r.byEmail[email] = user.ID

	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}

	return &user, nil
}

func (r *MemoryRepository) GetByUsername(
	_ context.Context,
	username string,
) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
	}

	user := r.users[id]
	return &user, nil
}

func (r *MemoryRepository) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
	updatedAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	r.users[id] = user

	return nil
}

func (r *MemoryRepository) UpdateStatus(
	_ context.Context,
	id, status string,
	updatedAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}

	user.Status = status
	user.UpdatedAt = updatedAt
	r.users[id] = user

	return nil
}

func (r *MemoryRepository) ExistsByUsernameOrEmail(
	_ context.Context,
	username, email string,
) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byUsername[username]; ok {
		return true, nil
	}
	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

var _ Repository = (*MemoryRepository)(nil)
