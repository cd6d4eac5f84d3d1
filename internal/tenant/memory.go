// AngelaMos | 2026
// memory.go

package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/light618/linkbot-ai/internal/core"
)

// MemoryRepository keeps tenants in process memory. Used by the memory
// storage driver and by tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tenants: make(map[string]Tenant)}
}

func (r *MemoryRepository) Create(_ context.Context, tenant *Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants[tenant.ID]; ok {
		return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
	}

	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}
	r.tenants[tenant.ID] = *tenant

	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}

	return &tenant, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenants), nil
}

var _ Repository = (*MemoryRepository)(nil)
