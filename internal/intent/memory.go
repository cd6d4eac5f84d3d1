// AngelaMos | 2026
// memory.go

package intent

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/light618/linkbot-ai/internal/core"
)

// MemoryRepository keeps intents in insertion order, which is the order
// the resolver scans them in.
type MemoryRepository struct {
	mu      sync.RWMutex
	intents []Intent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, intent *Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.intents {
		if r.intents[i].ID == intent.ID {
			return fmt.Errorf("create intent: %w", core.ErrDuplicateKey)
		}
	}

	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}

	stored := *intent
	stored.Keywords = slices.Clone(intent.Keywords)
	r.intents = append(r.intents, stored)

	return nil
}

func (r *MemoryRepository) List(
	_ context.Context,
	params ListParams,
) ([]Intent, int, error) {
	params.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Intent
	for _, in := range r.intents {
		if in.TenantID != params.TenantID {
			continue
		}
		if params.IsActive != nil && in.IsActive != *params.IsActive {
			continue
		}
		matched = append(matched, in)
	}

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	return cloneIntents(matched[start:end]), total, nil
}

func (r *MemoryRepository) ListActive(
	_ context.Context,
	tenantID string,
) ([]Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []Intent
	for _, in := range r.intents {
		if in.TenantID == tenantID && in.IsActive {
			active = append(active, in)
		}
	}

	return cloneIntents(active), nil
}

func (r *MemoryRepository) Counts(_ context.Context, tenantID string) (Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts Counts
	for _, in := range r.intents {
		if in.TenantID != tenantID {
			continue
		}
		counts.Total++
		if in.IsActive {
			counts.Active++
		}
	}

	return counts, nil
}

func cloneIntents(src []Intent) []Intent {
	out := make([]Intent, len(src))
	for i := range src {
		out[i] = src[i]
		out[i].Keywords = slices.Clone(src[i].Keywords)
	}
	return out
}

var _ Repository = (*MemoryRepository)(nil)
