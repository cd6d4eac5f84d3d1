// AngelaMos | 2026
// service.go

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/core"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	if id == "" {
		return nil, fmt.Errorf("get tenant: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.TenantInfo, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toTenantInfo(tenant), nil
}

// Create opens a new tenant on the basic plan with a trial expiry.
func (s *Service) Create(
	ctx context.Context,
	params auth.NewTenant,
) (*auth.TenantInfo, error) {
	now := s.now()

	tenant := &Tenant{
		ID:        "tenant-" + uuid.New().String(),
		Name:      params.Name,
		Domain:    params.Domain,
		Plan:      PlanBasic,
		Status:    StatusActive,
		ExpiresAt: now.Add(TrialPeriod),
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return toTenantInfo(tenant), nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func toTenantInfo(t *Tenant) *auth.TenantInfo {
	return &auth.TenantInfo{
		ID:        t.ID,
		Name:      t.Name,
		Domain:    t.Domain,
		Plan:      t.Plan,
		Status:    t.Status,
		ExpiresAt: t.ExpiresAt,
	}
}

var _ auth.TenantProvider = (*Service)(nil)
