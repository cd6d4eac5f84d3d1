// AngelaMos | 2026
// service.go

package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/light618/linkbot-ai/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	tenantID string,
	req CreateIntentRequest,
) (*Intent, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("create intent: %w", core.ErrUnauthorized)
	}

	keywords := make(Keywords, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf(
			"create intent: at least one keyword required: %w",
			core.ErrInvalidInput,
		)
	}

	intent := &Intent{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Name:     req.Name,
		Keywords: keywords,
		Response: req.Response,
		Priority: DefaultPriority,
		IsActive: true,
	}
	if req.Priority != nil {
		intent.Priority = *req.Priority
	}
	if req.IsActive != nil {
		intent.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, err
	}

	return intent, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Intent, int, error) {
	if params.TenantID == "" {
		return nil, 0, fmt.Errorf("list intents: %w", core.ErrUnauthorized)
	}
	return s.repo.List(ctx, params)
}

// ActiveIntents returns the tenant's active intents in stored order.
func (s *Service) ActiveIntents(
	ctx context.Context,
	tenantID string,
) ([]Intent, error) {
	return s.repo.ListActive(ctx, tenantID)
}

func (s *Service) Counts(ctx context.Context, tenantID string) (Counts, error) {
	return s.repo.Counts(ctx, tenantID)
}
