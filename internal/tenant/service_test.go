// AngelaMos | 2026
// service_test.go

package tenant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/core"
)

func TestService_CreateTrialTenant(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	info, err := svc.Create(context.Background(), auth.NewTenant{
		Name:   "alice的企业",
		Domain: "alice.linkbot-ai.com",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.ID, "tenant-"))
	assert.Equal(t, PlanBasic, info.Plan)
	assert.Equal(t, StatusActive, info.Status)
	assert.Equal(t, now.Add(30*24*time.Hour), info.ExpiresAt)

	stored, err := svc.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice.linkbot-ai.com", stored.Domain)
	assert.True(t, stored.IsActive())

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_GetErrors(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.GetByID(context.Background(), "tenant-404")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryRepository_Duplicate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Tenant{ID: "tenant-1"}))
	assert.ErrorIs(t, repo.Create(ctx, &Tenant{ID: "tenant-1"}), core.ErrDuplicateKey)
}
