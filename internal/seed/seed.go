// AngelaMos | 2026
// seed.go

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/intent"
	"github.com/light618/linkbot-ai/internal/tenant"
	"github.com/light618/linkbot-ai/internal/user"
)

const (
	DemoTenantID = "tenant-1"

	// demoPasswordHash is bcrypt cost 10 of "password".
	demoPasswordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"
)

type Stores struct {
	Tenants tenant.Repository
	Users   user.Repository
	Intents intent.Repository
}

// Demo loads the demo tenant, its admin and operator accounts and two
// intents. It does nothing when the demo tenant already exists.
func Demo(ctx context.Context, stores Stores, now time.Time) error {
	_, err := stores.Tenants.GetByID(ctx, DemoTenantID)
	if err == nil {
		slog.Debug("demo data already present, skipping seed")
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("seed: look up demo tenant: %w", err)
	}

	if err := stores.Tenants.Create(ctx, &tenant.Tenant{
		ID:        DemoTenantID,
		Name:      "LinkBot-AI 演示企业",
		Domain:    "demo.linkbot-ai.com",
		Plan:      tenant.PlanPro,
		Status:    tenant.StatusActive,
		ExpiresAt: now.Add(tenant.TrialPeriod),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("seed: create tenant: %w", err)
	}

	users := []user.User{
		{
			ID:       "1",
			Username: "admin",
			Email:    "admin@linkbot-ai.com",
			Role:     user.RoleAdmin,
		},
		{
			ID:       "2",
			Username: "operator",
			Email:    "operator@linkbot-ai.com",
			Role:     user.RoleOperator,
		},
	}
	for i := range users {
		u := &users[i]
		u.PasswordHash = demoPasswordHash
		u.TenantID = DemoTenantID
		u.Status = user.StatusActive
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := stores.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed: create user %s: %w", u.Username, err)
		}
	}

	intents := []intent.Intent{
		{
			ID:       "1",
			Name:     "价格咨询",
			Keywords: intent.Keywords{"价格", "多少钱", "费用", "成本"},
			Response: "我们的产品价格根据配置不同，从299元到1999元不等。您需要哪种配置呢？",
			Priority: 1,
		},
		{
			ID:       "2",
			Name:     "产品介绍",
			Keywords: intent.Keywords{"介绍", "功能", "特点", "优势"},
			Response: "我们的产品具有以下特点：1. 高效稳定 2. 易于使用 3. 性价比高。您想了解哪个方面？",
			Priority: 2,
		},
	}
	for i := range intents {
		in := &intents[i]
		in.TenantID = DemoTenantID
		in.IsActive = true
		in.CreatedAt = now
		if err := stores.Intents.Create(ctx, in); err != nil {
			return fmt.Errorf("seed: create intent %s: %w", in.Name, err)
		}
	}

	slog.Info("demo data seeded",
		"tenant_id", DemoTenantID,
		"users", len(users),
		"intents", len(intents),
	)

	return nil
}
