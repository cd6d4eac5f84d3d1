// AngelaMos | 2026
// entity.go

package tenant

import (
	"time"
)

type Tenant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Domain    string    `db:"domain"`
	Plan      string    `db:"plan"`
	Status    string    `db:"status"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

const (
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
)

// TrialPeriod is how long a self-registered tenant runs before expiring.
const TrialPeriod = 30 * 24 * time.Hour
