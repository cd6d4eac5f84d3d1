// AngelaMos | 2026
// repository.go

package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/light618/linkbot-ai/internal/core"
)

type Repository interface {
	Create(ctx context.Context, intent *Intent) error
	List(ctx context.Context, params ListParams) ([]Intent, int, error)
	ListActive(ctx context.Context, tenantID string) ([]Intent, error)
	Counts(ctx context.Context, tenantID string) (Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, intent *Intent) error {
	query := `
		INSERT INTO intents (id, tenant_id, name, keywords, response, priority, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &intent.CreatedAt, query,
		intent.ID,
		intent.TenantID,
		intent.Name,
		intent.Keywords,
		intent.Response,
		intent.Priority,
		intent.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create intent: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Intent, int, error) {
	params.Normalize()

	conditions := []string{"tenant_id = $1"}
	args := []any{params.TenantID}
	argIdx := 2

	if params.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.IsActive)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM intents WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count intents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, name, keywords, response, priority, is_active, created_at
		FROM intents
		WHERE %s
		ORDER BY seq ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.Limit, params.Offset())

	var intents []Intent
	if err := r.db.SelectContext(ctx, &intents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list intents: %w", err)
	}

	return intents, total, nil
}

func (r *repository) ListActive(
	ctx context.Context,
	tenantID string,
) ([]Intent, error) {
	query := `
		SELECT id, tenant_id, name, keywords, response, priority, is_active, created_at
		FROM intents
		WHERE tenant_id = $1 AND is_active
		ORDER BY seq ASC`

	var intents []Intent
	if err := r.db.SelectContext(ctx, &intents, query, tenantID); err != nil {
		return nil, fmt.Errorf("list active intents: %w", err)
	}

	return intents, nil
}

func (r *repository) Counts(ctx context.Context, tenantID string) (Counts, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_active) AS active
		FROM intents
		WHERE tenant_id = $1`

	var counts Counts
	row := struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, tenantID); err != nil {
		return counts, fmt.Errorf("count intents: %w", err)
	}

	counts.Total = row.Total
	counts.Active = row.Active
	return counts, nil
}
