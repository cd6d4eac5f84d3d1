// AngelaMos | 2026
// entity.go

package intent

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Intent is a keyword-triggered canned reply. Priority is informational
// and never changes match order.
type Intent struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Name      string    `db:"name"`
	Keywords  Keywords  `db:"keywords"`
	Response  string    `db:"response"`
	Priority  int       `db:"priority"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// Keywords is stored as a JSONB array.
type Keywords []string

func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}
	return string(b), nil
}

func (k *Keywords) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*k = Keywords{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan keywords: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan keywords: %w", err)
	}
	*k = out
	return nil
}

const DefaultPriority = 1
