// AngelaMos | 2026
// dto.go

package intent

import (
	"math"
	"time"
)

type CreateIntentRequest struct {
	Name     string   `json:"name"      validate:"required,min=1,max=100"`
	Keywords []string `json:"keywords"  validate:"required,min=1,max=50,dive,required,max=50"`
	Response string   `json:"response"  validate:"required,max=2000"`
	Priority *int     `json:"priority"  validate:"omitempty,min=0,max=100"`
	IsActive *bool    `json:"is_active"`
}

type IntentResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	Response  string    `json:"response"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type ListParams struct {
	TenantID string
	Page     int
	Limit    int
	IsActive *bool
}

const (
	defaultLimit = 10
	maxLimit     = 100
	maxOffset    = math.MaxInt32
)

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if maxPage := maxOffset/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Counts summarizes a tenant's intents.
type Counts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

func ToIntentResponse(i *Intent) IntentResponse {
	keywords := []string(i.Keywords)
	if keywords == nil {
		keywords = []string{}
	}
	return IntentResponse{
		ID:        i.ID,
		TenantID:  i.TenantID,
		Name:      i.Name,
		Keywords:  keywords,
		Response:  i.Response,
		Priority:  i.Priority,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
	}
}

func ToIntentResponseList(intents []Intent) []IntentResponse {
	responses := make([]IntentResponse, 0, len(intents))
	for i := range intents {
		responses = append(responses, ToIntentResponse(&intents[i]))
	}
	return responses
}
