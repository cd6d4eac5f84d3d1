// AngelaMos | 2026
// dto.go

package reply

import (
	"github.com/light618/linkbot-ai/internal/config"
	"github.com/light618/linkbot-ai/internal/intent"
)

type ReplyRequest struct {
	Message        string `json:"message"         validate:"required,max=4000"`
	ConversationID string `json:"conversation_id" validate:"omitempty,max=128"`
	UserID         string `json:"user_id"         validate:"omitempty,max=128"`
	ChannelID      string `json:"channel_id"      validate:"omitempty,max=128"`
}

type AuditRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// ModelResponse describes a configured model. Credentials are never part
// of it.
type ModelResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	IsActive    bool    `json:"is_active"`
}

type ModelsResponse struct {
	Models []ModelResponse `json:"models"`
}

type StatsResponse struct {
	TotalIntents  int   `json:"total_intents"`
	ActiveIntents int   `json:"active_intents"`
	TotalModels   int   `json:"total_models"`
	ActiveModels  int   `json:"active_models"`
	Resolver      Stats `json:"resolver"`
}

const cozeProvider = "coze"

func modelsFromConfig(cfg config.ProviderConfig) []ModelResponse {
	return []ModelResponse{
		{
			ID:          "1",
			Name:        cfg.Name,
			Provider:    cozeProvider,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			IsActive:    cfg.Enabled,
		},
	}
}

func statsResponse(
	counts intent.Counts,
	models []ModelResponse,
	stats Stats,
) StatsResponse {
	active := 0
	for _, m := range models {
		if m.IsActive {
			active++
		}
	}

	return StatsResponse{
		TotalIntents:  counts.Total,
		ActiveIntents: counts.Active,
		TotalModels:   len(models),
		ActiveModels:  active,
		Resolver:      stats,
	}
}
