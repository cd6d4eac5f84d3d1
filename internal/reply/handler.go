// AngelaMos | 2026
// handler.go

package reply

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/light618/linkbot-ai/internal/config"
	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/intent"
	"github.com/light618/linkbot-ai/internal/middleware"
)

type IntentCounter interface {
	Counts(ctx context.Context, tenantID string) (intent.Counts, error)
}

type Handler struct {
	resolver  *Resolver
	counter   IntentCounter
	models    []ModelResponse
	validator *validator.Validate
}

func NewHandler(
	resolver *Resolver,
	counter IntentCounter,
	provider config.ProviderConfig,
) *Handler {
	return &Handler{
		resolver:  resolver,
		counter:   counter,
		models:    modelsFromConfig(provider),
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the AI endpoints on an already authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reply", h.Reply)
	r.Post("/audit", h.Audit)
	r.Get("/models", h.Models)
	r.Get("/stats", h.Stats)
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}

	result := h.resolver.Resolve(r.Context(), Request{
		Message:        req.Message,
		TenantID:       middleware.GetTenantID(r.Context()),
		UserID:         userID,
		ConversationID: req.ConversationID,
		ChannelID:      req.ChannelID,
	})

	core.OK(w, result)
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	core.OK(w, h.resolver.Audit(req.Content))
}

func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ModelsResponse{Models: h.models})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counter.Counts(r.Context(), middleware.GetTenantID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, statsResponse(counts, h.models, h.resolver.Stats()))
}
