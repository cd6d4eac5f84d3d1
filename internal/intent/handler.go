// AngelaMos | 2026
// handler.go

package intent

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /intents on an already authenticated router.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	editors func(http.Handler) http.Handler,
) {
	r.Route("/intents", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(editors).Post("/", h.Create)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		TenantID: middleware.GetTenantID(r.Context()),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", defaultLimit),
	}

	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "is_active must be true or false")
			return
		}
		params.IsActive = &active
	}
	params.Normalize()

	intents, total, err := h.service.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToIntentResponseList(intents), params.Page, params.Limit, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	intent, err := h.service.Create(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		req,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnauthorized):
			core.Unauthorized(w, "")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "at least one keyword is required")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToIntentResponse(intent))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
