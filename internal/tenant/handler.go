// AngelaMos | 2026
// handler.go

package tenant

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tenants", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/current", h.GetCurrent)
	})
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.service.Get(r.Context(), middleware.GetTenantID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnauthorized):
			core.Unauthorized(w, "")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "tenant")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToTenantResponse(tenant))
}
