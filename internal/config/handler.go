package config

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granary/granary/internal/platform/httpx"
)

// Handler serves the configuration snapshot. Sits behind auth.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the config routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/config", h.snapshot)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.ClientConfig(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, snapshot)
}
