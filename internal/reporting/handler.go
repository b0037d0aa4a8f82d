package reporting

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/granary/granary/internal/platform/httpx"
	"github.com/granary/granary/internal/shared"
)

// Handler serves the read-only reporting endpoints. All routes sit behind
// auth.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/outbound-list", h.outboundList)
	r.Get("/io-stats", h.ioStats)
	r.Get("/io-details", h.ioDetails)
	r.Get("/my-inbound", h.myInbound)
	r.Get("/my-outbound", h.myOutbound)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Overview(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"items": items})
}

func (h *Handler) outboundList(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.OutboundOptions(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"items": options})
}

func (h *Handler) ioStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.service.IOStats(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"stats": stats})
}

func (h *Handler) ioDetails(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	itemType := r.URL.Query().Get("itemType")
	if itemType == "" {
		httpx.Fail(w, "物品类型不能为空")
		return
	}
	kind := ParseMovementKind(r.URL.Query().Get("type"))

	details, err := h.service.IODetails(r.Context(), itemType, start, end, kind)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"details": details})
}

func (h *Handler) myInbound(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	items, hasMore, err := h.service.MyInbound(r.Context(), id.UserID, pageRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"items": items, "hasMore": hasMore})
}

func (h *Handler) myOutbound(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	items, hasMore, err := h.service.MyOutbound(r.Context(), id.UserID, pageRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"items": items, "hasMore": hasMore})
}

func dateRange(r *http.Request) (start, end time.Time, err error) {
	start, err = shared.ParseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		return
	}
	end, err = shared.ParseDate(r.URL.Query().Get("endDate"))
	return
}

func pageRequest(r *http.Request) shared.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return shared.PageRequest{Page: page, Limit: limit}
}
