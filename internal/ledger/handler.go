package ledger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/granary/granary/internal/platform/httpx"
	"github.com/granary/granary/internal/shared"
)

// Taxonomy learns item types and unit labels as they flow through inbound,
// so the client pickers stay in sync with actual usage.
type Taxonomy interface {
	RegisterItemType(ctx context.Context, itemType string) error
	RegisterUnit(ctx context.Context, unit string) error
}

// Handler serves the stock movement endpoints. All routes sit behind auth.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	taxonomy  Taxonomy
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, taxonomy Taxonomy) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		taxonomy:  taxonomy,
		validator: validator.New(),
	}
}

// MountRoutes registers the movement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/inbound", h.inbound)
	r.Post("/outbound", h.outboundFIFO)
	r.Post("/outbound/{id}", h.outboundByID)
}

type inboundForm struct {
	ItemType          string `json:"itemType" validate:"required"`
	Unit              string `json:"unit"`
	Quantity          int    `json:"quantity" validate:"required,gt=0"`
	ExpiryDate        string `json:"expiryDate"`
	InboundDate       string `json:"inboundDate" validate:"required"`
	ProductionDate    string `json:"productionDate"`
	ExpiryWarningDays *int   `json:"expiryWarningDays"`
	Tag               string `json:"tag"`
	Location          string `json:"location"`
	Photo             string `json:"photo"`
}

func (h *Handler) inbound(w http.ResponseWriter, r *http.Request) {
	var form inboundForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "物品类型、数量和入库日期均不能为空")
		return
	}

	inboundDate, err := shared.ParseDate(form.InboundDate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	expiryDate, err := shared.ParseOptionalDate(form.ExpiryDate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	id := shared.IdentityFromContext(r.Context())
	lotID, err := h.service.Inbound(r.Context(), InboundInput{
		UserID:            id.UserID,
		ItemType:          form.ItemType,
		Unit:              form.Unit,
		Quantity:          form.Quantity,
		ExpiryDate:        expiryDate,
		InboundDate:       inboundDate,
		ProductionDate:    form.ProductionDate,
		ExpiryWarningDays: form.ExpiryWarningDays,
		Tag:               form.Tag,
		Location:          form.Location,
		Photo:             form.Photo,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	// Taxonomy updates are best effort; a failure never unwinds the inbound.
	if err := h.taxonomy.RegisterItemType(r.Context(), form.ItemType); err != nil {
		h.logger.Warn("register item type", slog.Any("error", err))
	}
	if form.Unit != "" {
		if err := h.taxonomy.RegisterUnit(r.Context(), form.Unit); err != nil {
			h.logger.Warn("register unit", slog.Any("error", err))
		}
	}

	httpx.OK(w, map[string]any{"id": lotID})
}

type outboundFIFOForm struct {
	ItemType     string `json:"itemType" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	OutboundDate string `json:"outboundDate" validate:"required"`
}

func (h *Handler) outboundFIFO(w http.ResponseWriter, r *http.Request) {
	var form outboundFIFOForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "物品类型、数量和出库日期均不能为空")
		return
	}

	outboundDate, err := shared.ParseDate(form.OutboundDate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	id := shared.IdentityFromContext(r.Context())
	if err := h.service.OutboundFIFO(r.Context(), OutboundFIFOInput{
		UserID:       id.UserID,
		ItemType:     form.ItemType,
		Quantity:     form.Quantity,
		OutboundDate: outboundDate,
	}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"outbound": true})
}

type outboundByIDForm struct {
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	OutboundDate string `json:"outboundDate" validate:"required"`
}

func (h *Handler) outboundByID(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "id")
	var form outboundByIDForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "数量和出库日期均不能为空")
		return
	}

	outboundDate, err := shared.ParseDate(form.OutboundDate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	id := shared.IdentityFromContext(r.Context())
	if err := h.service.OutboundByID(r.Context(), OutboundByIDInput{
		UserID:       id.UserID,
		LotID:        lotID,
		Quantity:     form.Quantity,
		OutboundDate: outboundDate,
	}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"outbound": true})
}
