package wechat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granary/granary/internal/platform/httpx"
)

// Handler serves the phone-number resolution endpoint used by the
// registration screen.
type Handler struct {
	logger *slog.Logger
	client *Client
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers the public wechat routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/wechat/login", h.login)
	r.Post("/wechat/get-phone-number", h.getPhoneNumber)
}

type codeForm struct {
	Code string `json:"code"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var form codeForm
	if err := httpx.DecodeJSON(r, &form); err != nil || form.Code == "" {
		httpx.Fail(w, "code 不能为空")
		return
	}
	session, err := h.client.CodeToSession(r.Context(), form.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"openid": session.OpenID})
}

func (h *Handler) getPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var form codeForm
	if err := httpx.DecodeJSON(r, &form); err != nil || form.Code == "" {
		httpx.Fail(w, "code 不能为空")
		return
	}
	phone, err := h.client.GetPhoneNumber(r.Context(), form.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"phoneNumber": phone})
}
