package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/granary/granary/internal/platform/httpx"
)

// ConfigSource supplies the configuration snapshot embedded in auth
// responses so the client renders its pickers without a second round trip.
type ConfigSource interface {
	AuthConfig(ctx context.Context) (map[string]any, error)
}

// Handler serves registration and token endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	configs   ConfigSource
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, configs ConfigSource) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		configs:   configs,
		validator: validator.New(),
	}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/token", h.issueToken)
}

type registerForm struct {
	Phone    string `json:"phone" validate:"required"`
	OpenID   string `json:"openid" validate:"required"`
	Passcode string `json:"passcode" validate:"required,min=4"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "手机号、openid 和 passcode 均不能为空")
		return
	}

	user, token, err := h.service.Register(r.Context(), RegisterInput{
		Phone:    form.Phone,
		OpenID:   form.OpenID,
		Passcode: form.Passcode,
		IP:       r.RemoteAddr,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondWithToken(w, r, user, token)
}

type tokenForm struct {
	OpenID   string `json:"openid" validate:"required"`
	Passcode string `json:"passcode" validate:"required"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var form tokenForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "openid 和 passcode 均不能为空")
		return
	}

	user, token, err := h.service.IssueToken(r.Context(), LoginInput{
		OpenID:   form.OpenID,
		Passcode: form.Passcode,
		IP:       r.RemoteAddr,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondWithToken(w, r, user, token)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, user *User, token string) {
	snapshot, err := h.configs.AuthConfig(r.Context())
	if err != nil {
		h.logger.Warn("load auth config snapshot", slog.Any("error", err))
		snapshot = map[string]any{}
	}
	httpx.OK(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"phone": user.Phone,
		},
		"config": snapshot,
	})
}
