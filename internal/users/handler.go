package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/granary/granary/internal/platform/httpx"
	"github.com/granary/granary/internal/shared"
)

// Handler serves profile and account management endpoints. All routes here
// sit behind the auth middleware.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/user/info", h.info)
	r.Post("/user/passcode", h.changePasscode)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/admin/users", h.list)
		r.Post("/admin/users", h.create)
		r.Put("/admin/users/{id}", h.update)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := shared.IdentityFromContext(r.Context())
		if id == nil || !h.service.IsAdmin(id.Name) {
			httpx.Deny(w, http.StatusForbidden, "无权限执行该操作")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userPayload(u *User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"phone":      u.Phone,
		"status":     u.Status,
		"createTime": u.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	user, err := h.service.Profile(r.Context(), id.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, userPayload(user))
}

type passcodeForm struct {
	OldPasscode string `json:"oldPasscode" validate:"required"`
	NewPasscode string `json:"newPasscode" validate:"required,min=4"`
}

func (h *Handler) changePasscode(w http.ResponseWriter, r *http.Request) {
	var form passcodeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "passcode 不能为空且不少于 4 位")
		return
	}

	id := shared.IdentityFromContext(r.Context())
	if err := h.service.ChangePasscode(r.Context(), id.UserID, form.OldPasscode, form.NewPasscode); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"updated": true})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.List(r.Context(), shared.PageRequest{Page: page, Limit: limit})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	users := make([]map[string]any, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, userPayload(&result.Users[i]))
	}
	httpx.OK(w, map[string]any{"users": users, "total": result.Total})
}

type createForm struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form createForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, "姓名和手机号均不能为空")
		return
	}

	user, err := h.service.Create(r.Context(), CreateInput(form))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, userPayload(user))
}

type updateForm struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, "无效的用户 ID")
		return
	}
	var form updateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, "请求格式错误")
		return
	}
	if err := h.service.Update(r.Context(), id, UpdateInput(form)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"updated": true})
}
