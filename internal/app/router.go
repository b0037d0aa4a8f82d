package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/granary/granary/internal/auth"
	"github.com/granary/granary/internal/config"
	"github.com/granary/granary/internal/ledger"
	"github.com/granary/granary/internal/observability"
	"github.com/granary/granary/internal/reporting"
	"github.com/granary/granary/internal/upload"
	"github.com/granary/granary/internal/users"
	"github.com/granary/granary/internal/wechat"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	WechatHandler    *wechat.Handler
	UsersHandler     *users.Handler
	ConfigHandler    *config.Handler
	LedgerHandler    *ledger.Handler
	ReportingHandler *reporting.Handler
	UploadHandler    *upload.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Granary defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes: registration and login flow.
		params.AuthHandler.MountRoutes(r)
		if params.WechatHandler != nil {
			params.WechatHandler.MountRoutes(r)
		}

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(params.AuthService.RequireAuth)
			params.UsersHandler.MountRoutes(r)
			params.ConfigHandler.MountRoutes(r)
			params.LedgerHandler.MountRoutes(r)
			params.ReportingHandler.MountRoutes(r)
			params.UploadHandler.MountRoutes(r)
		})
	})

	if params.Config != nil {
		r.Mount("/uploads/", upload.FileServer(params.Config.UploadDir))
	}

	return r
}
