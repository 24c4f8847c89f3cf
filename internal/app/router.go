package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/widya-sms/widya-sms/internal/access"
	"github.com/widya-sms/widya-sms/internal/assignment"
	"github.com/widya-sms/widya-sms/internal/auth"
	"github.com/widya-sms/widya-sms/internal/catalog"
	"github.com/widya-sms/widya-sms/internal/observability"
	"github.com/widya-sms/widya-sms/internal/shared"
	"github.com/widya-sms/widya-sms/jobs"
	"github.com/widya-sms/widya-sms/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	AccessHandler     *access.Handler
	AssignmentHandler *assignment.Handler
	CatalogHandler    *catalog.Handler
	ReportHandler     *report.Handler
	JobsHandler       *jobs.Handler
	AccessMiddleware  access.Middleware
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Widya defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
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

	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AccessHandler != nil {
			params.AccessHandler.MountRoutes(r, params.AccessMiddleware)
		}
		if params.AssignmentHandler != nil {
			params.AssignmentHandler.MountRoutes(r, params.AccessMiddleware)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r, params.AccessMiddleware)
		}
		if params.ReportHandler != nil {
			r.Route("/reports", func(r chi.Router) {
				r.Use(params.AccessMiddleware.RequireView(shared.ModuleClasses))
				params.ReportHandler.MountRoutes(r)
			})
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.AccessMiddleware.RequireEdit(shared.ModuleSettings))
				params.JobsHandler.MountRoutes(r)
			})
		}
	})

	return r
}
