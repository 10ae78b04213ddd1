package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brickline-erp/brickline-erp/internal/attendance"
	"github.com/brickline-erp/brickline-erp/internal/auth"
	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/sales"
	"github.com/brickline-erp/brickline-erp/internal/shared"
	"github.com/brickline-erp/brickline-erp/internal/users"
	"github.com/brickline-erp/brickline-erp/internal/workers"
	"github.com/brickline-erp/brickline-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	WorkersHandler     *workers.Handler
	AttendanceHandler  *attendance.Handler
	HardwareHandler    *hardware.Handler
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Brickline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.WorkersHandler != nil {
			r.Route("/workers", params.WorkersHandler.MountRoutes)
		}
		if params.AttendanceHandler != nil {
			r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		}
		if params.HardwareHandler != nil {
			r.Route("/hardware", params.HardwareHandler.MountRoutes)
		}
		if params.ProcurementHandler != nil {
			r.Route("/orders", params.ProcurementHandler.MountRoutes)
		}
		if params.SalesHandler != nil {
			r.Route("/sales", params.SalesHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
