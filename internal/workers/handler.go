package workers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/rbac"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Handler wires HTTP endpoints for the worker registry.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs a worker handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbacMW}
}

// MountRoutes registers worker routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.Authenticate)
	r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleEngineer))
	r.Get("/", h.listWorkers)
	r.Post("/", h.registerWorker)
	r.Get("/{id}", h.getWorker)
	r.Put("/{id}", h.updateWorker)
	r.Delete("/{id}", h.deleteWorker)
}

func (h *Handler) listWorkers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListWorkersRequest{Page: 1, PerPage: 20}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v := q.Get("role"); v != "" {
		req.Role = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		req.PerPage = v
	}

	list, total, err := h.service.ListWorkers(r.Context(), req)
	if err != nil {
		h.logger.Error("list workers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(list),
		"workers":    list,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) registerWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	wk, err := h.service.RegisterWorker(r.Context(), req, actor.ID)
	if err != nil {
		h.logger.Error("register worker failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"worker": wk})
}

func (h *Handler) getWorker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid worker id")
		return
	}
	wk, err := h.service.GetWorker(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"worker": wk})
}

func (h *Handler) updateWorker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid worker id")
		return
	}
	var req UpdateWorkerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	wk, err := h.service.UpdateWorker(r.Context(), id, req, actor.ID)
	if err != nil {
		h.logger.Error("update worker failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"worker": wk})
}

func (h *Handler) deleteWorker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid worker id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.DeleteWorker(r.Context(), id, actor.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
