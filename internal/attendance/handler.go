package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/rbac"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Handler wires HTTP endpoints for attendance.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs an attendance handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbacMW}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.Authenticate)
	r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleEngineer))
	r.Get("/", h.listRecords)
	r.Post("/", h.mark)
	r.Get("/{id}", h.getRecord)
	r.Put("/{id}", h.updateRecord)
	r.Delete("/{id}", h.deleteRecord)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListRequest{Page: 1, PerPage: 20}
	if v, err := strconv.ParseInt(q.Get("worker_id"), 10, 64); err == nil && v > 0 {
		req.WorkerID = &v
	}
	if v := q.Get("site"); v != "" {
		req.Site = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("date_from")); err == nil {
		req.DateFrom = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("date_to")); err == nil {
		req.DateTo = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		req.PerPage = v
	}

	records, total, err := h.service.ListRecords(r.Context(), req)
	if err != nil {
		h.logger.Error("list attendance failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(records),
		"records":    records,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	rec, err := h.service.Mark(r.Context(), req, actor.ID)
	if err != nil {
		h.logger.Error("mark attendance failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"record": rec})
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid record id")
		return
	}
	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid record id")
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	rec, err := h.service.UpdateRecord(r.Context(), id, req, actor.ID)
	if err != nil {
		h.logger.Error("update attendance failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid record id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.DeleteRecord(r.Context(), id, actor.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
