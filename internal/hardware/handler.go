package hardware

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

// Handler wires HTTP endpoints for the catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbacMW}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.Authenticate)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleEngineer, shared.RoleFinance, shared.RoleSales))
		r.Get("/", h.listItems)
		r.Get("/{id}", h.getItem)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleEngineer))
		r.Post("/", h.createItem)
		r.Put("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListItemsRequest{Page: 1, PerPage: 20}
	if v := q.Get("category"); v != "" {
		req.Category = &v
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if q.Get("low_stock") == "true" {
		t := true
		req.LowStock = &t
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		req.PerPage = v
	}

	items, total, err := h.service.ListItems(r.Context(), req)
	if err != nil {
		h.logger.Error("list hardware failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(items),
		"items":      items,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": item})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	item, err := h.service.CreateItem(r.Context(), req, actor.ID)
	if err != nil {
		h.logger.Error("create hardware failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}
	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	item, err := h.service.UpdateItem(r.Context(), id, req, actor.ID)
	if err != nil {
		h.logger.Error("update hardware failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": item})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.DeleteItem(r.Context(), id, actor.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
