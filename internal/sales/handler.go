package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/rbac"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Handler wires HTTP endpoints for the sale lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs a sales handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbacMW}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.Authenticate)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleSales, shared.RoleCashier, shared.RoleFinance))
		r.Get("/products", h.listProducts)
		r.Get("/", h.listSales)
		r.Get("/{id}", h.getSale)
		r.Get("/{id}/receipts/{index}", h.getReceipt)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleSales))
		r.Post("/quotations", h.createQuotation)
		r.Post("/{id}/convert", h.convertToInvoice)
		r.Post("/{id}/cancel", h.cancelSale)
		r.Put("/{id}/delivery", h.updateDelivery)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin, shared.RoleSales, shared.RoleCashier))
		r.Post("/{id}/payments", h.recordPayment)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := hardware.ListItemsRequest{Page: 1, PerPage: 20}
	if v := q.Get("category"); v != "" {
		req.Category = &v
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		req.PerPage = v
	}

	items, total, err := h.service.ListProducts(r.Context(), req)
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(items),
		"products":   items,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListSalesRequest{Page: 1, PerPage: 20}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("date_from")); err == nil {
		req.DateFrom = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("date_to")); err == nil {
		end := v.AddDate(0, 0, 1)
		req.DateTo = &end
	}
	if v, err := strconv.ParseInt(q.Get("hardware_id"), 10, 64); err == nil && v > 0 {
		req.HardwareID = &v
	}
	if v := q.Get("customer"); v != "" {
		req.Customer = &v
	}
	if v, err := strconv.ParseInt(q.Get("created_by"), 10, 64); err == nil && v > 0 {
		req.CreatedBy = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		req.PerPage = v
	}

	actor, _ := shared.ActorFromContext(r.Context())
	sales, total, err := h.service.ListSalesHistory(r.Context(), req, actor)
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(sales),
		"sales":      sales,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.GetSale(r.Context(), id, actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid receipt index")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	receipt, err := h.service.GenerateReceipt(r.Context(), id, index, actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"receipt": receipt})
}

func (h *Handler) createQuotation(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.CreateQuotation(r.Context(), req, actor.ID)
	if err != nil {
		h.logger.Error("create quotation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (h *Handler) convertToInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.ConvertToInvoice(r.Context(), id, actor.ID)
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			httpx.Problem(w, http.StatusConflict, "Insufficient Stock", stockErr.Error())
			return
		}
		h.logger.Error("convert sale failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, payment, err := h.service.RecordPayment(r.Context(), id, req, actor.ID)
	if err != nil {
		h.logger.Error("record payment failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale": sale, "payment": payment})
}

func (h *Handler) cancelSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.CancelSale(r.Context(), id, actor.ID)
	if err != nil {
		h.logger.Error("cancel sale failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (h *Handler) updateDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	var req UpdateDeliveryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.UpdateDeliveryStatus(r.Context(), id, req, actor.ID)
	if err != nil {
		h.logger.Error("update delivery failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}
