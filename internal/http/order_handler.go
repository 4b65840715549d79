package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/go-chi/chi/v5"
)

const idempotencyHeader = "Idempotency-Key"

type OrderService interface {
	Create(ctx context.Context, userID string, req domain.OrderRequest, idempotencyKey string) (*domain.Order, bool, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, userID, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type OrdersHandler struct {
	svc     OrderService
	timeout time.Duration
}

func NewOrdersHandler(svc OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// POST /api/orders
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := getPrincipal(r.Context())
	if p == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req domain.OrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, created, err := h.svc.Create(ctx, p.UserID, req, r.Header.Get(idempotencyHeader))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respondData(w, status, order)
}

// GET /api/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := getPrincipal(r.Context())
	if p == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	orders, err := h.svc.List(ctx, p.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondList(w, orders)
}

// GET /api/orders/{id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := getPrincipal(r.Context())
	if p == nil {
		respondError(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	order, err := h.svc.Get(ctx, p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}

type statusUpdate struct {
	Status domain.OrderStatus `json:"status"`
}

// PUT /api/orders/{id}/status (admin)
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in statusUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	order, err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), in.Status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// GET /api/orders/admin/all (admin)
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.svc.ListAll(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondList(w, orders)
}
