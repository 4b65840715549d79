package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/repository"
	"github.com/go-chi/chi/v5"
)

type RestaurantService interface {
	List(ctx context.Context, filter repository.RestaurantFilter) ([]domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.RestaurantDetail, error)
	Menu(ctx context.Context, restaurantID, category string) ([]domain.MenuItem, error)
	Categories() []domain.Category
	Create(ctx context.Context, r *domain.Restaurant) error
	CreateMenuItem(ctx context.Context, restaurantID string, item *domain.MenuItem) error
}

type RestaurantHandler struct {
	svc     RestaurantService
	timeout time.Duration
}

func NewRestaurantHandler(svc RestaurantService, timeout time.Duration) *RestaurantHandler {
	return &RestaurantHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// GET /api/restaurants?category=&search=&popular=true
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	restaurants, err := h.svc.List(ctx, repository.RestaurantFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Popular:  q.Get("popular") == "true",
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondList(w, restaurants)
}

// GET /api/restaurants/categories/all
func (h *RestaurantHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.svc.Categories())
}

// GET /api/restaurants/{id}
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	detail, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if detail.MenuItems == nil {
		detail.MenuItems = []domain.MenuItem{}
	}
	respondData(w, http.StatusOK, detail)
}

// GET /api/restaurants/{id}/menu?category=
func (h *RestaurantHandler) Menu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.svc.Menu(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondList(w, items)
}

type restaurantInput struct {
	domain.Restaurant
	IsOpen *bool `json:"isOpen"`
}

// POST /api/restaurants (admin)
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in restaurantInput
	if !decodeBody(w, r, &in) {
		return
	}
	restaurant := in.Restaurant
	restaurant.IsOpen = in.IsOpen == nil || *in.IsOpen

	if err := h.svc.Create(ctx, &restaurant); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, restaurant)
}

// POST /api/restaurants/{id}/menu (admin)
func (h *RestaurantHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// MenuItem decodes itself, so availability is read in a second pass to tell
	// an omitted flag from false.
	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}
	var item domain.MenuItem
	var flags struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	if json.Unmarshal(raw, &item) != nil || json.Unmarshal(raw, &flags) != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	item.IsAvailable = flags.IsAvailable == nil || *flags.IsAvailable

	if err := h.svc.CreateMenuItem(ctx, chi.URLParam(r, "id"), &item); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, item)
}
