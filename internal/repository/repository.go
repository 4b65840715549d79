package repository

import (
	"context"
	"errors"

	"github.com/fjod/takes-and-tastes/internal/domain"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrder     = errors.New("order with this idempotency key already exists")
)

const (
	restaurantsCollection = "restaurants"
	menuItemsCollection   = "menuitems"
	ordersCollection      = "orders"
)

type RestaurantFilter struct {
	Category string
	Search   string
	Popular  bool
}

type RestaurantRepository interface {
	List(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
	Create(ctx context.Context, r *domain.Restaurant) error
}

type MenuRepository interface {
	ListByRestaurant(ctx context.Context, restaurantID, category string) ([]domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
}

type OrderRepository interface {
	// Create stores a new order. An order whose (user, idempotency key) pair
	// already exists fails with ErrDuplicateOrder.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}
