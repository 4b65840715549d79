package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/metrics"
	"github.com/fjod/takes-and-tastes/internal/repository"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidOrder   = errors.New("please provide all required fields")
	ErrTotalsMismatch = errors.New("order totals do not match its items")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrNotOwner       = errors.New("not authorized to view this order")
)

const (
	defaultDeliveryFee  = 50
	defaultDeliveryTime = "30-40 min"
	defaultCountry      = "Pakistan"
)

type OrderService struct {
	orders      repository.OrderRepository
	restaurants repository.RestaurantRepository
}

func NewOrderService(orders repository.OrderRepository, restaurants repository.RestaurantRepository) *OrderService {
	return &OrderService{orders: orders, restaurants: restaurants}
}

// Create places an order for userID. When idempotencyKey matches an order this
// user already placed, that order is returned with created=false and nothing new
// is stored.
func (s *OrderService) Create(ctx context.Context, userID string, req domain.OrderRequest, idempotencyKey string) (order *domain.Order, created bool, err error) {
	if err := validateRequest(req); err != nil {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, false, err
	}

	if idempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			metrics.OrdersTotal.WithLabelValues("duplicate").Inc()
			return existing, false, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, false, err
		}
	}

	restaurant, err := s.restaurants.Get(ctx, req.Restaurant)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, false, err
	}

	fee := float64(defaultDeliveryFee)
	switch {
	case req.DeliveryFee != nil:
		fee = *req.DeliveryFee
	case restaurant.DeliveryFee > 0:
		fee = restaurant.DeliveryFee
	}
	// the stored total is always the one the client showed
	totals := domain.ComputeTotals(req.Items, fee, req.Discount)
	if !domain.SameAmount(totals.Total, req.TotalAmount) {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, false, fmt.Errorf("%w: expected total %.2f with a delivery fee of %.2f", ErrTotalsMismatch, totals.Total, fee)
	}

	payment := req.PaymentMethod
	if payment == "" {
		payment = domain.PaymentCash
	}
	address := req.DeliveryAddress
	address.Street = strings.TrimSpace(address.Street)
	address.City = strings.TrimSpace(address.City)
	if address.Country == "" {
		address.Country = defaultCountry
	}
	eta := restaurant.DeliveryTime
	if eta == "" {
		eta = defaultDeliveryTime
	}

	order = &domain.Order{
		UserID:                userID,
		RestaurantID:          restaurant.ID,
		RestaurantName:        restaurant.Name,
		Items:                 req.Items,
		DeliveryAddress:       address,
		PaymentMethod:         payment,
		Subtotal:              totals.Subtotal,
		DeliveryFee:           totals.DeliveryFee,
		Discount:              totals.Discount,
		TotalAmount:           totals.Total,
		Status:                domain.OrderStatusPending,
		EstimatedDeliveryTime: eta,
		Notes:                 req.Notes,
		IdempotencyKey:        idempotencyKey,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			// lost a race with a concurrent retry carrying the same key
			existing, getErr := s.orders.GetByIdempotencyKey(ctx, userID, idempotencyKey)
			if getErr != nil {
				return nil, false, getErr
			}
			metrics.OrdersTotal.WithLabelValues("duplicate").Inc()
			return existing, false, nil
		}
		return nil, false, err
	}

	metrics.OrdersTotal.WithLabelValues("created").Inc()
	metrics.OrderAmount.Observe(order.TotalAmount)
	log.WithFields(log.Fields{
		"order_id":   order.ID,
		"user_id":    userID,
		"restaurant": restaurant.ID,
		"total":      order.TotalAmount,
	}).Info("order created")
	return order, true, nil
}

func (s *OrderService) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Get returns an order owned by userID. Other users' orders yield ErrNotOwner.
func (s *OrderService) Get(ctx context.Context, userID, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}
	return order, nil
}

// UpdateStatus sets an order's status. An empty status leaves the order as it is.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if status == "" {
		return s.orders.GetByID(ctx, id)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"order_id": id, "status": status}).Info("order status updated")
	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func validateRequest(req domain.OrderRequest) error {
	if req.Restaurant == "" || len(req.Items) == 0 ||
		strings.TrimSpace(req.DeliveryAddress.Street) == "" ||
		strings.TrimSpace(req.DeliveryAddress.City) == "" {
		return ErrInvalidOrder
	}
	for _, it := range req.Items {
		if it.MenuItem == "" || it.Quantity < 1 || it.Price < 0 {
			return fmt.Errorf("%w: every item needs a menu item, a quantity of at least 1 and a price", ErrInvalidOrder)
		}
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, req.PaymentMethod)
	}
	if (req.DeliveryFee != nil && *req.DeliveryFee < 0) || req.Discount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidOrder)
	}

	subtotal := domain.ComputeTotals(req.Items, 0, 0).Subtotal
	if !domain.SameAmount(subtotal, req.Subtotal) {
		return fmt.Errorf("%w: expected subtotal %.2f", ErrTotalsMismatch, subtotal)
	}
	return nil
}
