package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/takes-and-tastes/internal/cache"
	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/repository"
)

type mockRestaurantRepo struct {
	mu          sync.RWMutex
	restaurants map[string]domain.Restaurant
	getCalls    int
	created     []domain.Restaurant
}

func newMockRestaurantRepo(rs ...domain.Restaurant) *mockRestaurantRepo {
	m := &mockRestaurantRepo{restaurants: map[string]domain.Restaurant{}}
	for _, r := range rs {
		m.restaurants[r.ID] = r
	}
	return m
}

func (m *mockRestaurantRepo) List(context.Context, repository.RestaurantFilter) ([]domain.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRestaurantRepo) Get(_ context.Context, id string) (*domain.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	r, ok := m.restaurants[id]
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	return &r, nil
}

func (m *mockRestaurantRepo) Create(_ context.Context, r *domain.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = fmt.Sprintf("r%d", len(m.restaurants)+1)
	m.restaurants[r.ID] = *r
	m.created = append(m.created, *r)
	return nil
}

func (m *mockRestaurantRepo) gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCalls
}

type mockMenuRepo struct {
	mu    sync.RWMutex
	items []domain.MenuItem
}

func (m *mockMenuRepo) ListByRestaurant(_ context.Context, restaurantID, category string) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.MenuItem
	for _, it := range m.items {
		if it.RestaurantID == restaurantID && (category == "" || it.Category == category) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockMenuRepo) Create(_ context.Context, item *domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = fmt.Sprintf("m%d", len(m.items)+1)
	m.items = append(m.items, *item)
	return nil
}

type mockCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.RestaurantDetail
	getErr  error
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]*domain.RestaurantDetail{}}
}

func (m *mockCache) Get(_ context.Context, id string) (*domain.RestaurantDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	d, ok := m.entries[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return d, nil
}

func (m *mockCache) Set(_ context.Context, id string, d *domain.RestaurantDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = d
	return nil
}

func (m *mockCache) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockCache) has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id]
	return ok
}

type mockOrderRepo struct {
	mu        sync.RWMutex
	orders    []domain.Order
	createErr error
}

func (m *mockOrderRepo) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if o.IdempotencyKey != "" {
		for _, existing := range m.orders {
			if existing.UserID == o.UserID && existing.IdempotencyKey == o.IdempotencyKey {
				return repository.ErrDuplicateOrder
			}
		}
	}
	o.ID = fmt.Sprintf("o%d", len(m.orders)+1)
	m.orders = append(m.orders, *o)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) GetByIdempotencyKey(_ context.Context, userID, key string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Order(nil), m.orders...), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
