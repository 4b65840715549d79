package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/takes-and-tastes/internal/domain"
	log "github.com/sirupsen/logrus"
)

// AddResult reports side effects of AddItem.
type AddResult struct {
	// Cleared is set when lines from a previous restaurant were discarded.
	Cleared bool
}

type Option func(*Store)

func WithPolicy(p ConflictPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// Store owns the active cart. Every mutation leaves the cart bound to exactly one
// restaurant when it has lines, and to none when it is empty.
type Store struct {
	mu         sync.Mutex
	restaurant *domain.RestaurantRef
	lines      map[string]domain.LineItem
	order      []string
	version    uint64

	policy ConflictPolicy
	mirror *Mirror
}

func NewStore(mirror *Mirror, opts ...Option) *Store {
	s := &Store{
		lines:  make(map[string]domain.LineItem),
		policy: PolicyReject,
		mirror: mirror,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with whatever the mirror holds. A mirror that is
// only partly present, or fails to parse, yields an empty cart.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.mirror.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if !state.IsEmpty() {
		ref := *state.Restaurant
		s.restaurant = &ref
		for _, l := range state.Lines {
			s.lines[l.ItemID] = l
			s.order = append(s.order, l.ItemID)
		}
	}
	log.WithFields(log.Fields{
		"lines":      len(s.order),
		"restaurant": restaurantID(s.restaurant),
	}).Debug("cart restored")
	return nil
}

func (s *Store) AddItem(item domain.MenuItem, restaurant domain.RestaurantRef, quantity int) (AddResult, error) {
	return s.add(item, restaurant, quantity, s.policy)
}

// AddItemReplacing adds like AddItem under PolicyReplace, whatever the store's policy.
// A cart from another restaurant is only discarded once the item has been accepted.
func (s *Store) AddItemReplacing(item domain.MenuItem, restaurant domain.RestaurantRef, quantity int) (AddResult, error) {
	return s.add(item, restaurant, quantity, PolicyReplace)
}

func (s *Store) add(item domain.MenuItem, restaurant domain.RestaurantRef, quantity int, policy ConflictPolicy) (AddResult, error) {
	if item.ID == "" || restaurant.ID == "" {
		return AddResult{}, ErrInvalidItem
	}
	if item.RestaurantID != "" && item.RestaurantID != restaurant.ID {
		return AddResult{}, ErrInvalidItem
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result AddResult
	if s.restaurant != nil && s.restaurant.ID != restaurant.ID {
		if policy != PolicyReplace {
			return AddResult{}, fmt.Errorf("%w: %s", ErrConflictingRestaurant, s.restaurant.Name)
		}
		log.WithFields(log.Fields{
			"from": s.restaurant.ID,
			"to":   restaurant.ID,
		}).Info("different restaurant, starting a new cart")
		s.reset()
		result.Cleared = true
	}

	if line, ok := s.lines[item.ID]; ok {
		line.Quantity += quantity
		s.lines[item.ID] = line
	} else {
		s.lines[item.ID] = domain.LineItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			ImageRef:  item.Image,
			Quantity:  quantity,
		}
		s.order = append(s.order, item.ID)
	}

	if s.restaurant == nil {
		ref := restaurant
		s.restaurant = &ref
	}

	s.committed()
	return result, nil
}

// UpdateQuantity sets an absolute quantity. Anything below one removes the line.
func (s *Store) UpdateQuantity(itemID string, quantity int) error {
	if quantity < 1 {
		s.RemoveItem(itemID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[itemID]
	if !ok {
		return ErrItemNotFound
	}
	if line.Quantity == quantity {
		return nil
	}
	line.Quantity = quantity
	s.lines[itemID] = line
	s.committed()
	return nil
}

func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[itemID]; !ok {
		return
	}
	delete(s.lines, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.lines) == 0 {
		s.restaurant = nil
	}
	s.committed()
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.committed()
}

func (s *Store) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fee float64
	if s.restaurant != nil {
		fee = s.restaurant.DeliveryFee
	}
	return domain.ComputeTotals(s.snapshotLines(), fee, 0)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Store) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Version changes on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Flush waits until every mutation so far has reached the mirror.
func (s *Store) Flush(ctx context.Context) error {
	return s.mirror.Flush(ctx)
}

// Close flushes pending mirror writes and stops the writer.
func (s *Store) Close() {
	s.mirror.Close()
}

func (s *Store) reset() {
	s.restaurant = nil
	s.lines = make(map[string]domain.LineItem)
	s.order = nil
}

// committed must be called with mu held.
func (s *Store) committed() {
	s.version++
	s.mirror.Enqueue(s.snapshot())
}

func (s *Store) snapshot() domain.CartState {
	var state domain.CartState
	if s.restaurant != nil {
		ref := *s.restaurant
		state.Restaurant = &ref
	}
	state.Lines = s.snapshotLines()
	return state
}

func (s *Store) snapshotLines() []domain.LineItem {
	lines := make([]domain.LineItem, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, s.lines[id])
	}
	return lines
}

func restaurantID(r *domain.RestaurantRef) string {
	if r == nil {
		return ""
	}
	return r.ID
}
