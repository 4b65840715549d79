package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/storage"
	log "github.com/sirupsen/logrus"
)

const defaultWriteTimeout = 2 * time.Second

// Mirror copies cart snapshots to durable storage for restart recovery. A single
// worker applies snapshots in the order they were enqueued; an unwritten snapshot
// is superseded by a newer one, so two writes never interleave.
type Mirror struct {
	kv           storage.KV
	writeTimeout time.Duration

	mu      sync.Mutex
	pending *domain.CartState

	notify   chan struct{}
	flushReq chan chan struct{}
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewMirror(kv storage.KV) *Mirror {
	m := &Mirror{
		kv:           kv,
		writeTimeout: defaultWriteTimeout,
		notify:       make(chan struct{}, 1),
		flushReq:     make(chan chan struct{}),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue schedules state to be written. It never blocks on storage.
func (m *Mirror) Enqueue(state domain.CartState) {
	m.mu.Lock()
	m.pending = &state
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Mirror) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case m.flushReq <- ack:
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) Close() {
	m.once.Do(func() {
		close(m.quit)
	})
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)
	for {
		select {
		case <-m.notify:
			m.writePending()
		case ack := <-m.flushReq:
			m.writePending()
			close(ack)
		case <-m.quit:
			m.writePending()
			return
		}
	}
}

func (m *Mirror) writePending() {
	m.mu.Lock()
	state := m.pending
	m.pending = nil
	m.mu.Unlock()

	if state == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
	defer cancel()
	if err := m.write(ctx, *state); err != nil {
		log.WithError(err).Warn("cart mirror write failed")
	}
}

func (m *Mirror) write(ctx context.Context, state domain.CartState) error {
	if state.IsEmpty() {
		return m.kv.Delete(ctx, storage.KeyCart, storage.KeyCartRestaurant)
	}

	lines, err := json.Marshal(state.Lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines failed: %w", err)
	}
	restaurant, err := json.Marshal(state.Restaurant)
	if err != nil {
		return fmt.Errorf("marshal cart restaurant failed: %w", err)
	}

	if err := m.kv.Set(ctx, storage.KeyCart, lines); err != nil {
		return err
	}
	return m.kv.Set(ctx, storage.KeyCartRestaurant, restaurant)
}

// Load reads the mirrored cart. Storage errors are returned; a missing, partial or
// corrupt mirror is reported as an empty cart.
func (m *Mirror) Load(ctx context.Context) (domain.CartState, error) {
	rawLines, linesErr := m.kv.Get(ctx, storage.KeyCart)
	if linesErr != nil && !errors.Is(linesErr, storage.ErrKeyNotFound) {
		return domain.CartState{}, fmt.Errorf("failed to load cart lines: %w", linesErr)
	}
	rawRestaurant, restErr := m.kv.Get(ctx, storage.KeyCartRestaurant)
	if restErr != nil && !errors.Is(restErr, storage.ErrKeyNotFound) {
		return domain.CartState{}, fmt.Errorf("failed to load cart restaurant: %w", restErr)
	}

	if linesErr != nil && restErr != nil {
		return domain.CartState{}, nil
	}
	if linesErr != nil || restErr != nil {
		log.Warn("cart mirror is partial, starting with an empty cart")
		return domain.CartState{}, nil
	}

	state, err := decodeState(rawLines, rawRestaurant)
	if err != nil {
		log.WithError(err).Warn("cart mirror is corrupt, starting with an empty cart")
		return domain.CartState{}, nil
	}
	return state, nil
}

func decodeState(rawLines, rawRestaurant []byte) (domain.CartState, error) {
	var lines []domain.LineItem
	if err := json.Unmarshal(rawLines, &lines); err != nil {
		return domain.CartState{}, fmt.Errorf("unmarshal cart lines failed: %w", err)
	}
	var restaurant *domain.RestaurantRef
	if err := json.Unmarshal(rawRestaurant, &restaurant); err != nil {
		return domain.CartState{}, fmt.Errorf("unmarshal cart restaurant failed: %w", err)
	}

	if len(lines) == 0 && restaurant == nil {
		return domain.CartState{}, nil
	}
	if len(lines) == 0 || restaurant == nil || restaurant.ID == "" {
		return domain.CartState{}, errors.New("cart lines and restaurant disagree")
	}

	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.ItemID == "" || l.Quantity < 1 {
			return domain.CartState{}, fmt.Errorf("invalid cart line %q", l.ItemID)
		}
		if _, dup := seen[l.ItemID]; dup {
			return domain.CartState{}, fmt.Errorf("duplicate cart line %q", l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
	}
	return domain.CartState{Restaurant: restaurant, Lines: lines}, nil
}
