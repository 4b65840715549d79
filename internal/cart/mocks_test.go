package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/storage"
)

type mockKV struct {
	m      sync.RWMutex
	data   map[string][]byte
	err    error
	writes int
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (k *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	k.m.RLock()
	defer k.m.RUnlock()
	if k.err != nil {
		return nil, k.err
	}
	v, ok := k.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return v, nil
}

func (k *mockKV) Set(_ context.Context, key string, value []byte) error {
	k.m.Lock()
	defer k.m.Unlock()
	if k.err != nil {
		return k.err
	}
	k.writes++
	k.data[key] = value
	return nil
}

func (k *mockKV) Delete(_ context.Context, keys ...string) error {
	k.m.Lock()
	defer k.m.Unlock()
	if k.err != nil {
		return k.err
	}
	k.writes++
	for _, key := range keys {
		delete(k.data, key)
	}
	return nil
}

func (k *mockKV) has(key string) bool {
	k.m.RLock()
	defer k.m.RUnlock()
	_, ok := k.data[key]
	return ok
}

func (k *mockKV) get(key string) string {
	k.m.RLock()
	defer k.m.RUnlock()
	return string(k.data[key])
}

func (k *mockKV) writeCount() int {
	k.m.RLock()
	defer k.m.RUnlock()
	return k.writes
}

func (k *mockKV) setErr(err error) {
	k.m.Lock()
	defer k.m.Unlock()
	k.err = err
}

var errStorageDown = errors.New("storage down")

var (
	savour = domain.RestaurantRef{ID: "r-savour", Name: "Savour Foods", DeliveryFee: 50, DeliveryTime: "30-40 min"}
	kfc    = domain.RestaurantRef{ID: "r-kfc", Name: "KFC", DeliveryFee: 80, DeliveryTime: "20-30 min"}

	pulao  = domain.MenuItem{ID: "m-pulao", RestaurantID: savour.ID, Name: "Pulao Kebab", Price: 100, Image: "pulao.png"}
	raita  = domain.MenuItem{ID: "m-raita", RestaurantID: savour.ID, Name: "Raita", Price: 50}
	zinger = domain.MenuItem{ID: "m-zinger", RestaurantID: kfc.ID, Name: "Zinger", Price: 600}
	krunch = domain.MenuItem{ID: "m-krunch", RestaurantID: kfc.ID, Name: "Krunch", Price: 350}
)
