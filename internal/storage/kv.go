package storage

import (
	"context"
	"errors"
)

// KV is durable key-value storage for client-side state: the cart mirror, the
// pending order attempt and the auth token cache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

var ErrKeyNotFound = errors.New("key not found")

const (
	KeyCart           = "cart"
	KeyCartRestaurant = "cartRestaurant"
	KeyUserToken      = "userToken"
	KeyUserData       = "userData"
	KeyPendingOrder   = "pendingOrder"
)
