package cache

import (
	"context"
	"errors"

	"github.com/fjod/takes-and-tastes/internal/domain"
)

type RestaurantCache interface {
	Get(ctx context.Context, id string) (*domain.RestaurantDetail, error)
	Set(ctx context.Context, id string, detail *domain.RestaurantDetail) error
	Delete(ctx context.Context, id string) error
}

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrSessionNotFound = errors.New("session not found")
)
