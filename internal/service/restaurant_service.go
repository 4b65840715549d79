package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fjod/takes-and-tastes/internal/cache"
	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/metrics"
	"github.com/fjod/takes-and-tastes/internal/repository"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidRestaurant = errors.New("invalid restaurant")

var categories = []domain.Category{
	category("Fast Food", "🍔"),
	category("Chinese", "🥡"),
	category("Italian", "🍝"),
	category("Pakistani", "🍛"),
	category("BBQ", "🍖"),
	category("Desserts", "🍰"),
	category("Beverages", "🥤"),
	category("Healthy", "🥗"),
	category("Pizza", "🍕"),
	category("Burgers", "🍔"),
}

var menuCategories = []string{
	"Appetizers", "Main Course", "Desserts", "Beverages", "Sides", "Salads", "Soups", "Specials",
}

func category(name, icon string) domain.Category {
	return domain.Category{Name: name, Icon: &icon}
}

type RestaurantService struct {
	restaurants repository.RestaurantRepository
	menu        repository.MenuRepository
	cache       cache.RestaurantCache
	sfg         singleflight.Group
}

func NewRestaurantService(restaurants repository.RestaurantRepository, menu repository.MenuRepository, c cache.RestaurantCache) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		menu:        menu,
		cache:       c,
	}
}

func (s *RestaurantService) List(ctx context.Context, filter repository.RestaurantFilter) ([]domain.Restaurant, error) {
	return s.restaurants.List(ctx, filter)
}

// Get returns a restaurant with its menu. Concurrent misses for the same id share
// one database read.
func (s *RestaurantService) Get(ctx context.Context, id string) (*domain.RestaurantDetail, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		detail, err := s.cache.Get(ctx, id)
		if err == nil {
			metrics.RestaurantCacheResults.WithLabelValues("hit").Inc()
			return detail, nil
		}
		metrics.RestaurantCacheResults.WithLabelValues("miss").Inc()
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).WithField("restaurant_id", id).Warn("restaurant cache get failed")
		}

		restaurant, err := s.restaurants.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		items, err := s.menu.ListByRestaurant(ctx, id, "")
		if err != nil {
			return nil, err
		}
		detail = &domain.RestaurantDetail{Restaurant: *restaurant, MenuItems: items}

		go func() {
			if err := s.cache.Set(context.Background(), id, detail); err != nil {
				log.WithError(err).WithField("restaurant_id", id).Warn("restaurant cache set failed")
			}
		}()
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.RestaurantDetail), nil
}

func (s *RestaurantService) Menu(ctx context.Context, restaurantID, category string) ([]domain.MenuItem, error) {
	return s.menu.ListByRestaurant(ctx, restaurantID, category)
}

func (s *RestaurantService) Categories() []domain.Category {
	return slices.Clone(categories)
}

// Create validates r, fills the documented defaults and stores it.
func (s *RestaurantService) Create(ctx context.Context, r *domain.Restaurant) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: name and description are required", ErrInvalidRestaurant)
	}
	if r.Category == "" {
		r.Category = "Fast Food"
	}
	if !slices.ContainsFunc(categories, func(c domain.Category) bool { return c.Name == r.Category }) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRestaurant, r.Category)
	}
	if r.DeliveryFee < 0 || r.MinimumOrder < 0 || r.Discount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidRestaurant)
	}
	defaultString(&r.Image, "https://via.placeholder.com/400x300?text=Restaurant")
	defaultString(&r.Logo, "https://via.placeholder.com/150x150?text=Logo")
	defaultString(&r.DeliveryTime, "30-40 min")
	defaultString(&r.OpeningHours, "10:00 AM - 11:00 PM")
	if r.Rating == 0 {
		r.Rating = 4.0
	}
	if r.DeliveryFee == 0 {
		r.DeliveryFee = 50
	}
	return s.restaurants.Create(ctx, r)
}

// CreateMenuItem adds item to an existing restaurant and drops the cached detail.
func (s *RestaurantService) CreateMenuItem(ctx context.Context, restaurantID string, item *domain.MenuItem) error {
	if _, err := s.restaurants.Get(ctx, restaurantID); err != nil {
		return err
	}
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("%w: name and description are required", ErrInvalidRestaurant)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRestaurant)
	}
	if item.Discount < 0 || item.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidRestaurant)
	}
	if !slices.Contains(menuCategories, item.Category) {
		return fmt.Errorf("%w: unknown menu category %q", ErrInvalidRestaurant, item.Category)
	}
	defaultString(&item.Image, "https://via.placeholder.com/300x200?text=Food")
	item.RestaurantID = restaurantID

	if err := s.menu.Create(ctx, item); err != nil {
		return err
	}
	s.invalidate(restaurantID)
	return nil
}

func (s *RestaurantService) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, id); err != nil {
		log.WithError(err).WithField("restaurant_id", id).Warn("restaurant cache invalidate failed")
	}
}

func defaultString(s *string, def string) {
	if strings.TrimSpace(*s) == "" {
		*s = def
	}
}
