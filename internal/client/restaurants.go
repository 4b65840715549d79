package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/takes-and-tastes/internal/domain"
)

type RestaurantFilter struct {
	Category string
	Search   string
	Popular  bool
}

func (f RestaurantFilter) query() map[string]string {
	q := map[string]string{}
	if f.Category != "" && f.Category != "All" {
		q["category"] = f.Category
	}
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.Popular {
		q["popular"] = "true"
	}
	return q
}

func (c *Client) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/restaurants", query: filter.query()})
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Restaurant](env.Data)
}

// GetRestaurant returns a restaurant with its available menu.
func (c *Client) GetRestaurant(ctx context.Context, id string) (*domain.RestaurantDetail, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/restaurants/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	detail, err := decodeData[domain.RestaurantDetail](env.Data)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) GetMenu(ctx context.Context, restaurantID, category string) ([]domain.MenuItem, error) {
	q := map[string]string{}
	if category != "" {
		q["category"] = category
	}
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/restaurants/" + url.PathEscape(restaurantID) + "/menu",
		query:  q,
	})
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.MenuItem](env.Data)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/restaurants/categories/all"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Category](env.Data)
}
