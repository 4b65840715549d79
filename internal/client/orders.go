package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/takes-and-tastes/internal/domain"
)

const IdempotencyHeader = "Idempotency-Key"

// CreateOrder submits an order. Retrying with the same key returns the order the
// first attempt created instead of placing a second one.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.Order, error) {
	cl := call{method: http.MethodPost, path: "/orders", body: req}
	if idempotencyKey != "" {
		cl.header = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	order, err := decodeData[domain.Order](env.Data)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the signed-in user's orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/orders"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Order](env.Data)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/orders/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	order, err := decodeData[domain.Order](env.Data)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
