package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fjod/takes-and-tastes/internal/domain"
)

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type ProfileUpdate struct {
	Name    string                  `json:"name,omitempty"`
	Phone   string                  `json:"phone,omitempty"`
	Address *domain.DeliveryAddress `json:"address,omitempty"`
}

type AuthResult struct {
	Token string
	User  domain.User
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: reg})
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: body})
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me"})
	if err != nil {
		return nil, err
	}
	user, err := decodeData[domain.User](userPayload(env))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	env, err := c.do(ctx, call{method: http.MethodPut, path: "/auth/profile", body: update})
	if err != nil {
		return nil, err
	}
	user, err := decodeData[domain.User](userPayload(env))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userPayload prefers the user field and falls back to data; auth endpoints use either.
func userPayload(env *envelope) json.RawMessage {
	if len(env.User) > 0 && string(env.User) != "null" {
		return env.User
	}
	return env.Data
}

func authResult(env *envelope) (*AuthResult, error) {
	if env.Token == "" {
		return nil, fmt.Errorf("%w: auth response carries no token", domain.ErrNetworkFailure)
	}
	user, err := decodeData[domain.User](userPayload(env))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: env.Token, User: user}, nil
}
