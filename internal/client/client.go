package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/metrics"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// TokenSource supplies the bearer token for requests and forgets it when the
// server rejects it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
}

type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*envelope]
	tokens  TokenSource
}

// New creates an API client. baseURL includes the /api prefix. tokens may be nil
// for anonymous use.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		breaker: newBreaker("api"),
		tokens:  tokens,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[*envelope] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// a request the server understood and refused says nothing about its health
		IsSuccessful: func(err error) bool {
			var remote *domain.RemoteError
			if errors.As(err, &remote) {
				return remote.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(state)

			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

type call struct {
	method string
	path   string
	query  map[string]string
	header map[string]string
	body   any
}

func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	req := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			log.WithError(err).Warn("could not read auth token")
		}
		if token != "" {
			req.SetAuthToken(token)
		}
	}
	if cl.query != nil {
		req.SetQueryParams(cl.query)
	}
	if cl.header != nil {
		req.SetHeaders(cl.header)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}

	env, err := c.breaker.Execute(func() (*envelope, error) {
		resp, err := req.Execute(cl.method, cl.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrNetworkFailure, cl.method, cl.path, err)
		}
		return c.decode(ctx, resp)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	if err != nil {
		log.WithFields(log.Fields{"method": cl.method, "path": cl.path}).WithError(err).Debug("api call failed")
		return nil, err
	}
	return env, nil
}

func (c *Client) decode(ctx context.Context, resp *resty.Response) (*envelope, error) {
	status := resp.StatusCode()
	if status == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			log.WithError(err).Warn("failed to clear rejected credentials")
		}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if status >= http.StatusBadRequest {
			return nil, &domain.RemoteError{StatusCode: status}
		}
		// the request may have taken effect; the caller cannot tell
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrNetworkFailure, err)
	}
	if status >= http.StatusBadRequest || !env.Success {
		return nil, &domain.RemoteError{StatusCode: status, Message: env.Message}
	}
	return &env, nil
}

func decodeData[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("%w: response has no data", domain.ErrNetworkFailure)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: decode response: %v", domain.ErrNetworkFailure, err)
	}
	return v, nil
}
