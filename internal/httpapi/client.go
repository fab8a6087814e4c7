// Package httpapi is the single point of outbound HTTP to the e-commerce
// backend. It injects the persisted bearer token, enforces the per-request
// timeout and rate limit, and turns a 401 into a forced logout.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rafaelmeneses/shopfront/internal/tokenstore"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	store   tokenstore.Store
	role    tokenstore.Role
	log     *logrus.Entry

	onUnauthorized func()
}

type Option func(*Client)

// WithRole selects which persisted token backs outgoing requests.
// The default is the customer token.
func WithRole(role tokenstore.Role) Option {
	return func(c *Client) { c.role = role }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), int(perSec)+1)
		}
	}
}

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log.WithField("component", "httpapi") }
}

// OnUnauthorized registers the hook invoked after a 401 clears the token,
// the client-side analogue of a redirect to the login screen.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: 10 * time.Second,
		store:   store,
		role:    tokenstore.RoleCustomer,
		log:     logrus.StandardLogger().WithField("component", "httpapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Role reports which token role this client authenticates as.
func (c *Client) Role() tokenstore.Role { return c.role }

// SetUnauthorizedHook installs the 401 hook after construction, for wiring
// that needs the client to exist first.
func (c *Client) SetUnauthorizedHook(fn func()) { c.onUnauthorized = fn }

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	authed := false
	if token, err := c.store.Token(c.role); err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
		authed = true
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("request failed")
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	// A 401 on a request we authenticated means the session died. A 401 on
	// an anonymous request (bad login credentials) is an ordinary API error.
	if resp.StatusCode == http.StatusUnauthorized && authed {
		if err := c.store.Clear(c.role); err != nil {
			c.log.WithError(err).Warn("failed to clear token after 401")
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
