// Package apiclient is the HTTP client of the EcoRuta backend. It attaches
// the bearer token to every request and renews the access token once when
// the backend answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ecoruta/portal/internal/api/metrics"
	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultTimeout     = 10 * time.Second
	DefaultRefreshPath = "/token/refresh/"

	HeaderRequestID = "X-Request-Id"
)

// Config holds the transport settings of a Client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RefreshPath string
	// HTTPClient overrides the underlying client; Timeout is ignored then.
	HTTPClient *http.Client
}

// Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	baseURL     string
	refreshPath string
	http        *http.Client
	tokens      ports.TokenStore
	log         zerolog.Logger

	refreshes singleflight.Group

	mu        sync.RWMutex
	onExpired []func(error)
}

func New(cfg Config, tokens ports.TokenStore, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = DefaultRefreshPath
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		refreshPath: cfg.RefreshPath,
		http:        hc,
		tokens:      tokens,
		log:         log.With().Str("component", "apiclient").Logger(),
	}
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// OnSessionExpired registers fn to run when the refresh protocol gives up
// and the stored tokens have been cleared.
func (c *Client) OnSessionExpired(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = append(c.onExpired, fn)
}

type requestOptions struct {
	public bool
}

// RequestOption tweaks a single call.
type RequestOption func(*requestOptions)

// Public sends the request without a bearer token and without the refresh
// protocol. Used for login, registration and the refresh call itself.
func Public() RequestOption {
	return func(o *requestOptions) { o.public = true }
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out, opts...)
}

// Do performs one logical request. A 401 on an authenticated request is
// retried at most once, after the access token has been renewed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	target := c.url(path, query)

	var sent string
	if !o.public {
		sent = c.tokens.Access(ctx)
	}

	status, respBody, err := c.send(ctx, method, target, payload, sent)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !o.public {
		rejected := newAPIError(status, respBody)

		token, err := c.renew(ctx, sent, rejected)
		if err != nil {
			return err
		}

		status, respBody, err = c.send(ctx, method, target, payload, token)
		if err != nil {
			return err
		}
	}

	return decode(status, respBody, out)
}

// renew returns the access token the rejected request should be retried
// with. A single refresh is shared by every concurrent caller.
func (c *Client) renew(ctx context.Context, sent string, rejected *domain.APIError) (string, error) {
	v, err, shared := c.refreshes.Do("refresh", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), sent, rejected)
	})
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	if errors.Is(err, domain.ErrNoRefreshToken) {
		return "", rejected
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refresh renews the access token. When another request already rotated the
// stored token since sent was read, that token is reused as is. A result that
// arrives after the tokens were cleared or replaced is dropped.
func (c *Client) refresh(ctx context.Context, sent string, rejected *domain.APIError) (string, error) {
	if current := c.tokens.Access(ctx); current != "" && current != sent {
		metrics.TokenRefreshTotal.WithLabelValues("reused").Inc()
		return current, nil
	}

	token := c.tokens.Refresh(ctx)
	if token == "" {
		metrics.TokenRefreshTotal.WithLabelValues("no_refresh_token").Inc()
		c.terminate(ctx, rejected)
		return "", domain.ErrNoRefreshToken
	}

	var resp refreshResponse
	err := c.Post(ctx, c.refreshPath, refreshRequest{Refresh: token}, &resp, Public())
	if err == nil && resp.Access == "" {
		err = &domain.APIError{Status: http.StatusUnauthorized, Detail: "refresh response without access token"}
	}
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		c.log.Warn().Err(err).Msg("token refresh failed, clearing session")
		wrapped := fmt.Errorf("%w: %w", domain.ErrAuthorization, err)
		c.terminate(ctx, wrapped)
		return "", wrapped
	}

	if saved, _ := c.tokens.Renew(ctx, token, domain.TokenPair{Access: resp.Access, Refresh: resp.Refresh}); !saved {
		metrics.TokenRefreshTotal.WithLabelValues("discarded").Inc()
		c.log.Debug().Msg("session changed during token refresh, result discarded")
		return "", fmt.Errorf("%w: session changed during token refresh", domain.ErrAuthorization)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	c.log.Debug().Bool("rotated", resp.Refresh != "").Msg("access token refreshed")
	return resp.Access, nil
}

// terminate clears the stored tokens and signals a forced logout.
func (c *Client) terminate(ctx context.Context, cause error) {
	c.tokens.Clear(ctx)
	metrics.ForcedLogoutsTotal.Inc()

	c.mu.RLock()
	hooks := append([]func(error){}, c.onExpired...)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn(cause)
	}
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte, token string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		c.log.Debug().Err(err).Str("method", method).Str("url", target).Msg("HTTP request failed")
		return 0, nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return 0, nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Dur("elapsed", time.Since(start)).
		Msg("HTTP request")

	return resp.StatusCode, respBody, nil
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func decode(status int, body []byte, out any) error {
	if status < 200 || status >= 300 {
		return newAPIError(status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", status, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *domain.APIError {
	detail, err := extractDetail(body)
	if err != nil {
		detail = ""
	}
	return &domain.APIError{Status: status, Detail: detail, Body: body}
}
