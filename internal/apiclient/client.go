// Package apiclient is the single HTTP/JSON client used to talk to the
// analytics backend.
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
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/shopdash/internal/sessionstore"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/metrics"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 15 * time.Second

	responseBodyLimit int64 = 8 << 20
	errorBodyLimit    int64 = 64 << 10
)

var errSessionRequired = errors.New("session store is required")

// Session is the persisted state the client reads the bearer token from and
// clears when the backend rejects it.
type Session interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context, fields ...sessionstore.Field) error
}

// UnauthorizedHook runs after a 401 has cleared the persisted credentials.
type UnauthorizedHook func(ctx context.Context)

// Client performs authenticated JSON requests relative to the base URL.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	session    Session
	metrics    *metrics.APIMetrics
	logg       *logger.Logger

	mu    sync.RWMutex
	hooks []UnauthorizedHook
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds a client for baseURL; an empty base URL uses DefaultBaseURL.
func NewClient(baseURL string, session Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, errSessionRequired
	}
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", trimmed)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    parsed,
		session:    session,
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// OnUnauthorized registers a hook invoked on every 401 response.
func (c *Client) OnUnauthorized(hook UnauthorizedHook) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

// URL resolves path (and optional query) against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimLeft(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(ref).String()
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.DoRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", routeLabel(path)))
	}
	return nil
}

// DoRaw sends one request and returns the undecoded 2xx body.
func (c *Client) DoRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	requestID := uuid.NewString()
	route := routeLabel(path)
	ctx = c.logg.WithFields(ctx, map[string]any{
		"request_id": requestID,
		"method":     method,
		"route":      route,
	})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token := c.session.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Observe(route, 0, time.Since(started))
		c.logg.Warn(ctx, fmt.Sprintf("request failed: %v", err))
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("%s %s", method, route))
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.Observe(route, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		apiErr := newError(resp.StatusCode, respBody)
		c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized {
			c.expire(ctx)
		}
		return nil, apiErr
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("read %s response", route))
	}
	c.logg.Debug(c.logg.WithField(ctx, "status", resp.StatusCode), "request completed")
	return respBody, nil
}

// expire drops the persisted credentials and notifies every registered hook.
func (c *Client) expire(ctx context.Context) {
	if err := c.session.Clear(ctx, sessionstore.FieldToken, sessionstore.FieldUser); err != nil {
		c.logg.Error(ctx, "clearing expired session", err)
	}
	c.metrics.IncExpired()

	c.mu.RLock()
	hooks := make([]UnauthorizedHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx)
	}
}

// routeLabel collapses id segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, "0123456789") {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
