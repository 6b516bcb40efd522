// Package client provides an HTTP client for the Mailblast flow API with
// response caching, single-attempt mutations, and one-shot token refresh on
// authentication failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/services"
)

// InternalHeader marks requests to internal-only routes.
const InternalHeader = "X-Mailblast-Internal"

const (
	queryCacheTTL  = 30 * time.Second
	defaultTimeout = 15 * time.Second
	flowsListKey   = "flows"
	flowKeyPrefix  = "flow:"
)

// ErrSessionExpired is returned when the session token was rejected and a
// refresh attempt did not produce a usable replacement.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response from the API. Requests that produce an
// APIError are never retried.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenSource supplies session tokens. Refresh is called at most once per
// failed request.
type TokenSource interface {
	Refresh(ctx context.Context) (string, error)
}

// Client talks to the flow API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
	logger      *slog.Logger

	mu    sync.Mutex
	token string

	cache *gocache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the initial session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a flow API client. tokenSource may be nil, in which
// case a 401 is surfaced as ErrSessionExpired immediately.
func NewClient(baseURL string, tokenSource TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		tokenSource: tokenSource,
		logger:      slog.Default(),
		cache:       gocache.New(queryCacheTTL, time.Minute),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FlowList is a page of flows.
type FlowList struct {
	Flows       []*models.Flow `json:"flows"`
	TotalCount  int64          `json:"total_count"`
	HasNextPage bool           `json:"has_next_page"`
}

// ListFlowsQuery controls ListFlows filtering and pagination.
type ListFlowsQuery struct {
	Limit     int
	Offset    int
	OwnerID   string
	Status    string
	SortBy    string
	SortOrder string
}

func (q ListFlowsQuery) encode() string {
	values := url.Values{}

	if q.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", q.Limit))
	}

	if q.Offset > 0 {
		values.Set("offset", fmt.Sprintf("%d", q.Offset))
	}

	if q.OwnerID != "" {
		values.Set("owner_id", q.OwnerID)
	}

	if q.Status != "" {
		values.Set("status", q.Status)
	}

	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
	}

	if q.SortOrder != "" {
		values.Set("sort_order", q.SortOrder)
	}

	if encoded := values.Encode(); encoded != "" {
		return "?" + encoded
	}

	return ""
}

// ListFlows fetches a page of flows. The unfiltered default query is
// served from cache when fresh.
func (c *Client) ListFlows(ctx context.Context, query ListFlowsQuery) (*FlowList, error) {
	cacheable := query == ListFlowsQuery{}

	if cacheable {
		if cached, ok := c.cache.Get(flowsListKey); ok {
			if list, ok := cached.(*FlowList); ok {
				return list, nil
			}
		}
	}

	var list FlowList
	if err := c.do(ctx, http.MethodGet, "/automation/flows"+query.encode(), nil, &list); err != nil {
		return nil, err
	}

	if cacheable {
		c.cache.Set(flowsListKey, &list, gocache.DefaultExpiration)
	}

	return &list, nil
}

// GetFlow fetches one flow, served from cache when fresh.
func (c *Client) GetFlow(ctx context.Context, id string) (*models.Flow, error) {
	if cached, ok := c.cache.Get(flowKeyPrefix + id); ok {
		if flow, ok := cached.(*models.Flow); ok {
			return flow, nil
		}
	}

	var flow models.Flow
	if err := c.do(ctx, http.MethodGet, "/automation/flows/"+id, nil, &flow); err != nil {
		return nil, err
	}

	c.cache.Set(flowKeyPrefix+id, &flow, gocache.DefaultExpiration)

	return &flow, nil
}

// CreateFlowInput is the payload for CreateFlow.
type CreateFlowInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner"`
}

// CreateFlow creates a draft flow. The list cache is invalidated.
func (c *Client) CreateFlow(ctx context.Context, input CreateFlowInput) (*models.Flow, error) {
	var flow models.Flow
	if err := c.do(ctx, http.MethodPost, "/automation/flows", input, &flow); err != nil {
		return nil, err
	}

	c.cache.Delete(flowsListKey)
	c.cache.Set(flowKeyPrefix+flow.ID, &flow, gocache.DefaultExpiration)

	return &flow, nil
}

// UpdateFlowInput is the payload for UpdateFlow. Nil fields are left
// unchanged; nodes and edges are replaced as a set when present.
type UpdateFlowInput struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Nodes       []*models.FlowNode `json:"nodes,omitempty"`
	Edges       []*models.FlowEdge `json:"edges,omitempty"`
}

// UpdateFlow updates a flow. Both the list cache and the flow's cache
// entry are invalidated.
func (c *Client) UpdateFlow(ctx context.Context, id string, input UpdateFlowInput) (*models.Flow, error) {
	var flow models.Flow
	if err := c.do(ctx, http.MethodPut, "/automation/flows/"+id, input, &flow); err != nil {
		return nil, err
	}

	c.cache.Delete(flowsListKey)
	c.cache.Set(flowKeyPrefix+id, &flow, gocache.DefaultExpiration)

	return &flow, nil
}

// DeleteFlow removes a flow and drops it from the cache.
func (c *Client) DeleteFlow(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/automation/flows/"+id, nil, nil); err != nil {
		return err
	}

	c.cache.Delete(flowsListKey)
	c.cache.Delete(flowKeyPrefix + id)

	return nil
}

// Validate asks the server to check a flow for publishability. Results
// are never cached; the returned token feeds Publish.
func (c *Client) Validate(ctx context.Context, id string) (*services.PublishResult, error) {
	var result services.PublishResult
	if err := c.do(ctx, http.MethodPost, "/automation/flows/"+id+"/validate", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Publish publishes a flow using a token from a prior Validate. A 409
// means the flow changed since validation.
func (c *Client) Publish(ctx context.Context, id, validationToken string) (*models.Flow, error) {
	body := map[string]string{"validation_token": validationToken}

	var flow models.Flow
	if err := c.do(ctx, http.MethodPost, "/automation/flows/"+id+"/publish", body, &flow); err != nil {
		return nil, err
	}

	c.cache.Delete(flowsListKey)
	c.cache.Set(flowKeyPrefix+id, &flow, gocache.DefaultExpiration)

	return &flow, nil
}

// Unpublish pauses a published flow.
func (c *Client) Unpublish(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	if err := c.do(ctx, http.MethodPost, "/automation/flows/"+id+"/unpublish", nil, &flow); err != nil {
		return nil, err
	}

	c.cache.Delete(flowsListKey)
	c.cache.Set(flowKeyPrefix+id, &flow, gocache.DefaultExpiration)

	return &flow, nil
}

// GetExecutions fetches a flow's execution history. Never cached; the
// poller overwrites its own copy each tick.
func (c *Client) GetExecutions(ctx context.Context, flowID string) ([]*models.Execution, error) {
	var payload struct {
		Executions []*models.Execution `json:"executions"`
	}

	if err := c.do(ctx, http.MethodGet, "/automation/flows/"+flowID+"/executions", nil, &payload); err != nil {
		return nil, err
	}

	return payload.Executions, nil
}

// ExportFlow fetches the internal flow export.
func (c *Client) ExportFlow(ctx context.Context, id string) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/internal/flows/"+id+"/export", nil, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// do performs one request. The request is attempted exactly once; the
// only replay is the single post-refresh attempt after a 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.attempt(ctx, method, path, body, out, false)
}

func (c *Client) attempt(ctx context.Context, method, path string, body, out any, retried bool) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if strings.Contains(path, "/internal/") {
		req.Header.Set(InternalHeader, "1")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		if retried || c.tokenSource == nil {
			c.clearToken()

			return ErrSessionExpired
		}

		token, refreshErr := c.tokenSource.Refresh(ctx)
		if refreshErr != nil || token == "" {
			c.clearToken()

			return ErrSessionExpired
		}

		c.setToken(token)
		c.logger.DebugContext(ctx, "Session token refreshed, replaying request", "path", path)

		return c.attempt(ctx, method, path, body, out, true)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	// Problem responses carry the message in "detail".
	var problem struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}

	message := strings.TrimSpace(string(data))

	if err := json.Unmarshal(data, &problem); err == nil {
		if problem.Detail != "" {
			message = problem.Detail
		} else if problem.Title != "" {
			message = problem.Title
		}
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
}
