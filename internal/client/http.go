package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/model"
)

// HTTPClient implements Client using the flock HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Items ---

func (c *HTTPClient) ListCollections(ctx context.Context) ([]model.CollectionSpec, error) {
	var resp struct {
		Collections []model.CollectionSpec `json:"collections"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/collections", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

func (c *HTTPClient) ListItems(ctx context.Context, collection string, req *ListItemsRequest) (*ItemPage, error) {
	q := url.Values{}
	if req.Category != "" {
		q.Set("category", req.Category)
	}
	if req.Date != "" {
		q.Set("date", req.Date)
	}
	if req.Search != "" {
		q.Set("q", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(req.PerPage))
	}

	path := "/v1/collections/" + url.PathEscape(collection) + "/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page ItemPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) CreateItem(ctx context.Context, collection string, req *CreateItemRequest) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, http.MethodPost, "/v1/collections/"+url.PathEscape(collection)+"/items", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/items/"+url.PathEscape(id), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/items/"+url.PathEscape(id), nil, nil)
}

// --- Comments and events ---

func (c *HTTPClient) AddComment(ctx context.Context, itemID, author, text string) (*model.Comment, error) {
	body := map[string]string{"author": author, "text": text}
	var comment model.Comment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/items/"+url.PathEscape(itemID)+"/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *HTTPClient) GetComments(ctx context.Context, itemID string) ([]*model.Comment, error) {
	var resp struct {
		Comments []*model.Comment `json:"comments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(itemID)+"/comments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *HTTPClient) GetEvents(ctx context.Context, itemID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(itemID)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Dashboards ---

func (c *HTTPClient) GetDashboard(ctx context.Context, role string) (*dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	if err := c.doJSON(ctx, http.MethodGet, "/v1/dashboards/"+url.PathEscape(role), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) ListRoles(ctx context.Context) ([]RoleInfo, error) {
	var resp struct {
		Roles []RoleInfo `json:"roles"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/roles", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

func (c *HTTPClient) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// --- Config ---

func (c *HTTPClient) SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	body := map[string]json.RawMessage{"value": value}
	var config model.Config
	if err := c.doJSON(ctx, http.MethodPut, "/v1/configs/"+key, body, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	var config model.Config
	if err := c.doJSON(ctx, http.MethodGet, "/v1/configs/"+key, nil, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	path := "/v1/configs?namespace=" + url.QueryEscape(namespace)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) DeleteConfig(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/configs/"+key, nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
