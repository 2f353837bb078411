// Package client is the typed HTTP client for the snote entries API.
package client

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

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/utils"
)

// Error codes carried in API error bodies.
const (
	CodeNotFound   = domain.CodeNotFound
	CodeValidation = domain.CodeValidation
	CodeStore      = domain.CodeStore
	CodeInternal   = domain.CodeInternal
)

// APIError is a non-2xx response. It unwraps to the matching domain sentinel
// so callers can use errors.Is(err, domain.ErrNotFound).
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("snote api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("snote api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Code == CodeNotFound || e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Code == CodeValidation || e.Status == http.StatusBadRequest:
		return domain.ErrValidation
	case e.Code == CodeStore:
		return domain.ErrStore
	default:
		return nil
	}
}

// Client talks to the REST surface under /api/entries.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL (e.g. "http://localhost:8080").
// A nil httpClient selects http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) ListEntries(ctx context.Context) ([]*domain.Entry, error) {
	var out []*domain.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	var out domain.Entry
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEntry(ctx context.Context, in domain.CreateInput) (*domain.Entry, error) {
	var out domain.Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id string, in domain.UpdateInput) (*domain.Entry, error) {
	var out domain.Entry
	if err := c.do(ctx, http.MethodPatch, entryPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil)
}

func (c *Client) CopyEntry(ctx context.Context, id string) (*domain.Entry, error) {
	var out domain.Entry
	if err := c.do(ctx, http.MethodPost, entryPath(id)+"/copy", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Icons(ctx context.Context) (*domain.IconSet, error) {
	var out domain.IconSet
	if err := c.do(ctx, http.MethodGet, "/api/icons", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func entryPath(id string) string {
	return "/api/entries/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
