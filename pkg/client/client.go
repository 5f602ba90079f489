// Package client is a Go client for the screenvault HTTP API. Besides the plain
// endpoints it carries the caller side of listing: a serialized page loader and a
// local cache that applies optimistic patches with rollback.
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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/khoahotran/screenvault/internal/domain/video"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("screenvault: %d %s (%s: %s)", e.Status, e.Message, e.Details[0].Field, e.Details[0].Message)
	}
	return fmt.Sprintf("screenvault: %d %s", e.Status, e.Message)
}

func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

type ListOptions struct {
	Search       string
	DateRanges   []video.DateRange
	Durations    []video.DurationBucket
	Visibilities []video.Visibility
	SortBy       video.SortBy
	Limit        int
	Offset       int
}

func joinTokens[T ~string](tokens []T) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", o.Search)
	set("dateRange", joinTokens(o.DateRanges))
	set("duration", joinTokens(o.Durations))
	set("visibility", joinTokens(o.Visibilities))
	set("sortBy", string(o.SortBy))
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

func (c *Client) ListPublic(ctx context.Context, opts ListOptions) (*video.Page, error) {
	var page video.Page
	if err := c.do(ctx, http.MethodGet, "/api/videos?"+opts.values().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListMine(ctx context.Context, opts ListOptions) (*video.Page, error) {
	var page video.Page
	if err := c.do(ctx, http.MethodGet, "/api/me/videos?"+opts.values().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id string) (*video.VideoWithUser, error) {
	var v video.VideoWithUser
	if err := c.do(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

type mutationResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Video   *video.Video `json:"video"`
}

func (c *Client) UpdateVisibility(ctx context.Context, id string, visibility video.Visibility) (*video.Video, error) {
	var res mutationResult
	body := map[string]string{"visibility": string(visibility)}
	if err := c.do(ctx, http.MethodPut, "/api/videos/"+url.PathEscape(id)+"/visibility", body, &res); err != nil {
		return nil, err
	}
	return res.Video, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/videos/"+url.PathEscape(id), nil, nil)
}

type ViewReport struct {
	SessionID      string  `json:"sessionId"`
	WatchedSeconds float64 `json:"watchedSeconds"`
	Duration       float64 `json:"duration,omitempty"`
}

type ViewResult struct {
	Counted bool   `json:"counted"`
	Views   int    `json:"views"`
	State   string `json:"state"`
}

func (c *Client) RecordView(ctx context.Context, id string, report ViewReport) (*ViewResult, error) {
	var res ViewResult
	if err := c.do(ctx, http.MethodPost, "/api/videos/"+url.PathEscape(id)+"/views", report, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Error   string       `json:"error"`
			Details []FieldError `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error, Details: payload.Details}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
