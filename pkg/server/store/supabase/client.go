package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client carries the project URL and access key shared by every platform API
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewClient creates a platform client. timeout bounds each call.
func NewClient(baseURL, key string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the project URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    io.Reader
	json    interface{}
	headers map[string]string
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) do(ctx context.Context, req request) (response, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.body
	if req.json != nil {
		data, err := json.Marshal(req.json)
		if err != nil {
			return response{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("apikey", c.key)
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	if req.json != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// Call sends a JSON request to any platform API path and returns the raw
// status and body. payload may be nil.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, payload interface{}) (int, []byte, error) {
	resp, err := c.do(ctx, request{method: method, path: path, query: query, json: payload})
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.body, nil
}

// ErrorMessage extracts the human-readable message from a platform error
// body. The REST, storage and auth APIs each name the field differently.
func ErrorMessage(body []byte, status int) string {
	for _, path := range []string{"message", "msg", "error_description", "error"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !gjson.ValidBytes(body) {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}
