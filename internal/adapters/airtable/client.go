// Package airtable writes intake records to an Airtable base over its REST
// API. Requests are not retried; a failed submission is marked failed and
// can be resubmitted by the caller.
package airtable

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

	"github.com/csg33k/txn-intake/internal/mapping"
)

const DefaultBaseURL = "https://api.airtable.com"

type Client struct {
	baseURL string
	baseID  string
	apiKey  string
	http    *http.Client
}

// New returns a client for one base. An empty baseURL uses DefaultBaseURL.
func New(baseURL, baseID, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseID:  baseID,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type createRequest struct {
	Fields   mapping.Fields `json:"fields"`
	Typecast bool           `json:"typecast"`
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// APIError is a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("airtable returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("airtable returned status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// CreateRecord inserts one record into table (name or table ID) and
// returns the new record ID. Typecast is on so select options and linked
// record IDs are accepted as plain strings.
func (c *Client) CreateRecord(ctx context.Context, table string, fields mapping.Fields) (string, error) {
	body, err := json.Marshal(createRequest{Fields: fields, Typecast: true})
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v0/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("airtable request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	var rec record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if rec.ID == "" {
		return "", fmt.Errorf("airtable response has no record id")
	}
	return rec.ID, nil
}

// decodeError reads both error shapes Airtable uses:
// {"error":{"type":..,"message":..}} and {"error":"NOT_FOUND"}.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(b, &env) != nil || len(env.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(b))
		return apiErr
	}
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &detail) == nil {
		apiErr.Type, apiErr.Message = detail.Type, detail.Message
		return apiErr
	}
	var code string
	if json.Unmarshal(env.Error, &code) == nil {
		apiErr.Type = code
	}
	return apiErr
}
