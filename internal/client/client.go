// Package client talks to the registration API and models the form
// controller that drives it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"regform/internal/registration/models"
)

// ErrNetwork marks a request that never produced an HTTP response.
var ErrNetwork = errors.New("network failure")

// APIError is a non-2xx reply. Message is the server's "error" field, empty
// when the body carried none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registration api: status %d", e.Status)
	}
	return fmt.Sprintf("registration api: status %d: %s", e.Status, e.Message)
}

// Client is a thin JSON client for the registration endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register posts sub and returns the assigned id.
func (c *Client) Register(ctx context.Context, sub models.Submission) (models.RegisterResponse, error) {
	var out models.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/register", sub, &out)
	return out, err
}

// Users lists every record, newest first.
func (c *Client) Users(ctx context.Context) ([]models.Record, error) {
	var out []models.Record
	err := c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

// Count returns the number of records.
func (c *Client) Count(ctx context.Context) (int, error) {
	var out models.CountResponse
	err := c.do(ctx, http.MethodGet, "/users/count", nil, &out)
	return out.Count, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
