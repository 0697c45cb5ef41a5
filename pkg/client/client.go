// Package client is the Go client for the Engage API, used by the desktop
// helper and integration tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors mapped from API status codes.
var (
	// ErrUnauthorized means the session token is missing, expired, or revoked.
	ErrUnauthorized = errors.New("session expired, log in again")
	// ErrInsufficientTokens means the monthly token balance is spent.
	ErrInsufficientTokens = errors.New("out of tokens, upgrade your plan or wait for the monthly reset")
	// ErrRequestInFlight means a generation request is already running for
	// this account.
	ErrRequestInFlight = errors.New("a generation request is already in progress")
)

// Suggestion is one proposed comment returned by the API.
type Suggestion struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
}

// GenerateResponse is the result of one generation call.
type GenerateResponse struct {
	Comments        []Suggestion `json:"comments"`
	Persona         string       `json:"persona"`
	TokensRemaining int          `json:"tokens_remaining"`
}

// BalanceResponse reports the current token ledger state.
type BalanceResponse struct {
	TokensRemaining int `json:"tokens_remaining"`
	TokensLimit     int `json:"tokens_limit"`
}

// Client calls the Engage API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given API base URL and session token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate requests a suggestion batch for the given post text.
func (c *Client) Generate(ctx context.Context, postContent, persona string) (*GenerateResponse, error) {
	var out GenerateResponse
	err := c.do(ctx, http.MethodPost, "/api/generate-comment", map[string]string{
		"post_content": postContent,
		"persona":      persona,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Feedback records what the user did with a suggestion.
func (c *Client) Feedback(ctx context.Context, suggestionID uint, action string) error {
	path := fmt.Sprintf("/api/history/%d/feedback", suggestionID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"action": action}, nil)
}

// Balance fetches the current token balance.
func (c *Client) Balance(ctx context.Context) (*BalanceResponse, error) {
	var out BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/tokens", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetTokens refills the balance to the plan limit.
func (c *Client) ResetTokens(ctx context.Context) (*BalanceResponse, error) {
	var out BalanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/tokens/reset", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusPaymentRequired:
		return ErrInsufficientTokens
	case http.StatusTooManyRequests:
		return ErrRequestInFlight
	default:
		return fmt.Errorf("api returned status %d: %s", resp.StatusCode, apiErrorMessage(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

// apiErrorMessage pulls the human-readable message out of an error body.
func apiErrorMessage(payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(payload))
}
