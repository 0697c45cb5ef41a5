// Package generation turns a hosted text-generation model into a fixed-size
// batch of comment suggestions, substituting persona fallbacks when the
// model fails or produces degenerate output.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Params bound a single generation call.
type Params struct {
	MaxNewTokens int
	Temperature  float64
	DoSample     bool
}

// TextClient is one call to an external text-generation service. The
// adapter treats any error as "this slot degrades to its fallback".
type TextClient interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// HTTPClientConfig configures the hosted-inference HTTP client.
type HTTPClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient calls a hosted-inference API. Request and response shapes
// follow the common `{inputs, parameters}` / `[{generated_text}]` contract.
type HTTPClient struct {
	cfg    HTTPClientConfig
	client *http.Client
}

// NewHTTPClient creates a client for the configured inference endpoint.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Generate performs one inference call. No retries: per-slot degradation is
// handled by the adapter, not here.
func (h *HTTPClient) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens:   params.MaxNewTokens,
			Temperature:    params.Temperature,
			DoSample:       params.DoSample,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode inference request: %w", err)
	}

	url := strings.TrimSuffix(h.cfg.BaseURL, "/") + "/models/" + h.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference call failed: %w", err)
	}
	defer resp.Body.Close()

	// Bound the read; generated_text is short by construction.
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference call returned status %d", resp.StatusCode)
	}

	// The API returns either a bare object or a one-element array.
	var batch []inferenceResponse
	if err := json.Unmarshal(payload, &batch); err != nil {
		var single inferenceResponse
		if err := json.Unmarshal(payload, &single); err != nil {
			return "", fmt.Errorf("malformed inference response: %w", err)
		}
		return single.GeneratedText, nil
	}
	if len(batch) == 0 {
		return "", fmt.Errorf("empty inference response")
	}
	return batch[0].GeneratedText, nil
}
