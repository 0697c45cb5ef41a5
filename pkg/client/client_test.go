package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "session-token")
}

func TestClient_Generate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-comment", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "post body", req["post_content"])

		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Comments: []Suggestion{
				{ID: 1, Text: "one", Confidence: 80},
				{ID: 2, Text: "two", Confidence: 85},
				{ID: 3, Text: "three", Confidence: 90},
			},
			Persona:         "Professional",
			TokensRemaining: 41,
		})
	})

	resp, err := c.Generate(context.Background(), "post body", "")
	require.NoError(t, err)
	assert.Len(t, resp.Comments, 3)
	assert.Equal(t, 41, resp.TokensRemaining)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"401 maps to ErrUnauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"402 maps to ErrInsufficientTokens", http.StatusPaymentRequired, ErrInsufficientTokens},
		{"429 maps to ErrRequestInFlight", http.StatusTooManyRequests, ErrRequestInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			})
			_, err := c.Generate(context.Background(), "post", "")
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestClient_GenericErrorCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "something broke"})
	})

	_, err := c.Generate(context.Background(), "post", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "something broke")
}

func TestClient_Balance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tokens", r.URL.Path)
		_ = json.NewEncoder(w).Encode(BalanceResponse{TokensRemaining: 12, TokensLimit: 50})
	})

	balance, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, balance.TokensRemaining)
}

func TestClient_Feedback(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	err := c.Feedback(context.Background(), 42, "rejected")
	require.NoError(t, err)
	assert.Equal(t, "/api/history/42/feedback", gotPath)
}

// insertTargetStub is a stub for InsertTarget.
type insertTargetStub struct {
	found    bool
	insertFn func(handle any, text string) error
	inserted string
}

func (s *insertTargetStub) Find() (any, bool) { return "box", s.found }
func (s *insertTargetStub) Insert(handle any, text string) error {
	if s.insertFn != nil {
		return s.insertFn(handle, text)
	}
	s.inserted = text
	return nil
}

func TestApprover_Approve(t *testing.T) {
	ctx := context.Background()
	suggestion := Suggestion{ID: 7, Text: "Great insight."}

	newAPI := func(t *testing.T) *Client {
		return newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{})
		})
	}

	t.Run("copies and inserts", func(t *testing.T) {
		var copied string
		target := &insertTargetStub{found: true}
		a := NewApprover(newAPI(t), func(text string) error {
			copied = text
			return nil
		}, target, nil)

		require.NoError(t, a.Approve(ctx, suggestion))
		assert.Equal(t, "Great insight.", copied)
		assert.Equal(t, "Great insight.", target.inserted)
	})

	t.Run("clipboard failure fails the approve", func(t *testing.T) {
		a := NewApprover(newAPI(t), func(string) error {
			return errors.New("no clipboard")
		}, nil, nil)
		assert.Error(t, a.Approve(ctx, suggestion))
	})

	t.Run("insert failure does not fail the approve", func(t *testing.T) {
		target := &insertTargetStub{
			found:    true,
			insertFn: func(any, string) error { return errors.New("detached node") },
		}
		a := NewApprover(newAPI(t), func(string) error { return nil }, target, nil)
		assert.NoError(t, a.Approve(ctx, suggestion))
	})

	t.Run("no comment box is clipboard only", func(t *testing.T) {
		target := &insertTargetStub{found: false}
		a := NewApprover(newAPI(t), func(string) error { return nil }, target, nil)
		assert.NoError(t, a.Approve(ctx, suggestion))
		assert.Empty(t, target.inserted)
	})

	t.Run("feedback failure does not fail the approve", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		a := NewApprover(api, func(string) error { return nil }, nil, nil)
		assert.NoError(t, a.Approve(ctx, suggestion))
	})
}
