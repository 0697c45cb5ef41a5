package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"engage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetHistory(t *testing.T) {
	accountRepo := new(MockAccountRepository)
	historyRepo := new(MockHistoryRepository)
	app, s := newTestServer(t, accountRepo, historyRepo)
	app.Get("/history", s.GetHistory)

	historyRepo.On("ListByUser", mock.Anything, uint(1), 20, 0).Return([]*models.HistoryRecord{
		{ID: 2, UserID: 1, GeneratedComment: "newer"},
		{ID: 1, UserID: 1, GeneratedComment: "older"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	records, ok := body["history"].([]any)
	require.True(t, ok)
	assert.Len(t, records, 2)
}

func TestGetHistory_EmptyIsArray(t *testing.T) {
	accountRepo := new(MockAccountRepository)
	historyRepo := new(MockHistoryRepository)
	app, s := newTestServer(t, accountRepo, historyRepo)
	app.Get("/history", s.GetHistory)

	historyRepo.On("ListByUser", mock.Anything, uint(1), 20, 0).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body := decodeBody(t, resp)
	records, ok := body["history"].([]any)
	require.True(t, ok)
	assert.Empty(t, records)
}

func TestSetHistoryFeedback(t *testing.T) {
	t.Run("approves own record", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		historyRepo := new(MockHistoryRepository)
		app, s := newTestServer(t, accountRepo, historyRepo)
		app.Post("/history/:id/feedback", s.SetHistoryFeedback)

		historyRepo.On("GetByID", mock.Anything, uint(10)).
			Return(&models.HistoryRecord{ID: 10, UserID: 1, Feedback: models.FeedbackPending}, nil)
		historyRepo.On("UpdateFeedback", mock.Anything, uint(10), models.FeedbackApproved).Return(nil)

		resp := postJSON(t, app, "/history/10/feedback", map[string]string{"action": "approved"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		record, ok := body["record"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "approved", record["feedback"])
	})

	t.Run("invalid action rejected", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		historyRepo := new(MockHistoryRepository)
		app, s := newTestServer(t, accountRepo, historyRepo)
		app.Post("/history/:id/feedback", s.SetHistoryFeedback)

		resp := postJSON(t, app, "/history/10/feedback", map[string]string{"action": "meh"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("foreign record reads as not found", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		historyRepo := new(MockHistoryRepository)
		app, s := newTestServer(t, accountRepo, historyRepo)
		app.Post("/history/:id/feedback", s.SetHistoryFeedback)

		historyRepo.On("GetByID", mock.Anything, uint(10)).
			Return(&models.HistoryRecord{ID: 10, UserID: 99}, nil)

		resp := postJSON(t, app, "/history/10/feedback", map[string]string{"action": "rejected"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
		historyRepo.AssertNotCalled(t, "UpdateFeedback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		historyRepo := new(MockHistoryRepository)
		app, s := newTestServer(t, accountRepo, historyRepo)
		app.Post("/history/:id/feedback", s.SetHistoryFeedback)

		resp := postJSON(t, app, "/history/abc/feedback", map[string]string{"action": "approved"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
