package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func newRoutedApp(t *testing.T) *fiber.App {
	t.Helper()
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)

	s, err := NewServerWithDeps(testConfig(), db, nil, &stubProducer{batch: threeSuggestions()})
	require.NoError(t, err)

	app := fiber.New()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func TestRoutes_HealthLive(t *testing.T) {
	app := newRoutedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_PublicCatalog(t *testing.T) {
	app := newRoutedApp(t)

	for _, path := range []string{"/api/plans", "/api/personas"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}

func TestRoutes_ProtectedRequireAuth(t *testing.T) {
	app := newRoutedApp(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/generate-comment"},
		{http.MethodPost, "/api/generate-comments"},
		{http.MethodGet, "/api/tokens"},
		{http.MethodPost, "/api/tokens/reset"},
		{http.MethodPost, "/api/plan"},
		{http.MethodGet, "/api/history"},
		{http.MethodPost, "/api/history/1/feedback"},
	}

	for _, route := range protected {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
		_ = resp.Body.Close()
	}
}

func TestMiddleware_CORSHeadersOnPreflight(t *testing.T) {
	app := newRoutedApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-comment", nil)
	req.Header.Set("Origin", "https://www.linkedin.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
