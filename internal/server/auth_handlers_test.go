package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"engage/internal/models"
	"engage/internal/repository"
	"engage/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	user.ID = 1
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newAuthTestServer(userRepo *MockUserRepository, accountRepo *MockAccountRepository) (*fiber.App, *Server) {
	s := &Server{
		config:        testConfig(),
		userRepo:      userRepo,
		accountRepo:   accountRepo,
		ledgerService: service.NewLedgerService(accountRepo),
	}
	app := fiber.New()
	return app, s
}

func TestSignup(t *testing.T) {
	t.Run("creates user with funded free account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		accountRepo := new(MockAccountRepository)
		app, s := newAuthTestServer(userRepo, accountRepo)
		app.Post("/signup", s.Signup)

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		accountRepo.On("GetByUserID", mock.Anything, uint(1)).Return(nil, repository.ErrAccountNotFound)
		accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.TokenAccount) bool {
			return a.UserID == 1 && a.TokensRemaining == 50 && a.PlanID == models.PlanFree
		})).Return(nil)

		resp := postJSON(t, app, "/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "Str0ng!Passw0rd",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
		assert.Equal(t, float64(50), body["tokens_remaining"])
		accountRepo.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		accountRepo := new(MockAccountRepository)
		app, s := newAuthTestServer(userRepo, accountRepo)
		app.Post("/signup", s.Signup)

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
			Return(&models.User{ID: 1, Email: "alice@example.com"}, nil)

		resp := postJSON(t, app, "/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "Str0ng!Passw0rd",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("weak password rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		accountRepo := new(MockAccountRepository)
		app, s := newAuthTestServer(userRepo, accountRepo)
		app.Post("/signup", s.Signup)

		resp := postJSON(t, app, "/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Str0ng!Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials return token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		app, s := newAuthTestServer(userRepo, new(MockAccountRepository))
		app.Post("/login", s.Login)

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
			Return(&models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hashed)}, nil)

		resp := postJSON(t, app, "/login", map[string]string{
			"email":    "alice@example.com",
			"password": "Str0ng!Passw0rd",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		app, s := newAuthTestServer(userRepo, new(MockAccountRepository))
		app.Post("/login", s.Login)

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
			Return(&models.User{ID: 1, Password: string(hashed)}, nil)

		resp := postJSON(t, app, "/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("unknown email unauthorized", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		app, s := newAuthTestServer(userRepo, new(MockAccountRepository))
		app.Post("/login", s.Login)

		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		resp := postJSON(t, app, "/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestTokenRoundTrip(t *testing.T) {
	s := &Server{config: testConfig()}
	token, err := s.generateToken(7, "alice")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(7), body["user_id"])
}

func TestAuthRequired_RejectsForeignSignature(t *testing.T) {
	s := &Server{config: testConfig()}
	app := fiber.New()
	app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	// Token signed with a different secret must be rejected.
	foreignCfg := testConfig()
	foreignCfg.JWTSecret = "another-secret-another-secret!!"
	foreign := &Server{config: foreignCfg}
	token, err := foreign.generateToken(7, "mallory")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
