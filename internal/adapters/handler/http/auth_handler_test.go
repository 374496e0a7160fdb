package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type noopSessions struct{}

func (noopSessions) Logout(string) {}

func setupHandler() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo)
	tokens := services.NewTokenService("auth-handler-secret", "kanso-test", time.Hour, mockRepo)
	authHandler := NewAuthHandler(authService, tokens, noopSessions{})

	router := gin.New()
	authHandler.RegisterRoutes(router.Group(""), router.Group(""))

	return router, mockRepo
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success: Should return 201 and created user (No Password)", func(t *testing.T) {
		router, mockRepo := setupHandler()

		payload := map[string]string{
			"email":    "api_test@kanso.app",
			"password": "PasswordSuperSegreta1!",
			"timezone": "Europe/Rome",
		}

		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		w := postJSON(router, "/auth/register", payload)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response userResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, payload["email"], response.Email)
		assert.Equal(t, "Europe/Rome", response.Timezone)
		assert.NotEmpty(t, response.ID)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Fail: Duplicate email returns 409", func(t *testing.T) {
		router, mockRepo := setupHandler()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		w := postJSON(router, "/auth/register", map[string]string{
			"email": "dup@kanso.app", "password": "PasswordSuperSegreta1!",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Fail: Invalid timezone returns 400", func(t *testing.T) {
		router, _ := setupHandler()

		w := postJSON(router, "/auth/register", map[string]string{
			"email": "tz@kanso.app", "password": "PasswordSuperSegreta1!", "timezone": "Mars/Olympus",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid timezone")
	})

	t.Run("Fail: Validation errors return 400", func(t *testing.T) {
		router, _ := setupHandler()

		for _, payload := range []map[string]string{
			{"email": "not-an-email", "password": "PasswordSuperSegreta1!"},
			{"email": "short@kanso.app", "password": "123"},
			{"password": "PasswordSuperSegreta1!"},
		} {
			w := postJSON(router, "/auth/register", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})

	t.Run("Fail: Store failure returns 500", func(t *testing.T) {
		router, mockRepo := setupHandler()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db connection lost"))

		w := postJSON(router, "/auth/register", map[string]string{
			"email": "err@kanso.app", "password": "PasswordSuperSegreta1!",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db connection lost")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	user, err := domain.NewUser("user-1", "login@kanso.app", "")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("PasswordSuperSegreta1!"))

	t.Run("Success: Returns a token for the user", func(t *testing.T) {
		router, mockRepo := setupHandler()
		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		w := postJSON(router, "/auth/login", map[string]string{
			"email": "login@kanso.app", "password": "PasswordSuperSegreta1!",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var response tokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "user-1", response.User.ID)
	})

	t.Run("Fail: Wrong password returns 401", func(t *testing.T) {
		router, mockRepo := setupHandler()
		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		w := postJSON(router, "/auth/login", map[string]string{
			"email": "login@kanso.app", "password": "WrongPassword123!",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signIn(t, "logout@kanso.app")

	w := s.do(t, http.MethodPost, "/tracker/progress/physical", token, map[string]float64{"amount": 10})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Nothing reached the store, so the next session starts from defaults.
	rec, err := s.tracker.Today(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.Physical.Progress)
}
