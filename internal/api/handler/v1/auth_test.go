package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/events-api/internal/api/handler/v1/response"
	"github.com/citypulse/events-api/internal/config"
	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/service"
)

type fakeAuthService struct {
	signedUp *domain.User
	loginErr error
}

func (s *fakeAuthService) Signup(_ context.Context, user domain.User) (domain.User, error) {
	user.ID = 10
	user.Role = domain.RoleUser
	s.signedUp = &user

	return user, nil
}

func (s *fakeAuthService) Login(_ context.Context, email, _ string) (domain.User, error) {
	if s.loginErr != nil {
		return domain.User{}, s.loginErr
	}

	return domain.User{ID: 10, Email: email, Role: domain.RoleUser}, nil
}

func newAuthRouter(svc *fakeAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewAuthHandler(&config.APIConfig{JWTSigningKey: "test-key"}, svc)

	router := gin.New()
	router.POST("/api/v1/auth/signup", handler.HandleSignup)
	router.POST("/api/v1/auth/login", handler.HandleLogin)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload gin.H) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	return w
}

func TestHandleSignup(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter(svc)

	w := postJSON(t, router, "/api/v1/auth/signup", gin.H{
		"email":            "new@example.com",
		"password":         "password1",
		"confirm_password": "password1",
		"name":             "New",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.signedUp)
	assert.Equal(t, "new@example.com", svc.signedUp.Email)

	// The password hash never leaks into the response.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandleSignupValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "bad email",
			body: gin.H{"email": "nope", "password": "password1", "confirm_password": "password1", "name": "N"},
		},
		{
			name: "password too short",
			body: gin.H{"email": "a@b.com", "password": "pass1", "confirm_password": "pass1", "name": "N"},
		},
		{
			name: "password without digits",
			body: gin.H{"email": "a@b.com", "password": "passwords", "confirm_password": "passwords", "name": "N"},
		},
		{
			name: "confirmation mismatch",
			body: gin.H{"email": "a@b.com", "password": "password1", "confirm_password": "password2", "name": "N"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{}
			router := newAuthRouter(svc)

			w := postJSON(t, router, "/api/v1/auth/signup", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.signedUp)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{})

	w := postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "password1",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body response.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "user@example.com", body.User.Email)
}

func TestHandleLoginWrongCredentials(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown user", err: service.ErrUserNotFound},
		{name: "wrong password", err: service.ErrWrongPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthRouter(&fakeAuthService{loginErr: tc.err})

			w := postJSON(t, router, "/api/v1/auth/login", gin.H{
				"email":    "user@example.com",
				"password": "password1",
			})

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
