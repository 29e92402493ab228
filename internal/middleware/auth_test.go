package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/backend/internal/auth"
)

type fakeSessionStore struct {
	entries map[string]string
}

func (s *fakeSessionStore) Set(_ context.Context, key, token string, _ time.Duration) error {
	s.entries[key] = token
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, key string) (string, error) {
	return s.entries[key], nil
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *auth.SessionRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeSessionStore{entries: make(map[string]string)}
	registry := auth.NewSessionRegistry(auth.NewTokenService("test-secret"), store, time.Hour)

	router := gin.New()
	router.GET("/protected", Authenticate(registry, auth.TokenKindUser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": PrincipalID(c), "name": PrincipalName(c)})
	})
	return router, registry
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router, registry := setupAuthRouter(t)
	token, err := registry.Issue(context.Background(), auth.TokenKindUser, uuid.New(), "Alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WrongScheme(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_SupersededToken(t *testing.T) {
	router, registry := setupAuthRouter(t)
	userID := uuid.New()
	old, err := registry.Issue(context.Background(), auth.TokenKindUser, userID, "Alice")
	require.NoError(t, err)
	_, err = registry.Issue(context.Background(), auth.TokenKindUser, userID, "Alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+old)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
