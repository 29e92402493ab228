package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SessionStore for tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]string)}
}

func (s *memStore) Set(_ context.Context, key, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = token
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key], nil
}

func newTestRegistry() (*SessionRegistry, *memStore) {
	store := newMemStore()
	tokens := NewTokenService("test-secret")
	return NewSessionRegistry(tokens, store, 24*time.Hour), store
}

func TestSessionRegistry_IssueAndValidate(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry()
	userID := uuid.New()

	token, err := registry.Issue(ctx, TokenKindUser, userID, "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, ok := registry.Validate(ctx, token, TokenKindUser)
	require.True(t, ok)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionRegistry_SecondIssueSupersedesFirst(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry()
	userID := uuid.New()

	first, err := registry.Issue(ctx, TokenKindUser, userID, "Alice")
	require.NoError(t, err)
	second, err := registry.Issue(ctx, TokenKindUser, userID, "Alice")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, ok := registry.Validate(ctx, first, TokenKindUser)
	assert.False(t, ok, "superseded token must no longer validate")

	_, ok = registry.Validate(ctx, second, TokenKindUser)
	assert.True(t, ok)
}

func TestSessionRegistry_KindMismatch(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry()
	companyID := uuid.New()

	token, err := registry.Issue(ctx, TokenKindCompany, companyID, "Acme")
	require.NoError(t, err)

	_, ok := registry.Validate(ctx, token, TokenKindUser)
	assert.False(t, ok, "company token must not pass the user-kind check")
}

func TestSessionRegistry_WellFormedButUnstored(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry()
	userID := uuid.New()

	// Signed with the right secret but never stored: cryptographically fine,
	// still invalid because no session entry matches.
	tokens := NewTokenService("test-secret")
	raw, err := tokens.Sign(TokenKindUser, userID, "Mallory")
	require.NoError(t, err)

	_, ok := registry.Validate(ctx, raw, TokenKindUser)
	assert.False(t, ok)
}

func TestSessionRegistry_GarbledToken(t *testing.T) {
	registry, _ := newTestRegistry()
	_, ok := registry.Validate(context.Background(), "not-a-jwt", TokenKindUser)
	assert.False(t, ok)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	raw, err := NewTokenService("secret-a").Sign(TokenKindUser, uuid.New(), "Alice")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "case-insensitive scheme", header: "bearer abc", want: "abc", ok: true},
		{name: "empty header", header: "", ok: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", ok: false},
		{name: "scheme only", header: "Bearer", ok: false},
		{name: "scheme with empty token", header: "Bearer ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearer(tt.header)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.ErrorIs(t, err, ErrBadScheme)
			}
		})
	}
}
