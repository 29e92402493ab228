package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBadScheme is returned when the Authorization header is missing or does
// not carry a bearer credential.
var ErrBadScheme = errors.New("authorization header missing or not bearer scheme")

// SessionStore keeps the single currently valid token per principal. Get
// returns "" with a nil error when no entry exists.
type SessionStore interface {
	Set(ctx context.Context, key, token string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisSessionStore is the Redis-backed session store.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps a Redis client as a session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.client.Set(ctx, key, token, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// SessionRegistry issues bearer tokens and enforces at most one valid token
// per principal: issuing overwrites the keyed store entry, so prior tokens
// stop matching and are effectively revoked.
type SessionRegistry struct {
	tokens *TokenService
	store  SessionStore
	ttl    time.Duration
}

// NewSessionRegistry creates a session registry.
func NewSessionRegistry(tokens *TokenService, store SessionStore, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{tokens: tokens, store: store, ttl: ttl}
}

func sessionKey(kind TokenKind, subjectID uuid.UUID) string {
	return fmt.Sprintf("%s_token:%s", kind, subjectID)
}

// Issue signs a fresh token for the principal and stores it under the
// principal's session key with the configured TTL, superseding any prior one.
func (r *SessionRegistry) Issue(ctx context.Context, kind TokenKind, subjectID uuid.UUID, name string) (string, error) {
	token, err := r.tokens.Sign(kind, subjectID, name)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := r.store.Set(ctx, sessionKey(kind, subjectID), token, r.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// ExtractBearer pulls the raw token out of an Authorization header value
// without validating it.
func ExtractBearer(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrBadScheme
	}
	return parts[1], nil
}

// Validate decodes and verifies the token, then requires byte-exact equality
// with the stored session entry for the embedded principal. Any decode
// failure, kind mismatch or missing entry yields (nil, false); store errors
// do the same rather than surfacing to the caller.
func (r *SessionRegistry) Validate(ctx context.Context, raw string, kind TokenKind) (*Claims, bool) {
	claims, err := r.tokens.Decode(raw)
	if err != nil {
		return nil, false
	}
	if claims.Kind != string(kind) {
		return nil, false
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, false
	}
	stored, err := r.store.Get(ctx, sessionKey(kind, subjectID))
	if err != nil || stored == "" || stored != raw {
		return nil, false
	}
	return claims, true
}
