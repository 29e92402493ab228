package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for tokens that fail to decode or verify.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenKind distinguishes company and user sessions. It is embedded in the
// token and namespaces the session store key.
type TokenKind string

const (
	TokenKindCompany TokenKind = "company"
	TokenKindUser    TokenKind = "user"
)

// Claims holds the token payload: a unique token id, the principal id and a
// denormalized display name. No expiry claim is set; session lifetime is
// governed by the store entry TTL.
type Claims struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// SubjectID returns the principal id embedded in the claims.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Sign creates a token for the principal with a fresh unique id.
func (s *TokenService) Sign(kind TokenKind, subjectID uuid.UUID, name string) (string, error) {
	claims := Claims{
		Name: name,
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      uuid.New().String(),
			Subject: subjectID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode parses a token and verifies its signature, returning the claims.
// Signature verification is enforced here even though session validity is
// ultimately decided by store equality.
func (s *TokenService) Decode(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
