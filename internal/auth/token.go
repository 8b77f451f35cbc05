package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// DefaultTokenTTL is the fixed session lifetime.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	key SigningKey
	ttl time.Duration
	now func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(tm *TokenManager) {
		if ttl > 0 {
			tm.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(key SigningKey, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{key: key, ttl: DefaultTokenTTL, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Role       string `json:"role,omitempty"`
	ObjectType string `json:"objectType,omitempty"`
	EntityID   *int64 `json:"entityId,omitempty"`
	jwt.RegisteredClaims
}

// IssueOption adds optional claims to an issued token.
type IssueOption func(*Claims)

// WithRole embeds the caller's role tag.
func WithRole(role domain.Role) IssueOption {
	return func(c *Claims) {
		c.Role = string(role)
	}
}

// WithObjectType records the kind of record the subject belongs to.
func WithObjectType(objectType string) IssueOption {
	return func(c *Claims) {
		c.ObjectType = objectType
	}
}

// WithEntity records the record kind and embeds its identifier.
func WithEntity(objectType string, id int64) IssueOption {
	return func(c *Claims) {
		c.ObjectType = objectType
		c.EntityID = &id
	}
}

// Issue builds and signs a JWT for the subject.
func (tm *TokenManager) Issue(subject string, opts ...IssueOption) (string, time.Time, error) {
	if !tm.key.valid() {
		return "", time.Time{}, ErrWeakSigningSecret
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	for _, opt := range opts {
		opt(claims)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.key.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Verify checks signature and expiry and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" || !tm.key.valid() {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return tm.key.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject returns the verified token subject.
func (tm *TokenManager) Subject(tokenStr string) (string, error) {
	claims, err := tm.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
