package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

// ErrInvalidToken is returned when a bearer token fails signature
// verification, has expired, or has been invalidated by logout.
var ErrInvalidToken = errors.New("invalid token")

// KeyProvider supplies the HMAC signing secret. Keeping it behind
// an interface makes the secret's lifecycle (rotation, storage) a
// configuration concern rather than a hardcoded value.
type KeyProvider interface {
	SigningKey() []byte
}

// StaticKey is a KeyProvider holding a fixed secret, typically
// loaded from the environment.
type StaticKey []byte

func (k StaticKey) SigningKey() []byte { return k }

// Claims is the payload of a session token: the user's identity,
// display name and full role set, plus the registered issued-at and
// expiry claims.
type Claims struct {
	ID    uint64      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles model.Roles `json:"roles"`
	jwt.RegisteredClaims
}

// User rebuilds the API-facing user view from the claims. The
// password hash is never part of a token, so the result carries
// identity and roles only.
func (c *Claims) User() model.User {
	return model.User{ID: c.ID, Name: c.Name, Email: c.Email, Roles: c.Roles}
}

// TokenService mints and decodes HS256 session tokens. Decoding is
// a pure signature check except for the revocation lookup, which is
// the one piece of state logout requires.
type TokenService struct {
	keys    KeyProvider
	ttl     time.Duration
	revoked *RevocationList
}

func NewTokenService(keys KeyProvider, ttl time.Duration, revoked *RevocationList) *TokenService {
	return &TokenService{keys: keys, ttl: ttl, revoked: revoked}
}

// Mint signs a bearer token for the user.
func (s *TokenService) Mint(u model.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.keys.SigningKey())
}

// Decode verifies the signature and revocation state of a token
// and returns its claims. Any failure collapses to ErrInvalidToken;
// callers never learn whether the signature or the revocation check
// rejected it.
func (s *TokenService) Decode(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.keys.SigningKey(), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Invalidate marks the token unusable for future requests. It is
// idempotent; revoking an already-revoked token succeeds. A token
// that does not verify is rejected so the revocation list only ever
// holds tokens this service minted.
func (s *TokenService) Invalidate(ctx context.Context, raw string) error {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.keys.SigningKey(), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	exp := time.Now().UTC().Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.revoked.Revoke(ctx, raw, exp)
}
