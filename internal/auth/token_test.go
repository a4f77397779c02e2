package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:    3,
		Name:  "Kai Chen",
		Email: "d@jwt.com",
		Roles: model.Roles{
			{Kind: model.RoleDiner},
			{Kind: model.RoleFranchisee, ObjectID: 2},
		},
	}
}

func newTestService(rdb *redis.Client) *TokenService {
	return NewTokenService(StaticKey("test-secret"), time.Hour, NewRevocationList(rdb))
}

func TestMintDecodeRoundTrip(t *testing.T) {
	svc := newTestService(nil)
	u := testUser()

	token, err := svc.Mint(u)
	require.NoError(t, err)

	claims, err := svc.Decode(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.ID)
	assert.Equal(t, u.Name, claims.Name)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, u.Roles, claims.Roles)
	assert.Equal(t, u, claims.User())
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	svc := newTestService(nil)
	token, err := svc.Mint(testUser())
	require.NoError(t, err)

	// Flip one byte anywhere in the token.
	mutated := []byte(token)
	if mutated[10] == 'A' {
		mutated[10] = 'B'
	} else {
		mutated[10] = 'A'
	}
	_, err = svc.Decode(context.Background(), string(mutated))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	token, err := newTestService(nil).Mint(testUser())
	require.NoError(t, err)

	other := NewTokenService(StaticKey("other-secret"), time.Hour, NewRevocationList(nil))
	_, err = other.Decode(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInvalidateLocalFallback(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	token, err := svc.Mint(testUser())
	require.NoError(t, err)

	_, err = svc.Decode(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, token))
	_, err = svc.Decode(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Idempotent: revoking again still succeeds.
	assert.NoError(t, svc.Invalidate(ctx, token))
}

func TestInvalidateRejectsForeignToken(t *testing.T) {
	svc := newTestService(nil)
	err := svc.Invalidate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInvalidateWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := newTestService(rdb)
	ctx := context.Background()

	token, err := svc.Mint(testUser())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx, token))

	_, err = svc.Decode(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The revocation entry expires with the token itself.
	mr.FastForward(2 * time.Hour)
	revoked, err := NewRevocationList(rdb).IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}
