package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/model"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	return auth.NewTokenService(auth.StaticKey("test secret"), time.Hour, auth.NewRevocationList(nil))
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// run sends a request through the given middleware chain and returns
// the recorder.
func run(t *testing.T, h echo.HandlerFunc, header string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func TestAuthenticateAcceptsMintedToken(t *testing.T) {
	tokens := newTokenService(t)
	raw, err := tokens.Mint(model.User{ID: 3, Name: "Kai Chen", Email: "d@jwt.com",
		Roles: model.Roles{{Kind: model.RoleDiner}}})
	require.NoError(t, err)

	var got *auth.Claims
	capture := func(c echo.Context) error {
		got = ClaimsFrom(c)
		assert.Equal(t, raw, TokenFrom(c))
		return okHandler(c)
	}

	rec := run(t, capture, "Bearer "+raw, Authenticate(tokens))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, uint64(3), got.ID)
	assert.True(t, got.Roles.Has(model.RoleDiner))
}

func TestAuthenticateRejectsMissingAndMalformed(t *testing.T) {
	tokens := newTokenService(t)
	for _, header := range []string{"", "Basic abc", "Bearer not.a.token"} {
		rec := run(t, okHandler, header, Authenticate(tokens))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
	}
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	tokens := newTokenService(t)
	raw, err := tokens.Mint(model.User{ID: 3, Email: "d@jwt.com"})
	require.NoError(t, err)
	require.NoError(t, tokens.Invalidate(context.Background(), raw))

	rec := run(t, okHandler, "Bearer "+raw, Authenticate(tokens))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := newTokenService(t)

	admin, err := tokens.Mint(model.User{ID: 1, Email: "a@jwt.com",
		Roles: model.Roles{{Kind: model.RoleAdmin}}})
	require.NoError(t, err)
	diner, err := tokens.Mint(model.User{ID: 3, Email: "d@jwt.com",
		Roles: model.Roles{{Kind: model.RoleDiner}}})
	require.NoError(t, err)

	rec := run(t, okHandler, "Bearer "+admin, Authenticate(tokens), RequireAdmin())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = run(t, okHandler, "Bearer "+diner, Authenticate(tokens), RequireAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"forbidden"}`, rec.Body.String())
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	rec := run(t, okHandler, "", RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireFranchiseAccess(t *testing.T) {
	tokens := newTokenService(t)
	resolveTwo := func(echo.Context) (uint64, error) { return 2, nil }

	cases := []struct {
		name  string
		roles model.Roles
		want  int
	}{
		{"admin", model.Roles{{Kind: model.RoleAdmin}}, http.StatusOK},
		{"franchisee of franchise", model.Roles{{Kind: model.RoleFranchisee, ObjectID: 2}}, http.StatusOK},
		{"franchisee elsewhere", model.Roles{{Kind: model.RoleFranchisee, ObjectID: 5}}, http.StatusForbidden},
		{"diner", model.Roles{{Kind: model.RoleDiner}}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tokens.Mint(model.User{ID: 9, Email: "f@jwt.com", Roles: tc.roles})
			require.NoError(t, err)
			rec := run(t, okHandler, "Bearer "+raw,
				Authenticate(tokens), RequireFranchiseAccess(resolveTwo))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
