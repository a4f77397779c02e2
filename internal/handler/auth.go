package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/middleware"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
)

// AuthHandler bundles dependencies for the /api/auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *auth.TokenService
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// Register creates a diner account and returns it with a freshly
// minted session token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email, and password are required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return serverError(c, "register", err)
	}

	token, err := h.Tokens.Mint(u)
	if err != nil {
		return serverError(c, "mint token", err)
	}
	return c.JSON(http.StatusOK, authResp{User: u, Token: token})
}

// Login verifies credentials and returns the user with a new
// session token. Unknown email and wrong password are
// indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return serverError(c, "login", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	token, err := h.Tokens.Mint(u)
	if err != nil {
		return serverError(c, "mint token", err)
	}
	return c.JSON(http.StatusOK, authResp{User: u, Token: token})
}

// Logout invalidates the bearer token that authenticated this
// request. Revoking twice is harmless.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Tokens.Invalidate(ctx, middleware.TokenFrom(c)); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		return serverError(c, "logout", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}
