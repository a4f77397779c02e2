package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/middleware"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users}
}

// Me returns the caller's own user, rebuilt from the decoded token
// claims without touching storage.
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.ClaimsFrom(c).User())
}

// List returns one admin-only page of users filtered by name.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	users, more, err := h.Users.List(ctx,
		queryInt(c, "page", 0),
		queryInt(c, "limit", h.Cfg.ListPageSize),
		c.QueryParam("name"))
	if err != nil {
		return serverError(c, "list users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "more": more})
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Update applies a partial profile update. Callers may update
// themselves; admins may update anyone.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	claims := middleware.ClaimsFrom(c)
	if claims.ID != id && !claims.Roles.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown user"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return serverError(c, "update user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes a user. Admin only. Historical orders keep their
// diner reference.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown user"})
		}
		return serverError(c, "delete user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
