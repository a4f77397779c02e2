package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
)

// FranchiseHandler serves the franchise directory endpoints.
type FranchiseHandler struct {
	Cfg        config.Config
	Franchises *repository.FranchiseRepo
}

func NewFranchiseHandler(cfg config.Config, franchises *repository.FranchiseRepo) *FranchiseHandler {
	return &FranchiseHandler{Cfg: cfg, Franchises: franchises}
}

// List is public: anonymous callers can browse franchises and their
// stores when choosing where to order.
func (h *FranchiseHandler) List(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	franchises, more, err := h.Franchises.List(ctx,
		queryInt(c, "page", 0),
		queryInt(c, "limit", h.Cfg.ListPageSize),
		c.QueryParam("name"))
	if err != nil {
		return serverError(c, "list franchises", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"franchises": franchises, "more": more})
}

// Get returns a single franchise with its admins and stores.
func (h *FranchiseHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid franchise id"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	f, err := h.Franchises.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown franchise"})
		}
		return serverError(c, "get franchise", err)
	}
	return c.JSON(http.StatusOK, f)
}

type createFranchiseReq struct {
	Name     string   `json:"name"`
	AdminIDs []uint64 `json:"adminIds"`
}

// Create registers a franchise and grants its admin users a
// franchisee role scoped to it. Admin only.
func (h *FranchiseHandler) Create(c echo.Context) error {
	var req createFranchiseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "franchise name is required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	f, err := h.Franchises.Create(ctx, req.Name, req.AdminIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "franchise name already exists"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown admin user"})
		}
		return serverError(c, "create franchise", err)
	}
	return c.JSON(http.StatusOK, f)
}

// Close deletes the franchise and all its stores atomically. Admin
// only. Closing twice reports 404 so double submission is visible.
func (h *FranchiseHandler) Close(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid franchise id"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Franchises.Close(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown franchise"})
		}
		return serverError(c, "close franchise", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "franchise deleted"})
}

type createStoreReq struct {
	Name string `json:"name"`
}

// CreateStore opens a store under the franchise. Allowed for global
// admins and franchisees scoped to this franchise; the route
// middleware enforces that.
func (h *FranchiseHandler) CreateStore(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid franchise id"})
	}
	var req createStoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "store name is required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	s, err := h.Franchises.CreateStore(ctx, id, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown franchise"})
		}
		return serverError(c, "create store", err)
	}
	return c.JSON(http.StatusOK, s)
}
