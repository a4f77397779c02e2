package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/middleware"
	"github.com/jsbarre1/jwt-pizza/internal/model"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
	"github.com/jsbarre1/jwt-pizza/internal/service"
)

// menuCacheKey and menuCacheTTL control the redis cache in front of
// the catalog. The menu changes only on reseed, so a short TTL is
// plenty and staleness is harmless.
const (
	menuCacheKey = "cache:menu"
	menuCacheTTL = 60 * time.Second
)

// OrderHandler serves the order engine endpoints.
type OrderHandler struct {
	Cfg      config.Config
	Menu     *repository.MenuRepo
	Orders   *repository.OrderRepo
	Receipts *auth.ReceiptSigner
	Redis    *redis.Client
}

func NewOrderHandler(cfg config.Config, menu *repository.MenuRepo, orders *repository.OrderRepo, receipts *auth.ReceiptSigner, rdb *redis.Client) *OrderHandler {
	return &OrderHandler{Cfg: cfg, Menu: menu, Orders: orders, Receipts: receipts, Redis: rdb}
}

// GetMenu returns the catalog. Public, cached in redis when a
// client is configured.
func (h *OrderHandler) GetMenu(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, menuCacheKey).Bytes(); err == nil {
			return c.JSONBlob(http.StatusOK, cached)
		}
	}

	items, err := h.Menu.List(ctx)
	if err != nil {
		return serverError(c, "get menu", err)
	}
	if h.Redis != nil {
		if body, err := json.Marshal(items); err == nil {
			_ = h.Redis.Set(ctx, menuCacheKey, body, menuCacheTTL).Err()
		}
	}
	return c.JSON(http.StatusOK, items)
}

type orderItemReq struct {
	MenuID model.FlexID `json:"menuId"`
}

type createOrderReq struct {
	FranchiseID model.FlexID   `json:"franchiseId"`
	StoreID     model.FlexID   `json:"storeId"`
	Items       []orderItemReq `json:"items"`
}

// Create places an order for the authenticated caller. The order
// insert and the store revenue credit commit in one transaction;
// the signed receipt is minted only after the commit succeeded.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "order must contain at least one item"})
	}
	menuIDs := make([]uint64, 0, len(req.Items))
	for _, it := range req.Items {
		menuIDs = append(menuIDs, uint64(it.MenuID))
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := opCtx(c)
	defer cancel()

	order, err := h.Orders.Create(ctx, claims.ID, uint64(req.FranchiseID), uint64(req.StoreID), menuIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidStore):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "store does not belong to franchise"})
		case errors.Is(err, repository.ErrInvalidMenuItem):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown menu item"})
		}
		return serverError(c, "create order", err)
	}

	receipt, err := h.Receipts.Sign(order)
	if err != nil {
		return serverError(c, "sign receipt", err)
	}

	// Best effort; the order is already committed.
	go func(o model.Order) {
		_ = service.PublishOrderPlaced(context.Background(), o)
	}(order)

	return c.JSON(http.StatusOK, echo.Map{"order": order, "jwt": receipt})
}

// History returns one page of the caller's own orders, newest
// first. Admins may read any diner's history via the dinerId query
// parameter.
func (h *OrderHandler) History(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	dinerID := claims.ID
	if v := queryInt(c, "dinerId", 0); v > 0 && claims.Roles.IsAdmin() {
		dinerID = uint64(v)
	}
	page := queryInt(c, "page", 0)

	ctx, cancel := opCtx(c)
	defer cancel()

	orders, err := h.Orders.ListForDiner(ctx, dinerID, page, h.Cfg.ListPageSize)
	if err != nil {
		return serverError(c, "list orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"dinerId": dinerID, "orders": orders, "page": page})
}

type verifyReq struct {
	JWT string `json:"jwt"`
}

// Verify checks a receipt token. Verification is a pure decode of
// the self-contained receipt; failure is a diagnostic result with
// an error payload, not an internal fault.
func (h *OrderHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	order, err := h.Receipts.Verify(req.JWT)
	if err != nil {
		logrus.WithError(err).Debug("receipt verification failed")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "order is not valid",
			"payload": echo.Map{"error": "invalid receipt token"},
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order is valid", "payload": order})
}
