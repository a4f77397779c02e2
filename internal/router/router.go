package router // package router defines how HTTP routes are registered for the API

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/handler"
	"github.com/jsbarre1/jwt-pizza/internal/middleware"
)

// Handlers collects the endpoint implementations wired by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Franchise *handler.FranchiseHandler
	Order     *handler.OrderHandler
}

// Register wires every route of the service onto the Echo instance.
// Public routes (franchise browsing, the menu, docs, health) carry
// no middleware; everything else passes Authenticate first and the
// role guards after.
func Register(e *echo.Echo, h Handlers, tokens *auth.TokenService, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	authed := middleware.Authenticate(tokens)

	e.GET("/healthz", handler.Health)
	e.GET("/api/docs", handler.Docs)

	// Credential endpoints are rate limited to slow brute forcing.
	ag := e.Group("/api/auth", middleware.RateLimit(rlCfg, rdb))
	ag.POST("", h.Auth.Register)
	ag.PUT("", h.Auth.Login)
	ag.DELETE("", h.Auth.Logout, authed)

	ug := e.Group("/api/user", authed)
	ug.GET("/me", h.User.Me)
	ug.GET("", h.User.List, middleware.RequireAdmin())
	ug.PUT("/:id", h.User.Update)
	ug.DELETE("/:id", h.User.Delete, middleware.RequireAdmin())

	// Franchise browsing is public; management is role gated.
	e.GET("/api/franchise", h.Franchise.List)
	e.GET("/api/franchise/:id", h.Franchise.Get)
	fg := e.Group("/api/franchise", authed)
	fg.POST("", h.Franchise.Create, middleware.RequireAdmin())
	fg.DELETE("/:id", h.Franchise.Close, middleware.RequireAdmin())
	fg.POST("/:id/store", h.Franchise.CreateStore,
		middleware.RequireFranchiseAccess(pathFranchiseID))

	e.GET("/api/order/menu", h.Order.GetMenu)
	og := e.Group("/api/order", authed)
	og.POST("", h.Order.Create)
	og.GET("", h.Order.History)
	og.POST("/verify", h.Order.Verify)
}

// pathFranchiseID resolves the franchise scope of store routes from
// the :id path parameter.
func pathFranchiseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
