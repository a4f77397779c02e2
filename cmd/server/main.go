package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/config"
	"github.com/jsbarre1/jwt-pizza/internal/database"
	"github.com/jsbarre1/jwt-pizza/internal/handler"
	"github.com/jsbarre1/jwt-pizza/internal/model"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
	"github.com/jsbarre1/jwt-pizza/internal/router"
)

// defaultMenu seeds the catalog on first start. The catalog is
// externally supplied and read-only through the API.
var defaultMenu = []model.MenuItem{
	{Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"},
	{Title: "Pepperoni", Image: "pizza2.png", Price: 0.0042, Description: "Spicy treat"},
	{Title: "Margarita", Image: "pizza3.png", Price: 0.0014, Description: "Essential classic"},
	{Title: "Crusty", Image: "pizza4.png", Price: 0.0024, Description: "A dry mouthed favorite"},
}

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Init(ctx, db); err != nil {
		logrus.WithError(err).Fatal("schema init failed")
	}

	users := repository.NewUserRepo(db)
	franchises := repository.NewFranchiseRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)

	if err := menu.Seed(ctx, defaultMenu); err != nil {
		logrus.WithError(err).Fatal("menu seed failed")
	}
	if err := users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		logrus.WithError(err).Fatal("admin bootstrap failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable; rate limiting and menu cache disabled, revocation is process-local")
	}

	tokens := auth.NewTokenService(
		auth.StaticKey(cfg.TokenSecret),
		time.Duration(cfg.TokenTTLMin)*time.Minute,
		auth.NewRevocationList(rdb))
	receipts := auth.NewReceiptSigner(auth.StaticKey(cfg.ReceiptSecret))

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		User:      handler.NewUserHandler(cfg, users),
		Franchise: handler.NewFranchiseHandler(cfg, franchises),
		Order:     handler.NewOrderHandler(cfg, menu, orders, receipts, rdb),
	}, tokens, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.Fatal(err)
	}
}
