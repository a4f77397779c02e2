package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        string `json:"auth"`
}

// apiDocs is the static API description served at /api/docs.
var apiDocs = []endpointDoc{
	{"POST", "/api/auth", "register a new diner", "none"},
	{"PUT", "/api/auth", "login an existing user", "none"},
	{"DELETE", "/api/auth", "logout and invalidate the token", "token"},
	{"GET", "/api/user/me", "get the authenticated user", "token"},
	{"GET", "/api/user", "list users, paginated and filtered", "admin"},
	{"PUT", "/api/user/:id", "update a user", "self or admin"},
	{"DELETE", "/api/user/:id", "delete a user", "admin"},
	{"GET", "/api/franchise", "list franchises, paginated and filtered", "none"},
	{"GET", "/api/franchise/:id", "get a franchise with its stores", "none"},
	{"POST", "/api/franchise", "create a franchise", "admin"},
	{"DELETE", "/api/franchise/:id", "close a franchise and its stores", "admin"},
	{"POST", "/api/franchise/:id/store", "create a store", "admin or franchisee"},
	{"GET", "/api/order/menu", "get the pizza menu", "none"},
	{"POST", "/api/order", "create an order, returns a signed receipt", "token"},
	{"GET", "/api/order", "get the caller's order history", "token"},
	{"POST", "/api/order/verify", "verify a receipt token", "token"},
}

// Docs serves the API description.
func Docs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"version": "1", "endpoints": apiDocs})
}
