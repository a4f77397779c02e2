// Package handler implements the HTTP endpoints of the pizza
// service. Handlers bind request bodies, enforce the identity-match
// authorization rules that middleware cannot see, call into the
// repositories and translate sentinel errors into structured
// {message} responses. No stack detail ever crosses the boundary.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/jsbarre1/jwt-pizza/internal/repository"
)

// dbTimeout bounds every storage call made on behalf of a request.
const dbTimeout = 5 * time.Second

// opCtx derives a bounded context for storage calls from the
// request context, so an abandoned request cancels its query.
func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// serverError maps infrastructure failures to a response: storage
// timeouts become 503, anything else a logged 500.
func serverError(c echo.Context, op string, err error) error {
	if errors.Is(err, repository.ErrStorageUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "storage unavailable"})
	}
	logrus.WithError(err).Errorf("%s failed", op)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// queryInt parses an integer query parameter, returning def when
// absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
