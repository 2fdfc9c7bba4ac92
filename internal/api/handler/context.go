package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Auth
// middleware. Its presence proves the middleware ran; a missing user on a
// protected route is a wiring error and is rejected rather than trusted.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}

// viewer returns the viewer's identity for endpoints that behave differently
// for authenticated and anonymous callers. Anonymous viewers get empty
// strings.
func viewer(c echo.Context) (id, role string) {
	if user, _ := c.Get("user").(*domain.User); user != nil {
		return user.ID, user.Role
	}
	return "", ""
}
