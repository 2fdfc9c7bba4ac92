package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// UserLoader fetches the user named by a verified access token. The loaded
// record's IsActive flag is checked on every request, so deactivating an
// account takes effect before the token expires.
type UserLoader interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// Auth verifies the bearer access token, loads the user and injects it into
// the request context. Requests without a valid token and an active user are
// rejected with 401.
func Auth(codec ports.TokenCodec, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authenticate(c, codec, users)
			if err != nil {
				return err
			}
			attach(c, user)
			return next(c)
		}
	}
}

// OptionalAuth attempts the same authentication but proceeds as anonymous on
// any failure. Used by endpoints that behave differently for authenticated
// and anonymous callers without requiring login.
func OptionalAuth(codec ports.TokenCodec, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, err := authenticate(c, codec, users); err == nil {
				attach(c, user)
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, codec ports.TokenCodec, users UserLoader) (*domain.User, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := codec.VerifyAccessToken(token)
	if err != nil {
		// domain.ErrTokenExpired or domain.ErrTokenInvalid; the central
		// error handler maps both to 401 with distinct messages.
		return nil, err
	}

	user, err := users.GetUser(c.Request().Context(), claims.UserID)
	if err != nil || !user.IsActive {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return user, nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

func attach(c echo.Context, user *domain.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
	c.Set("role", user.Role)
}
