package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// AuthHandler binds the session manager to HTTP. The refresh token lives in
// an httpOnly cookie scoped to /auth; the access token travels in response
// bodies and Authorization headers.
type AuthHandler struct {
	authService ports.AuthService
	codec       ports.TokenCodec
}

func NewAuthHandler(authService ports.AuthService, codec ports.TokenCodec) *AuthHandler {
	return &AuthHandler{authService: authService, codec: codec}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	c.SetCookie(newRefreshCookie(result.RefreshToken, h.codec.RefreshTTL()))
	return c.JSON(http.StatusCreated, registerResponse{
		User: result.User,
		Tokens: tokenPairResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(newRefreshCookie(result.RefreshToken, h.codec.RefreshTTL()))
	return c.JSON(http.StatusOK, sessionResponse{User: result.User, AccessToken: result.AccessToken})
}

// LoginWithGoogle handles POST /auth/google.
func (h *AuthHandler) LoginWithGoogle(c echo.Context) error {
	var req googleLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}

	c.SetCookie(newRefreshCookie(result.RefreshToken, h.codec.RefreshTTL()))
	return c.JSON(http.StatusOK, sessionResponse{User: result.User, AccessToken: result.AccessToken})
}

// Refresh handles POST /auth/refresh. The presented token is consumed and a
// fresh pair issued; reuse of an already-rotated token revokes every session
// of that user.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := h.presentedRefreshToken(c)
	if token == "" {
		return domain.ErrMissingToken
	}

	result, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		c.SetCookie(clearedRefreshCookie())
		// A vanished or deactivated user is a 401 here, not a 404: the
		// caller is unauthenticated either way.
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		return err
	}

	c.SetCookie(newRefreshCookie(result.RefreshToken, h.codec.RefreshTTL()))
	return c.JSON(http.StatusOK, sessionResponse{User: result.User, AccessToken: result.AccessToken})
}

// Logout handles POST /auth/logout (auth required). Removes only the
// presented token; other sessions stay valid.
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if token := h.presentedRefreshToken(c); token != "" {
		_ = h.authService.Logout(c.Request().Context(), user.ID, token)
	}
	c.SetCookie(clearedRefreshCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// LogoutAll handles POST /auth/logout-all (auth required). Revokes every
// refresh token the user holds.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.authService.LogoutAll(c.Request().Context(), user.ID); err != nil {
		return err
	}
	c.SetCookie(clearedRefreshCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out everywhere"})
}

// ChangePassword handles PUT /auth/change-password (auth required). Every
// session is invalidated, including this one: the caller must log in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	c.SetCookie(clearedRefreshCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed, please log in again"})
}

// presentedRefreshToken reads the refresh token from the cookie, falling
// back to the body field for cookie-less clients.
func (h *AuthHandler) presentedRefreshToken(c echo.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req refreshRequest
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}
