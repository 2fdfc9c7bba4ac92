package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	googleFn         func(ctx context.Context, idToken string) (*ports.AuthResult, error)
	refreshFn        func(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
	logoutFn         func(ctx context.Context, userID, refreshToken string) error
	logoutAllFn      func(ctx context.Context, userID string) error
	changePasswordFn func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) LoginWithGoogle(ctx context.Context, idToken string) (*ports.AuthResult, error) {
	return s.googleFn(ctx, idToken)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	return s.logoutFn(ctx, userID, refreshToken)
}

func (s *stubAuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.logoutAllFn(ctx, userID)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return s.changePasswordFn(ctx, userID, currentPassword, newPassword)
}

func (s *stubAuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubAuthService) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type stubCodec struct {
	ttl time.Duration
}

func (s stubCodec) IssueAccessToken(*domain.User) (string, error) { return "access", nil }

func (s stubCodec) IssueRefreshToken(string) (string, error) { return "refresh", nil }
func (s stubCodec) VerifyAccessToken(string) (*ports.AccessClaims, error) {
	return nil, domain.ErrTokenInvalid
}
func (s stubCodec) VerifyRefreshToken(string) (*ports.RefreshClaims, error) {
	return nil, domain.ErrInvalidRefreshToken
}
func (s stubCodec) RefreshTTL() time.Duration { return s.ttl }

func authResult() *ports.AuthResult {
	return &ports.AuthResult{
		User:         &domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: domain.RoleUser},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
}

func newAuthTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return authResult(), nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{ttl: time.Hour})

	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"supersecret"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	cookie := refreshCookie(rec)
	if cookie == nil {
		t.Fatal("expected refresh cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie not hardened: %+v", cookie)
	}
	if cookie.Path != refreshCookiePath {
		t.Fatalf("expected cookie path %s, got %s", refreshCookiePath, cookie.Path)
	}
	if cookie.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("cookie max-age does not track refresh ttl: %d", cookie.MaxAge)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user in response")
	}
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash leaked in response")
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, stubCodec{})

	// Password below the minimum length never reaches the service.
	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"short"}`)

	err := h.Register(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_RoleFieldIgnored(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return authResult(), nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{ttl: time.Hour})

	// A smuggled role field binds to nothing; the service input has no role.
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"mallory","email":"m@example.com","password":"supersecret","role":"admin"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_SetsCookieAndOmitsRefreshFromBody(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			return authResult(), nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{ttl: time.Hour})

	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"supersecret"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if refreshCookie(rec) == nil {
		t.Fatal("expected refresh cookie")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "access-token" {
		t.Fatalf("missing access token: %+v", resp)
	}
	if _, present := resp["refresh_token"]; present {
		t.Fatal("refresh token must not appear in the login body")
	}
}

func TestAuthHandler_Refresh_FromCookie(t *testing.T) {
	var presented string
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.AuthResult, error) {
			presented = refreshToken
			return authResult(), nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{ttl: time.Hour})

	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "cookie-token"})

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if presented != "cookie-token" {
		t.Fatalf("expected cookie token to be presented, got %q", presented)
	}
	cookie := refreshCookie(rec)
	if cookie == nil || cookie.Value != "refresh-token" {
		t.Fatalf("expected rotated cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Refresh_BodyFallback(t *testing.T) {
	var presented string
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.AuthResult, error) {
			presented = refreshToken
			return authResult(), nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{ttl: time.Hour})

	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"body-token"}`)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if presented != "body-token" {
		t.Fatalf("expected body token to be presented, got %q", presented)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, stubCodec{})

	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/refresh", "")
	if err := h.Refresh(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthHandler_Refresh_FailureClearsCookie(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidRefreshToken
		},
	}
	h := NewAuthHandler(stub, stubCodec{})

	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "stolen-token"})

	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	cookie := refreshCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var removedToken string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, userID, refreshToken string) error {
			removedToken = refreshToken
			return nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{})

	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Set("user", &domain.User{ID: "user-1"})
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "session-token"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if removedToken != "session-token" {
		t.Fatalf("expected presented token removed, got %q", removedToken)
	}
	cookie := refreshCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestAuthHandler_ChangePassword_ClearsCookie(t *testing.T) {
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, userID, currentPassword, newPassword string) error {
			if currentPassword != "old-pass-123" || newPassword != "new-pass-123" {
				t.Fatalf("unexpected passwords: %q %q", currentPassword, newPassword)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, stubCodec{})

	c, rec := newAuthTestContext(t, http.MethodPut, "/auth/change-password",
		`{"current_password":"old-pass-123","new_password":"new-pass-123"}`)
	c.Set("user", &domain.User{ID: "user-1"})

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cookie := refreshCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}
