package handler

import "github.com/inkpress/blog-api/internal/core/domain"

// Registration deliberately has no role field: every new account is a plain
// user, and elevation goes through the admin-gated role endpoint.
type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=30,alphanum"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// refreshRequest is the body-field fallback for clients that cannot use the
// refresh cookie.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type registerResponse struct {
	User   *domain.User      `json:"user"`
	Tokens tokenPairResponse `json:"tokens"`
}

// sessionResponse is returned by login and refresh: the refresh token
// travels only in the httpOnly cookie, never in the body.
type sessionResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}
