package domain

import "errors"

// Authentication failures. ErrInvalidCredentials deliberately covers unknown
// email, wrong password and inactive account so the three cases are
// indistinguishable to a caller probing for registered addresses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrMissingToken        = errors.New("missing authentication token")
	ErrWrongPassword       = errors.New("current password is incorrect")
)

// Registration conflicts. Email takes priority when both fields collide.
var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrPostNotFound    = errors.New("post not found")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrCommentNotFound = errors.New("comment not found")
)
