package ports

import (
	"context"
	"time"

	"github.com/inkpress/blog-api/internal/core/domain"
)

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	UserID   string
	Username string
	Email    string
	Role     string
}

// RefreshClaims are the verified contents of a refresh token. Cryptographic
// validity alone does not make the token usable — it must also be present in
// the owning user's refresh-token set.
type RefreshClaims struct {
	UserID string
}

// TokenCodec issues and verifies the two token kinds. Access and refresh
// tokens are signed with independent secrets so neither can be presented
// where the other is required.
type TokenCodec interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(userID string) (string, error)
	// VerifyAccessToken fails with domain.ErrTokenExpired or domain.ErrTokenInvalid.
	VerifyAccessToken(token string) (*AccessClaims, error)
	// VerifyRefreshToken fails with domain.ErrRefreshTokenExpired or domain.ErrInvalidRefreshToken.
	VerifyRefreshToken(token string) (*RefreshClaims, error)
	// RefreshTTL is exposed so the transport layer can align the refresh
	// cookie's max-age with the token's own expiry.
	RefreshTTL() time.Duration
}

// UpdateProfileInput carries the user-editable profile fields. Nil pointers
// mean "leave unchanged".
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

// AuthRepository defines persistence for users and their refresh-token sets.
// Every mutation is a single-document update; rotation is conditional so two
// concurrent refreshes presenting the same token cannot both succeed.
type AuthRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrUsername returns any user matching either field, used as
	// the single pre-registration conflict lookup.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)

	AppendRefreshToken(ctx context.Context, userID, token string) error
	// RotateRefreshToken atomically replaces oldToken with newToken in the
	// user's set. Fails with domain.ErrInvalidRefreshToken when oldToken is
	// not present (already rotated, revoked, or never issued).
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	RemoveRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshTokens(ctx context.Context, userID string) error

	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	// UpdatePassword replaces the hash and clears the refresh-token set in
	// one update: a password change invalidates every session.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID, role string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
}

// RegisterInput is the DTO passed from the transport layer to Register.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by every operation that issues a token pair.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates registration, login and the refresh-token
// lifecycle. It is the only component that mutates a user's token set.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	// SetRole is the privileged elevation path; registration never accepts a role.
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}
