package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/blog-api/internal/api/metrics"
	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// GoogleVerifier abstracts Google ID-token validation.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (email, name string, err error)
}

// AuthService is the session manager: the only component that mutates a
// user's refresh-token set. Every operation is a single read-modify-write
// against one user document; rotation relies on the repository's conditional
// update so concurrent refreshes of the same token resolve first-writer-wins.
type AuthService struct {
	repo   ports.AuthRepository
	codec  ports.TokenCodec
	google GoogleVerifier
	log    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, codec ports.TokenCodec, google GoogleVerifier, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, codec: codec, google: google, log: log}
}

// Register creates a user and issues the first token pair. The conflict
// check is a single lookup covering both email and username, with email
// taking priority when both collide. The role is always "user": elevation
// happens only through SetRole behind an admin gate.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if existing, err := s.repo.FindByEmailOrUsername(ctx, email, username); err == nil && existing != nil {
		if existing.Email == email {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.ErrUsernameTaken
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	metrics.RegistrationsTotal.Inc()

	return s.issueTokens(ctx, created)
}

// Login authenticates by email and password. Unknown email, wrong password
// and inactive account all fail with the same error so callers cannot
// enumerate registered addresses.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
	user.LastLogin = &now

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issueTokens(ctx, user)
}

// LoginWithGoogle verifies a Google ID token and signs in the matching user,
// creating the account on first sign-in. Google-created accounts get an
// unusable password hash; they authenticate only through this path until a
// password is set.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*ports.AuthResult, error) {
	if s.google == nil {
		return nil, domain.ErrInvalidCredentials
	}
	email, name, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.createGoogleUser(ctx, email, name)
	}
	if err != nil {
		return nil, fmt.Errorf("google login: %w", err)
	}
	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
	user.LastLogin = &now

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid, registered refresh token for a new pair,
// consuming the presented token. A token that verifies cryptographically but
// is no longer in the user's set is treated as reuse of a rotated token, and
// the whole set is revoked before the call fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrUserNotFound
	}

	newAccess, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("refresh: issue access token: %w", err)
	}
	newRefresh, err := s.codec.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh: issue refresh token: %w", err)
	}

	// One conditional update: replace the presented token with the new one
	// only if it is still in the set. A concurrent refresh that consumed it
	// first, or a replay of an already-rotated token, lands here.
	if err := s.repo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefresh); err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			s.log.Warn().Str("user_id", user.ID).Msg("refresh token reuse detected, revoking all sessions")
			metrics.RefreshReuseDetectedTotal.Inc()
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			if clearErr := s.repo.ClearRefreshTokens(ctx, user.ID); clearErr != nil {
				s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("failed to revoke sessions after reuse")
			}
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("refresh: rotate token: %w", err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return &ports.AuthResult{User: user, AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

// Logout removes exactly the presented token from the user's set. Idempotent:
// an absent or empty token is not an error.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.RemoveRefreshToken(ctx, userID, refreshToken); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("logout: failed to remove refresh token")
	}
	return nil
}

// LogoutAll clears the user's entire refresh-token set.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.repo.ClearRefreshTokens(ctx, userID)
}

// ChangePassword verifies the current password, replaces the hash and
// invalidates every session, including the one making the request. The
// repository does the hash swap and the token clear in one update.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("password changed, all sessions revoked")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	return s.repo.UpdateProfile(ctx, userID, in)
}

// SetRole changes a user's role. Callers must already have passed the admin
// RBAC gate; this is the only way an account becomes admin.
func (s *AuthService) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, userID, role)
}

// issueTokens is the shared issuance sequence: access token, refresh token,
// append the refresh token to the user's set, return both.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	access, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.repo.AppendRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return &ports.AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, email, name string) (*domain.User, error) {
	now := time.Now().UTC()
	username := usernameFromEmail(email)
	first, last := splitName(name)
	return s.repo.Create(ctx, &domain.User{
		Username: username,
		Email:    email,
		// bcrypt never produces "!", so password login stays impossible.
		PasswordHash: "!",
		FirstName:    first,
		LastName:     last,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
