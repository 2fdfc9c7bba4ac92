package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ValidRole reports whether role is one of the recognised roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is the credential-bearing aggregate. PasswordHash and RefreshTokens
// never leave the server: the hash is irreversible bcrypt output and the
// token set is the server-side half of the refresh-token validity invariant.
// Only the session manager mutates RefreshTokens.
type User struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Username      string     `json:"username" bson:"username"`
	Email         string     `json:"email" bson:"email"`
	PasswordHash  string     `json:"-" bson:"password_hash"`
	FirstName     string     `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Bio           string     `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Role          string     `json:"role" bson:"role"`
	IsActive      bool       `json:"is_active" bson:"is_active"`
	RefreshTokens TokenSet   `json:"-" bson:"refresh_tokens"`
	LastLogin     *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}
