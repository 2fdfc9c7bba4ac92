package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository persists users and their refresh-token sets. The token set
// lives inside the user document, so every session mutation is a
// single-document update and inherits MongoDB's per-document atomicity.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	FirstName     string             `bson:"first_name,omitempty"`
	LastName      string             `bson:"last_name,omitempty"`
	Bio           string             `bson:"bio,omitempty"`
	AvatarURL     string             `bson:"avatar_url,omitempty"`
	Role          string             `bson:"role"`
	IsActive      bool               `bson:"is_active"`
	RefreshTokens []string           `bson:"refresh_tokens"`
	LastLogin     *time.Time         `bson:"last_login,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toDomain(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:            mu.ID.Hex(),
		Username:      mu.Username,
		Email:         mu.Email,
		PasswordHash:  mu.PasswordHash,
		FirstName:     mu.FirstName,
		LastName:      mu.LastName,
		Bio:           mu.Bio,
		AvatarURL:     mu.AvatarURL,
		Role:          mu.Role,
		IsActive:      mu.IsActive,
		RefreshTokens: domain.TokenSet(mu.RefreshTokens),
		LastLogin:     mu.LastLogin,
		CreatedAt:     mu.CreatedAt,
		UpdatedAt:     mu.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Username:      user.Username,
		Email:         user.Email,
		PasswordHash:  user.PasswordHash,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Bio:           user.Bio,
		AvatarURL:     user.AvatarURL,
		Role:          user.Role,
		IsActive:      user.IsActive,
		RefreshTokens: []string{},
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if conflict := duplicateKeyConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.RefreshTokens = domain.TokenSet{}
	return &created, nil
}

// duplicateKeyConflict maps a unique-index violation to the conflicting
// field's domain error by the index name carried in the server message.
// Matching on field names would misfire on values like "emailfan".
func duplicateKeyConflict(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "email_unique") {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(&mu), nil
}

func (r *UserRepository) AppendRefreshToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$push": bson.M{"refresh_tokens": token},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// RotateRefreshToken swaps oldToken for newToken in one conditional update.
// The filter only matches while oldToken is still in the set, so of two
// concurrent refreshes presenting the same token exactly one succeeds; the
// other observes ErrInvalidRefreshToken. The positional operator replaces the
// matched element in place.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "refresh_tokens": oldToken},
		bson.M{"$set": bson.M{
			"refresh_tokens.$": newToken,
			"updated_at":       time.Now().UTC(),
		}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrInvalidRefreshToken
		}
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) RemoveRefreshToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$pull": bson.M{"refresh_tokens": token},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"refresh_tokens": []string{},
			"updated_at":     time.Now().UTC(),
		},
	})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set": bson.M{"last_login": at},
	})
}

// UpdatePassword swaps the hash and clears the token set in the same update,
// so no window exists where old sessions survive the new password.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"password_hash":  passwordHash,
			"refresh_tokens": []string{},
			"updated_at":     time.Now().UTC(),
		},
	})
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID, role string) (*domain.User, error) {
	return r.findOneAndUpdate(ctx, userID, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.FirstName != nil {
		set["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		set["last_name"] = *in.LastName
	}
	if in.Bio != nil {
		set["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		set["avatar_url"] = *in.AvatarURL
	}
	return r.findOneAndUpdate(ctx, userID, bson.M{"$set": set})
}

func (r *UserRepository) updateByID(ctx context.Context, userID string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, userID string, update bson.M) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return toDomain(&mu), nil
}

// EnsureIndexes creates the unique indexes backing registration conflicts.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
