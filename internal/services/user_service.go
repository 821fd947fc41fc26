package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/models"
	"github.com/arnavmishra07/taskify-backend/pkg/utils"
)

var (
	ErrEmailTaken        = errors.New("user already exists with this email")
	ErrUserNotFound      = errors.New("user not found")
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

const (
	// ResetTokenBytes gives 256 bits of entropy per reset token.
	ResetTokenBytes = 32
	// ResetTokenTTL is how long a reset token stays valid.
	ResetTokenTTL = time.Hour
)

// CreateUser hashes the raw password and inserts a new user. Returns
// ErrEmailTaken when the email already exists (exact, case-sensitive
// match). The raw password is discarded after hashing and never logged.
func CreateUser(ctx context.Context, name, email, rawPassword string) (*models.User, error) {
	// Pre-check gives the friendly error; the unique index on email
	// closes the race between concurrent signups.
	err := database.DB.Collection(database.UsersCollection).
		FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashed, err := utils.HashPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Email:     email,
		Password:  hashed,
	}

	if _, err := database.DB.Collection(database.UsersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

// FindUserByEmail returns ErrUserNotFound when no user matches.
func FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := database.DB.Collection(database.UsersCollection).
		FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns ErrUserNotFound when no user matches.
func FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user models.User
	err = database.DB.Collection(database.UsersCollection).
		FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// VerifyUserPassword recomputes the stored hash with the supplied password
// and compares in constant time.
func VerifyUserPassword(user *models.User, rawPassword string) bool {
	ok, err := utils.VerifyPassword(rawPassword, user.Password)
	return err == nil && ok
}

// BeginPasswordReset generates a reset token for the given email. When no
// user matches it performs no mutation and returns ok=false; callers must
// still report success so email existence is not revealed. A prior
// outstanding token for the user is overwritten, so at most one reset
// token is live per user.
func BeginPasswordReset(ctx context.Context, email string) (token string, ok bool, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", false, err
	}
	token = hex.EncodeToString(tokenBytes)
	expires := time.Now().Add(ResetTokenTTL)

	res, err := database.DB.Collection(database.UsersCollection).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"reset_password_token":   token,
			"reset_password_expires": expires,
			"updated_at":             time.Now(),
		}},
	)
	if err != nil {
		return "", false, err
	}
	if res.MatchedCount == 0 {
		return "", false, nil
	}
	return token, true, nil
}

// CompletePasswordReset consumes a reset token: it looks up a user whose
// token matches and whose expiry is still in the future, stores the new
// password hash and clears both reset fields in the same document update.
// Unknown and expired tokens fail identically with ErrResetTokenInvalid.
func CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	res := database.DB.Collection(database.UsersCollection).FindOneAndUpdate(ctx,
		bson.M{
			"reset_password_token":   token,
			"reset_password_expires": bson.M{"$gt": time.Now()},
		},
		bson.M{
			"$set": bson.M{
				"password":   hashed,
				"updated_at": time.Now(),
			},
			"$unset": bson.M{
				"reset_password_token":   "",
				"reset_password_expires": "",
			},
		},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetTokenInvalid
		}
		return err
	}
	return nil
}
