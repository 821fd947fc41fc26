package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Argon2id hash, never returned in JSON

	// Reset fields are set and cleared together; expiry is enforced at
	// lookup time, stale tokens are not actively deleted.
	ResetPasswordToken   string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"reset_password_expires,omitempty" json:"-"`
}

// PublicUser is the subset of User returned by auth endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}
