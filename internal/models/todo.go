package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is a single to-do item owned by exactly one user. All reads and
// writes are scoped by UserID equality.
type Todo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Completed   bool               `bson:"completed" json:"completed"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
}
