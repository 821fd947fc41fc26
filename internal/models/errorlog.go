package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorLog is a best-effort record of a request failure. Writes to this
// collection must never fail the request that produced them.
type ErrorLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message   string             `bson:"message" json:"message"`
	Stack     string             `bson:"stack,omitempty" json:"stack,omitempty"`
	Route     string             `bson:"route,omitempty" json:"route,omitempty"`
	Method    string             `bson:"method,omitempty" json:"method,omitempty"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
