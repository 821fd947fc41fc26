package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/models"
)

var ErrTodoNotFound = errors.New("todo not found")

// TodoUpdate carries the optional fields of a todo update. Nil means
// "leave unchanged".
type TodoUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ownerFilter scopes a single-todo query to its owner. A todo belonging to
// someone else is indistinguishable from a missing one.
func ownerFilter(id string, userID primitive.ObjectID) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrTodoNotFound
	}
	return bson.M{"_id": objectID, "user_id": userID}, nil
}

// CreateTodo inserts a new todo owned by userID.
func CreateTodo(ctx context.Context, userID primitive.ObjectID, title, description string) (*models.Todo, error) {
	now := time.Now()
	todo := models.Todo{
		ID:          primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       title,
		Description: description,
		Completed:   false,
		UserID:      userID,
	}

	if _, err := database.DB.Collection(database.TodosCollection).InsertOne(ctx, todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListTodos returns the user's todos, newest first.
func ListTodos(ctx context.Context, userID primitive.ObjectID) ([]models.Todo, error) {
	findOptions := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := database.DB.Collection(database.TodosCollection).
		Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	todos := []models.Todo{}
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo returns ErrTodoNotFound on both a missing id and an ownership
// mismatch.
func GetTodo(ctx context.Context, userID primitive.ObjectID, id string) (*models.Todo, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}

	var todo models.Todo
	if err := database.DB.Collection(database.TodosCollection).FindOne(ctx, filter).Decode(&todo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies the non-nil fields of update and returns the updated
// document.
func UpdateTodo(ctx context.Context, userID primitive.ObjectID, id string, update TodoUpdate) (*models.Todo, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Completed != nil {
		set["completed"] = *update.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var todo models.Todo
	err = database.DB.Collection(database.TodosCollection).
		FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes the todo, returning ErrTodoNotFound on miss.
func DeleteTodo(ctx context.Context, userID primitive.ObjectID, id string) error {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return err
	}

	err = database.DB.Collection(database.TodosCollection).FindOneAndDelete(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTodoNotFound
		}
		return err
	}
	return nil
}

// ToggleTodo flips the completed flag and returns the updated document.
// Implemented as a single pipeline update so concurrent toggles cannot
// lose each other's flip.
func ToggleTodo(ctx context.Context, userID primitive.ObjectID, id string) (*models.Todo, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"completed":  bson.M{"$not": "$completed"},
			"updated_at": "$$NOW",
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var todo models.Todo
	err = database.DB.Collection(database.TodosCollection).
		FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}
