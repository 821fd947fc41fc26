package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arnavmishra07/taskify-backend/internal/middleware"
	"github.com/arnavmishra07/taskify-backend/internal/models"
	"github.com/arnavmishra07/taskify-backend/internal/services"
)

type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type TodoResponse struct {
	Message string       `json:"message"`
	Todo    *models.Todo `json:"todo,omitempty"`
}

type TodoListResponse struct {
	Message string        `json:"message"`
	Todos   []models.Todo `json:"todos"`
}

// ownerID parses the authenticated user's id from the request context.
// RequireAuth guarantees presence; a parse failure means a token minted
// for a non-ObjectID subject, which no todo can belong to.
func ownerID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(middleware.UserIDFrom(r.Context()))
	return id, err == nil
}

// CreateTodo creates a new todo owned by the authenticated user.
func CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	todo, err := services.CreateTodo(ctx, userID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
	if err != nil {
		internalError(w, r, err)
		return
	}
	services.InvalidateTodoCache(ctx, userID.Hex())

	writeJSON(w, http.StatusCreated, TodoResponse{
		Message: "Todo created successfully",
		Todo:    todo,
	})
}

// GetTodos lists the authenticated user's todos, newest first. Warm lists
// are served from the Redis cache.
func GetTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if todos, hit := services.GetCachedTodos(ctx, userID.Hex()); hit {
		writeJSON(w, http.StatusOK, TodoListResponse{
			Message: "Todos retrieved successfully",
			Todos:   todos,
		})
		return
	}

	todos, err := services.ListTodos(ctx, userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	services.SetCachedTodos(ctx, userID.Hex(), todos)

	writeJSON(w, http.StatusOK, TodoListResponse{
		Message: "Todos retrieved successfully",
		Todos:   todos,
	})
}

// GetTodo returns a single todo. A todo owned by someone else is reported
// as not found.
func GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	todo, err := services.GetTodo(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TodoResponse{
		Message: "Todo retrieved successfully",
		Todo:    todo,
	})
}

// UpdateTodo applies a partial update to a todo.
func UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var update services.TodoUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	todo, err := services.UpdateTodo(ctx, userID, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		internalError(w, r, err)
		return
	}
	services.InvalidateTodoCache(ctx, userID.Hex())

	writeJSON(w, http.StatusOK, TodoResponse{
		Message: "Todo updated successfully",
		Todo:    todo,
	})
}

// DeleteTodo removes a todo.
func DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := services.DeleteTodo(ctx, userID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		internalError(w, r, err)
		return
	}
	services.InvalidateTodoCache(ctx, userID.Hex())

	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

// ToggleTodo flips a todo's completed flag.
func ToggleTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	todo, err := services.ToggleTodo(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		internalError(w, r, err)
		return
	}
	services.InvalidateTodoCache(ctx, userID.Hex())

	writeJSON(w, http.StatusOK, TodoResponse{
		Message: "Todo status updated successfully",
		Todo:    todo,
	})
}
