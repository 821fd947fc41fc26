package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/models"
)

const (
	// todoCacheKeyPrefix is the Redis key prefix for cached todo lists
	todoCacheKeyPrefix = "cache:todos:"
	// TodoCacheTTL keeps lists warm for repeated reads but short enough
	// that a lost invalidation self-heals quickly
	TodoCacheTTL = 5 * time.Minute
)

// TodoCacheKey returns the Redis key holding a user's todo list.
func TodoCacheKey(userID string) string {
	return fmt.Sprintf("%s%s", todoCacheKeyPrefix, userID)
}

// GetCachedTodos returns (todos, true) on a cache hit. A miss or an
// unreadable entry is reported as a plain miss, never an error: the list
// is always recoverable from MongoDB.
func GetCachedTodos(ctx context.Context, userID string) ([]models.Todo, bool) {
	val, err := database.RedisClient.Get(ctx, TodoCacheKey(userID)).Result()
	if err != nil {
		return nil, false
	}

	var todos []models.Todo
	if err := json.Unmarshal([]byte(val), &todos); err != nil {
		database.RedisClient.Del(ctx, TodoCacheKey(userID))
		return nil, false
	}
	return todos, true
}

// SetCachedTodos stores a user's todo list. Failures are ignored; the
// cache is an optimization only.
func SetCachedTodos(ctx context.Context, userID string, todos []models.Todo) {
	jsonData, err := json.Marshal(todos)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, TodoCacheKey(userID), jsonData, TodoCacheTTL)
}

// InvalidateTodoCache drops a user's cached list. Called after every todo
// mutation so reads never serve a stale list past the write.
func InvalidateTodoCache(ctx context.Context, userID string) {
	database.RedisClient.Del(ctx, TodoCacheKey(userID))
}
