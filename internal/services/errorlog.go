package services

import (
	"context"
	"log"
	"time"

	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/models"
)

// LogError records a request failure to the error_logs collection.
// Logging is best-effort: failures are swallowed so they never escalate
// into the request that triggered them.
func LogError(ctx context.Context, err error, route, method, userID, requestID string) {
	if err == nil {
		return
	}
	if database.DB == nil {
		log.Printf("Error log sink unavailable: %v", err)
		return
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	entry := models.ErrorLog{
		Message:   err.Error(),
		Route:     route,
		Method:    method,
		UserID:    userID,
		RequestID: requestID,
		Timestamp: time.Now(),
	}

	if _, insertErr := database.DB.Collection(database.ErrorLogsCollection).InsertOne(logCtx, entry); insertErr != nil {
		log.Printf("Failed to write error log: %v (original error: %v)", insertErr, err)
	}
}

// LogPanic records a recovered panic together with its stack trace.
func LogPanic(ctx context.Context, message, stack, route, method, userID, requestID string) {
	if database.DB == nil {
		log.Printf("Error log sink unavailable: %s", message)
		return
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	entry := models.ErrorLog{
		Message:   message,
		Stack:     stack,
		Route:     route,
		Method:    method,
		UserID:    userID,
		RequestID: requestID,
		Timestamp: time.Now(),
	}

	if _, insertErr := database.DB.Collection(database.ErrorLogsCollection).InsertOne(logCtx, entry); insertErr != nil {
		log.Printf("Failed to write panic log: %v", insertErr)
	}
}
