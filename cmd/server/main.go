package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/arnavmishra07/taskify-backend/internal/config"
	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/handlers"
	"github.com/arnavmishra07/taskify-backend/internal/middleware"
	"github.com/arnavmishra07/taskify-backend/internal/routes"
	"github.com/arnavmishra07/taskify-backend/internal/services"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Log connection attempt (without showing password)
	log.Printf("Connecting to MongoDB...")
	if cfg.MongoURI != "" {
		maskedURI := cfg.MongoURI
		if strings.Contains(maskedURI, "@") {
			parts := strings.Split(maskedURI, "@")
			if len(parts) > 0 && strings.Contains(parts[0], ":") {
				userPass := strings.Split(parts[0], ":")
				if len(userPass) >= 3 {
					maskedURI = strings.Replace(maskedURI, userPass[2], "***", 1)
				}
			}
		}
		log.Printf("MongoDB URI: %s", maskedURI)
	}

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Ensure indexes (unique email, todo listing, reset-token lookup)
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatal("Failed to ensure MongoDB indexes:", err)
	}
	indexCancel()
	log.Println("MongoDB indexes ensured")

	// Connect to Redis (todo list cache)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Token service holds the process-wide signing secret
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	handlers.Init(cfg, tokens)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(cfg.IsProduction()))
	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
	}

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"Server is running"}`))
	})

	// Setup routes
	routes.SetupRoutes(r, tokens)

	log.Printf("Taskify backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
