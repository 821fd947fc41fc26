package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/arnavmishra07/taskify-backend/internal/handlers"
	"github.com/arnavmishra07/taskify-backend/internal/middleware"
	"github.com/arnavmishra07/taskify-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, tokens *services.TokenService) {
	// Auth routes (public)
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/forgot-password", handlers.ForgotPassword)
	r.Post("/api/auth/reset-password", handlers.ResetPassword)

	// Protected routes: token verified and identity bound before handlers run
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))

		r.Get("/api/auth/me", handlers.GetMe)

		r.Post("/api/todos", handlers.CreateTodo)
		r.Get("/api/todos", handlers.GetTodos)
		r.Get("/api/todos/{id}", handlers.GetTodo)
		r.Put("/api/todos/{id}", handlers.UpdateTodo)
		r.Delete("/api/todos/{id}", handlers.DeleteTodo)
		r.Patch("/api/todos/{id}/toggle", handlers.ToggleTodo)
	})
}
