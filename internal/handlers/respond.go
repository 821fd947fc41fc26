package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/arnavmishra07/taskify-backend/internal/config"
	"github.com/arnavmishra07/taskify-backend/internal/middleware"
	"github.com/arnavmishra07/taskify-backend/internal/services"
)

var (
	cfg          *config.Config
	tokenService *services.TokenService
)

// Init wires the handlers to the loaded configuration and the token
// service. Must be called once before the routes are registered.
func Init(c *config.Config, tokens *services.TokenService) {
	cfg = c
	tokenService = tokens
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// internalError records the unexpected error to the error-log sink and
// answers with a generic 500. The underlying error and stack appear in
// the body only outside production.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	services.LogError(r.Context(), err, r.URL.Path, r.Method,
		middleware.UserIDFrom(r.Context()), middleware.RequestIDFrom(r.Context()))

	body := map[string]string{"error": "Internal Server Error"}
	if !cfg.IsProduction() {
		body["stack"] = fmt.Sprintf("%v\n%s", err, debug.Stack())
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
