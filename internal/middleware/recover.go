package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/arnavmishra07/taskify-backend/internal/services"
)

// Recover converts panics into generic 500 responses. The panic and its
// stack are recorded through the error-log sink; the stack appears in the
// response body only outside production.
func Recover(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					message := fmt.Sprintf("panic: %v", rec)
					stack := string(debug.Stack())
					services.LogPanic(r.Context(), message, stack,
						r.URL.Path, r.Method, UserIDFrom(r.Context()), RequestIDFrom(r.Context()))

					body := map[string]string{"error": "Internal Server Error"}
					if !production {
						body["stack"] = stack
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
