package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arnavmishra07/taskify-backend/internal/middleware"
	"github.com/arnavmishra07/taskify-backend/internal/models"
	"github.com/arnavmishra07/taskify-backend/internal/services"
	"github.com/arnavmishra07/taskify-backend/pkg/utils"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token,omitempty"`
	User    *models.PublicUser `json:"user,omitempty"`
}

const forgotPasswordMessage = "If an account exists with this email, a password reset link has been sent"

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// Signup registers a new user and issues a token for the fresh account.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Surface the first failing field only
	if err := utils.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := services.CreateUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		internalError(w, r, err)
		return
	}

	token, err := tokenService.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}

	pub := user.Public()
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    &pub,
	})
}

// Signin authenticates an existing user. Unknown email and wrong password
// produce the same generic failure so accounts cannot be enumerated.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := services.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		internalError(w, r, err)
		return
	}

	if !services.VerifyUserPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := tokenService.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}

	pub := user.Public()
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Sign in successful",
		Token:   token,
		User:    &pub,
	})
}

// ForgotPassword begins a password reset. The response is identical
// whether or not the email exists; only a matching account gets a token
// persisted. Outside production the token is echoed in the response since
// there is no mail delivery.
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	token, ok, err := services.BeginPasswordReset(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}

	body := map[string]string{"message": forgotPasswordMessage}
	if ok && !cfg.IsProduction() {
		// Dev convenience only; in production the token would go out via email
		body["resetToken"] = token
	}
	writeJSON(w, http.StatusOK, body)
}

// ResetPassword consumes a reset token and stores the new password. Any
// failure yields the same generic message.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := services.CompletePasswordReset(ctx, req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

// GetMe returns the authenticated user's public profile.
func GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := services.FindUserByID(ctx, middleware.UserIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		internalError(w, r, err)
		return
	}

	pub := user.Public()
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": pub})
}
