package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/intervault/apiserver/internal/auth"
	"github.com/intervault/apiserver/internal/services"
	"github.com/intervault/apiserver/internal/store"
)

// AuthHandler provides login, registration, and account endpoints.
type AuthHandler struct {
	authService    *services.AuthService
	userService    *services.UserService
	googleClientID string
	logger         *slog.Logger
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService, googleClientID string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userService:    userService,
		googleClientID: googleClientID,
		logger:         logger,
	}
}

// AuthRouter registers the public auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/google", handler.GoogleLogin)
	r.Get("/config", handler.Config)
	r.Post("/register", handler.Register)
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

type GoogleLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	IsNew       bool   `json:"is_new"`
}

type RegistrationRequiredResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// GoogleLogin verifies a Google identity token and signs the caller in,
// creating the account on first sight when a display name is supplied.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := h.authService.GoogleLogin(r.Context(), req.Token, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidAssertion):
			writeError(w, http.StatusBadRequest, "invalid google token")
		case errors.Is(err, store.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "username already exists")
		default:
			h.logger.Error("google login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if result.RegistrationRequired {
		writeJSON(w, http.StatusAccepted, RegistrationRequiredResponse{
			Status: "register_required",
			Detail: "User not found. Please provide a display name.",
		})
		return
	}

	writeJSON(w, http.StatusOK, GoogleLoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		Username:    result.Username,
		IsNew:       result.IsNew,
	})
}

// Config returns the public client identifier the frontend needs to start
// the Google sign-in flow.
func (h *AuthHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"google_client_id": h.googleClientID})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// Register creates a local account. Deprecated in favor of Google sign-in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.authService.RegisterLocal(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameRequired), errors.Is(err, services.ErrPasswordRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "username already exists")
		default:
			h.logger.Error("local registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{UserID: user.ID, Username: user.Username})
}

type UsernameUpdateRequest struct {
	Username string `json:"username"`
}

type UsernameUpdateResponse struct {
	Status   string `json:"status"`
	Username string `json:"username"`
}

// UpdateUsername changes the authenticated caller's display name.
func (h *AuthHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UsernameUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	username, err := h.userService.SetUsername(r.Context(), userID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameRequired):
			writeError(w, http.StatusBadRequest, "username is required")
		case errors.Is(err, store.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "username already exists")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("username update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, UsernameUpdateResponse{Status: "username updated", Username: username})
}
