package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/username/gainsfolio/backend/src/config"
	"github.com/username/gainsfolio/backend/src/database"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/models"
	"github.com/username/gainsfolio/backend/src/security"
	"github.com/username/gainsfolio/backend/src/utils"
)

type contextKey string

const userIDContextKey = contextKey("userID")

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload.Username) < 3 || len(payload.Password) < 8 {
		utils.SendJSONError(w, "username must be at least 3 and password at least 8 characters", http.StatusBadRequest)
		return
	}

	user := models.User{Username: payload.Username}
	if err := user.HashPassword(payload.Password); err != nil {
		logger.L.Error("Failed to hash password", "error", err)
		utils.SendJSONError(w, "failed to register user", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		logger.L.Warn("Failed to create user", "username", payload.Username, "error", err)
		utils.SendJSONError(w, "username already taken", http.StatusConflict)
		return
	}

	logger.L.Info("User registered", "userID", user.ID, "username", user.Username)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := models.GetUserByUsername(database.DB, payload.Username)
	if err != nil {
		utils.SendJSONError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	if err := user.CheckPassword(payload.Password); err != nil {
		utils.SendJSONError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(strconv.FormatInt(user.ID, 10))
	if err != nil {
		logger.L.Error("Failed to generate access token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "failed to log in", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Failed to generate refresh token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "failed to log in", http.StatusInternalServerError)
		return
	}

	session := &models.Session{
		UserID:       user.ID,
		Token:        token,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := models.CreateSession(database.DB, session); err != nil {
		logger.L.Error("Failed to create session", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "failed to log in", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":         token,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken == "" {
		utils.SendJSONError(w, "refresh token required", http.StatusBadRequest)
		return
	}

	session, err := models.GetSessionByRefreshToken(database.DB, payload.RefreshToken)
	if err != nil {
		utils.SendJSONError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	if time.Now().After(session.ExpiresAt) {
		utils.SendJSONError(w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(strconv.FormatInt(session.UserID, 10))
	if err != nil {
		logger.L.Error("Failed to generate access token on refresh", "userID", session.UserID, "error", err)
		utils.SendJSONError(w, "failed to refresh token", http.StatusInternalServerError)
		return
	}
	if err := models.UpdateSessionToken(database.DB, session.ID, token); err != nil {
		logger.L.Error("Failed to update session token", "sessionID", session.ID, "error", err)
		utils.SendJSONError(w, "failed to refresh token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		utils.SendJSONError(w, "authorization header required", http.StatusUnauthorized)
		return
	}
	if err := models.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.L.Error("Failed to delete session", "error", err)
		utils.SendJSONError(w, "failed to log out", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserIDFromContext extracts the authenticated user's id placed in the
// request context by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
