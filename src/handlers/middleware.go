package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/gainsfolio/backend/src/database"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/models"
	"github.com/username/gainsfolio/backend/src/security"
	"github.com/username/gainsfolio/backend/src/utils"
)

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// AuthMiddleware validates the bearer token against both the JWT signature
// and the sessions table, then stores the user id in the request context.
func AuthMiddleware(authService *security.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				utils.SendJSONError(w, "authorization header required", http.StatusUnauthorized)
				return
			}

			subject, err := authService.ValidateToken(tokenString)
			if err != nil {
				utils.SendJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			session, err := models.GetSessionByToken(database.DB, tokenString)
			if err != nil {
				utils.SendJSONError(w, "session not found", http.StatusUnauthorized)
				return
			}

			userID, err := strconv.ParseInt(subject, 10, 64)
			if err != nil || userID != session.UserID {
				logger.L.Warn("Token subject does not match session", "subject", subject, "sessionUserID", session.UserID)
				utils.SendJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
