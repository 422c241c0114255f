package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

// RequireSession verifies the bearer token with the identity provider and
// attaches the session to the gin context and the request context.
func RequireSession(identity services.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract the token from the Authorization header
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, "MISSING_TOKEN", err.Error())
			return
		}

		// Validate the token, which also checks it was not signed out
		session, err := identity.Verify(c.Request.Context(), token)
		if err != nil {
			logger.WithContext(c.Request.Context()).Info("rejected session token", zap.Error(err))
			message := "Failed to validate session token"
			if errors.Is(err, services.ErrSessionRevoked) {
				message = "Session has been signed out"
			}
			abortUnauthorized(c, "INVALID_TOKEN", message)
			return
		}

		// Store the session for handlers and for request-scoped logging
		c.Set(sessionKey, session)
		ctx := services.WithSession(c.Request.Context(), session)
		ctx = context.WithValue(ctx, logger.StaffKey, session.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole is a middleware that checks the session carries a specific role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the session set by RequireSession
		session, err := GetSession(c)
		if err != nil {
			abortUnauthorized(c, "MISSING_SESSION", "Could not retrieve session")
			return
		}

		// Check if the session has the required role
		if session.Role != role {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_ROLE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetSession extracts the staff session from the Gin context
func GetSession(c *gin.Context) (*services.Session, error) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_SESSION", Message: "Session not found in context"}
	}

	session, ok := value.(*services.Session)
	if !ok || session == nil {
		return nil, &AuthError{Code: "INVALID_SESSION", Message: "Session is not in the expected format"}
	}

	return session, nil
}

// SetSession stores a session the way RequireSession does (primarily for testing)
func SetSession(c *gin.Context, session *services.Session) {
	c.Set(sessionKey, session)
	c.Request = c.Request.WithContext(services.WithSession(c.Request.Context(), session))
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Authorization header required"}
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Invalid authorization header format"}
	}
	return strings.TrimSpace(parts[1]), nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
	c.Abort()
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
