package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/middleware"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthController handles staff sign-in and sign-out
type AuthController struct {
	identity services.IdentityProvider
}

// NewAuthController creates the controller
func NewAuthController(identity services.IdentityProvider) *AuthController {
	return &AuthController{identity: identity}
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and the session it stands for
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Session   *services.Session `json:"session"`
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", err.Error())
		return
	}

	session, err := ac.identity.SignIn(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
			return
		}
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("sign in failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "AUTH_PROVIDER_ERROR", "Could not sign in right now", nil)
		return
	}

	respondData(c, http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Session:   session,
	})
}

// Logout handles POST /api/v1/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract session information", nil)
		return
	}

	if err := ac.identity.SignOut(c.Request.Context(), session); err != nil {
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("sign out failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "SIGN_OUT_FAILED", "Failed to sign out", nil)
		return
	}

	respondData(c, http.StatusOK, gin.H{"signed_out": true})
}

// Me handles GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract session information", nil)
		return
	}

	respondData(c, http.StatusOK, session)
}
