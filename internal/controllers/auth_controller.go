package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/middleware"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

type AuthController struct {
	users    services.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthController(users services.UserRepository, secret string) *AuthController {
	return &AuthController{users: users, secret: secret, tokenTTL: 24 * time.Hour}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := ac.users.FindUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			logger.WithError(err, "auth_controller").Error("Failed to look up user")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, expiresAt, err := middleware.IssueToken(ac.secret, user, ac.tokenTTL)
	if err != nil {
		logger.WithError(err, "auth_controller").Error("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	// Clear password from response
	user.Password = ""
	logger.WithUser(user.ID).Info("User logged in")

	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	})
}

// RefreshToken re-issues a token for the identity on the current one.
func (ac *AuthController) RefreshToken(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	user := models.User{ID: claims.UserID, Name: claims.Name, Email: claims.Email, Role: claims.Role}
	token, expiresAt, err := middleware.IssueToken(ac.secret, user, ac.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt,
	})
}
