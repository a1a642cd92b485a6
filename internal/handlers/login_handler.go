package handlers

import (
	"context"
	"errors"
	"net/http"

	"go-pos-report/internal/database"
	"go-pos-report/internal/logger"
	"go-pos-report/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the account storage used for login and registration.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, role string) (string, error)
}

type AuthHandler struct {
	users            UserRepository
	tokens           TokenIssuer
	registrationRole string
}

// NewAuthHandler creates the handler. Every self-registered user gets
// registrationRole; callers cannot choose their own.
func NewAuthHandler(users UserRepository, tokens TokenIssuer, registrationRole string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, registrationRole: registrationRole}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			logger.FromGin(c).Error("user lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		logger.FromGin(c).Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

// Register handles POST /register. Only routed when registration is enabled.
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		Role:         h.registrationRole,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		logger.FromGin(c).Warn("user creation failed", zap.String("username", input.Username), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "User likely already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "id": user.ID, "role": user.Role})
}
