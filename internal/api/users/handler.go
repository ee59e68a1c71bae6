// Package users provides REST API handlers for user registration and lookup.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fundcircle/fundcircle/internal/models"
	usersvc "github.com/fundcircle/fundcircle/internal/service/users"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// UserService interface for user account operations.
type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// Handler handles user API requests.
type Handler struct {
	users UserService
	log   *logger.Logger
}

// NewHandler creates a new user handler.
func NewHandler(users UserService, log *logger.Logger) *Handler {
	return &Handler{users: users, log: log}
}

// RegisterRoutes attaches the user endpoints to a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.Register)
	rg.GET("/users", h.List)
	rg.GET("/users/:id", h.Get)
}

// Register creates a new user account.
// POST /api/v1/users.
func (h *Handler) Register(c *gin.Context) {
	var input usersvc.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrUsernameRequired):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, usersvc.ErrUsernameTaken):
			h.errorResponse(c, http.StatusConflict, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to register user")
			h.errorResponse(c, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Get returns one user.
// GET /api/v1/users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", id).Msg("Failed to get user")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// List returns all users.
// GET /api/v1/users.
func (h *Handler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// parseUserID extracts and validates the user ID from the URL parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %s", idStr)
	}
	return uint(id), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
