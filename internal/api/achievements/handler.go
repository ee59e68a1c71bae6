// Package achievements provides REST API handlers for the achievement
// catalog and per-user achievement progress.
package achievements

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundcircle/fundcircle/internal/models"
	achsvc "github.com/fundcircle/fundcircle/internal/service/achievements"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// AchievementService interface for achievement read operations.
type AchievementService interface {
	Catalog(ctx context.Context) ([]models.Achievement, error)
	UserOverview(ctx context.Context, userID uint) ([]achsvc.UserAchievementView, error)
}

// Handler handles achievement API requests.
type Handler struct {
	achievements AchievementService
	log          *logger.Logger
}

// NewHandler creates a new achievement handler.
func NewHandler(achievements AchievementService, log *logger.Logger) *Handler {
	return &Handler{
		achievements: achievements,
		log:          log,
	}
}

// RegisterRoutes attaches the achievement endpoints to a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/achievements", h.GetCatalog)
	rg.GET("/users/:id/achievements", h.GetUserAchievements)
}

// GetCatalog returns all achievements with their criteria.
// GET /api/v1/achievements.
func (h *Handler) GetCatalog(c *gin.Context) {
	catalog, err := h.achievements.Catalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get achievement catalog")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": catalog,
		"total":        len(catalog),
	})
}

// GetUserAchievements returns a user's standing across all achievements.
// GET /api/v1/users/:id/achievements.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid user ID: %s", idStr))
		return
	}

	views, err := h.achievements.UserOverview(c.Request.Context(), uint(id))
	if err != nil {
		h.log.Error().Err(err).Uint64("user_id", id).Msg("Failed to get user achievements")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve user achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      uint(id),
		"achievements": views,
	})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
