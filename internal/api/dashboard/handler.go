// Package dashboard provides REST API handlers for platform statistics.
// It exposes endpoints for the summary view, donor leaderboards, and per-user
// statistics.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundcircle/fundcircle/internal/service/leaderboard"
	"github.com/fundcircle/fundcircle/internal/service/metrics"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GlobalLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	EventLeaderboard(ctx context.Context, eventID uint, limit int) ([]leaderboard.Entry, error)
	UserStats(ctx context.Context, userID uint) (*leaderboard.UserStats, error)
}

// SummaryService interface for platform summary statistics.
type SummaryService interface {
	Summary(ctx context.Context) (*metrics.Summary, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	leaderboardService LeaderboardService
	summaryService     SummaryService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(leaderboardService *leaderboard.Service, summaryService *metrics.Service, log *logger.Logger) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		summaryService:     summaryService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(leaderboardService LeaderboardService, summaryService SummaryService, log *logger.Logger) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		summaryService:     summaryService,
		log:                log,
	}
}

// RegisterRoutes attaches the dashboard endpoints to a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/summary", h.GetSummary)
	rg.GET("/leaderboard", h.GetGlobalLeaderboard)
	rg.GET("/events/:id/leaderboard", h.GetEventLeaderboard)
	rg.GET("/users/:id/stats", h.GetUserStats)
}

// GetSummary returns platform-wide statistics.
// GET /api/v1/dashboard/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.summaryService.Summary(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute platform summary")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"generated_at": time.Now().UTC(),
	})
}

// GetGlobalLeaderboard returns the platform-wide donor leaderboard.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetGlobalLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, leaderboard.DefaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GlobalLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get global leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve leaderboard")
		return
	}

	h.log.Info().
		Int("limit", limit).
		Int("entries", len(entries)).
		Msg("Retrieved global leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetEventLeaderboard returns the donor leaderboard for one event.
// GET /api/v1/events/:id/leaderboard?limit=10.
func (h *Handler) GetEventLeaderboard(c *gin.Context) {
	eventID, err := h.parseID(c, "event")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c, leaderboard.DefaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.EventLeaderboard(c.Request.Context(), eventID, limit)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", eventID).Msg("Failed to get event leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve event leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":      eventID,
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserStats returns donation and achievement statistics for one user.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseID(c, "user")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.leaderboardService.UserStats(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user stats")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

// parseID extracts and validates an ID from the URL parameter.
func (h *Handler) parseID(c *gin.Context, kind string) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 100 {
		return 0, fmt.Errorf("limit cannot exceed 100")
	}

	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
