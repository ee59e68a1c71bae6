// Package events provides REST API handlers for events: creation,
// publication, deposits, participations and progress display.
package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	eventsvc "github.com/fundcircle/fundcircle/internal/service/events"
	"github.com/fundcircle/fundcircle/internal/service/ledger"
	"github.com/fundcircle/fundcircle/internal/service/participations"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// EventService interface for event lifecycle operations.
type EventService interface {
	Create(ctx context.Context, in eventsvc.CreateEventInput) (*models.Event, error)
	Publish(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Event, error)
}

// ProgressService interface for progress display.
type ProgressService interface {
	EventProgress(ctx context.Context, eventID uint) ([]conditions.GroupResult, error)
}

// LedgerService interface for deposit/refund operations.
type LedgerService interface {
	RecordDeposit(ctx context.Context, eventID, userID uint, amount float64) (*models.BalanceTransaction, error)
	RecordRefund(ctx context.Context, eventID, userID uint, amount float64) (*models.BalanceTransaction, error)
	BankTotal(ctx context.Context, eventID uint) (float64, error)
}

// ParticipationService interface for membership operations.
type ParticipationService interface {
	Join(ctx context.Context, eventID, userID uint) (*models.Participation, error)
	Leave(ctx context.Context, eventID, userID uint) error
	Count(ctx context.Context, eventID uint) (int64, error)
}

// Handler handles event API requests.
type Handler struct {
	events         EventService
	progress       ProgressService
	ledger         LedgerService
	participations ParticipationService
	log            *logger.Logger
}

// NewHandler creates a new event handler.
func NewHandler(
	events EventService,
	progress ProgressService,
	ledgerSvc LedgerService,
	participationsSvc ParticipationService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		events:         events,
		progress:       progress,
		ledger:         ledgerSvc,
		participations: participationsSvc,
		log:            log,
	}
}

// RegisterRoutes attaches the event endpoints to a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.CreateEvent)
	rg.GET("/events/:id", h.GetEvent)
	rg.POST("/events/:id/publish", h.PublishEvent)
	rg.GET("/events/:id/progress", h.GetProgress)
	rg.POST("/events/:id/deposits", h.RecordDeposit)
	rg.POST("/events/:id/refunds", h.RecordRefund)
	rg.POST("/events/:id/participants", h.Join)
	rg.DELETE("/events/:id/participants/:userID", h.Leave)
}

// CreateEvent creates a draft event with its end-condition groups.
// POST /api/v1/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	var input eventsvc.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.events.Create(c.Request.Context(), input)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent returns an event with its groups and conditions.
// GET /api/v1/events/:id.
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "event not found")
		return
	}

	c.JSON(http.StatusOK, event)
}

// PublishEvent moves a draft event into progress.
// POST /api/v1/events/:id/publish.
func (h *Handler) PublishEvent(c *gin.Context) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.events.Publish(c.Request.Context(), id); err != nil {
		if errors.Is(err, eventsvc.ErrNotDraft) {
			h.errorResponse(c, http.StatusConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to publish event")
		h.errorResponse(c, http.StatusInternalServerError, "failed to publish event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": models.EventStatusInProgress})
}

// GetProgress returns per-group completion percentages.
// GET /api/v1/events/:id/progress.
func (h *Handler) GetProgress(c *gin.Context) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	groups, err := h.progress.EventProgress(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to get event progress")
		h.errorResponse(c, http.StatusInternalServerError, "failed to retrieve progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id": id,
		"groups":   groups,
	})
}

// transactionRequest is the body of deposit and refund requests.
type transactionRequest struct {
	UserID uint    `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// RecordDeposit records a deposit and re-evaluates the event.
// POST /api/v1/events/:id/deposits.
func (h *Handler) RecordDeposit(c *gin.Context) {
	h.recordTransaction(c, h.ledger.RecordDeposit)
}

// RecordRefund records a refund.
// POST /api/v1/events/:id/refunds.
func (h *Handler) RecordRefund(c *gin.Context) {
	h.recordTransaction(c, h.ledger.RecordRefund)
}

func (h *Handler) recordTransaction(c *gin.Context, record func(context.Context, uint, uint, float64) (*models.BalanceTransaction, error)) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := record(c.Request.Context(), id, req.UserID, req.Amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to record transaction")
		h.errorResponse(c, http.StatusInternalServerError, "failed to record transaction")
		return
	}

	total, err := h.ledger.BankTotal(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to read bank total")
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": tx,
		"bank_total":  total,
	})
}

// joinRequest is the body of participation requests.
type joinRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Join adds a participant to an event.
// POST /api/v1/events/:id/participants.
func (h *Handler) Join(c *gin.Context) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.participations.Join(c.Request.Context(), id, req.UserID)
	if err != nil {
		if errors.Is(err, participations.ErrAlreadyJoined) {
			h.errorResponse(c, http.StatusConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to join event")
		h.errorResponse(c, http.StatusInternalServerError, "failed to join event")
		return
	}

	count, err := h.participations.Count(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to count participants")
	}

	c.JSON(http.StatusCreated, gin.H{
		"participation":     p,
		"participant_count": count,
	})
}

// Leave removes a participant from an event.
// DELETE /api/v1/events/:id/participants/:userID.
func (h *Handler) Leave(c *gin.Context) {
	id, err := h.parseEventID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid user ID: %s", c.Param("userID")))
		return
	}

	if err := h.participations.Leave(c.Request.Context(), id, uint(userID)); err != nil {
		h.log.Error().Err(err).Uint("event_id", id).Msg("Failed to leave event")
		h.errorResponse(c, http.StatusInternalServerError, "failed to leave event")
		return
	}

	c.Status(http.StatusNoContent)
}

// parseEventID extracts and validates the event ID from the URL parameter.
func (h *Handler) parseEventID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid event ID: %s", idStr)
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
