package conditions

import (
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// Measurements carries the current measured values for measurement-driven
// conditions, keyed by condition name. Callers supply them (the ledger's bank
// total, the participation count); the engine never computes measurements
// itself. Time conditions read the evaluation clock instead.
type Measurements map[models.ConditionName]float64

// EventRepository interface for event persistence operations.
type EventRepository interface {
	GetByID(id uint) (*models.Event, error)
	SaveCondition(cond *models.EndCondition) error
	CompleteGroup(groupID uint) error
	FailGroup(groupID uint) error
	TransitionStatus(id uint, from, to models.EventStatus, completedAt *time.Time) error
}

// Service evaluates end conditions and resolves event completion.
type Service struct {
	events EventRepository
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates a new condition evaluation service.
func NewService(events *repository.EventRepository, log *logger.Logger) *Service {
	return &Service{
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// NewServiceWithInterfaces creates a new condition evaluation service with
// interface dependencies and an injectable clock (useful for testing).
func NewServiceWithInterfaces(events EventRepository, log *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		events: events,
		log:    log,
		now:    now,
	}
}
