// Package events handles event creation and publication. Conditions are
// validated at creation time so malformed operators or targets never reach
// the evaluation engine.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// Validation errors surfaced to the API layer.
var (
	ErrTitleRequired = errors.New("event title is required")
	ErrNoGroups      = errors.New("event must declare at least one end-condition group")
	ErrEmptyGroup    = errors.New("end-condition group must contain at least one condition")
	ErrNotDraft      = errors.New("only draft events can be published")
)

// EventRepository interface for event persistence operations.
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	ListByStatus(status models.EventStatus) ([]models.Event, error)
	TransitionStatus(id uint, from, to models.EventStatus, completedAt *time.Time) error
}

// CreateEventInput describes a new event with its end-condition groups.
type CreateEventInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	OwnerID     uint         `json:"owner_id"`
	Groups      []GroupInput `json:"groups"`
}

// GroupInput is one AND-group of conditions.
type GroupInput struct {
	Conditions []ConditionInput `json:"conditions"`
}

// ConditionInput is one condition declaration.
type ConditionInput struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Service handles event lifecycle up to the point where the evaluation
// engine takes over.
type Service struct {
	repo EventRepository
	log  *logger.Logger
}

// NewService creates a new event service.
func NewService(repo *repository.EventRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// NewServiceWithInterfaces creates a new event service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(repo EventRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates and persists a draft event. Every condition's operator
// must be one of the five supported operators and its value must parse
// according to the condition name's type.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if len(in.Groups) == 0 {
		return nil, ErrNoGroups
	}

	event := &models.Event{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		Status:      models.EventStatusDraft,
	}

	for gi, g := range in.Groups {
		if len(g.Conditions) == 0 {
			return nil, fmt.Errorf("group %d: %w", gi, ErrEmptyGroup)
		}
		group := models.EventEndConditionGroup{}
		for ci, c := range g.Conditions {
			name := models.ConditionName(c.Name)
			operator := models.ConditionOperator(c.Operator)
			if !name.Valid() {
				return nil, fmt.Errorf("group %d condition %d: unknown condition name %q", gi, ci, c.Name)
			}
			if !operator.Valid() {
				return nil, fmt.Errorf("group %d condition %d: unknown operator %q", gi, ci, c.Operator)
			}
			if _, err := conditions.ParseTarget(name, c.Value); err != nil {
				return nil, fmt.Errorf("group %d condition %d: %w", gi, ci, err)
			}
			group.Conditions = append(group.Conditions, models.EndCondition{
				Name:     name,
				Operator: operator,
				Value:    c.Value,
			})
		}
		event.Groups = append(event.Groups, group)
	}

	if err := s.repo.Create(event); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("event_id", event.ID).
		Int("groups", len(event.Groups)).
		Msg("Event created")

	return event, nil
}

// Publish moves a draft event into progress, making it eligible for
// evaluation.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Publish(ctx context.Context, id uint) error {
	err := s.repo.TransitionStatus(id, models.EventStatusDraft, models.EventStatusInProgress, nil)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return fmt.Errorf("event %d: %w", id, ErrNotDraft)
		}
		return err
	}

	s.log.Info().Uint("event_id", id).Msg("Event published")
	return nil
}

// Get retrieves an event with its groups and conditions.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Get(ctx context.Context, id uint) (*models.Event, error) {
	return s.repo.GetByID(id)
}
