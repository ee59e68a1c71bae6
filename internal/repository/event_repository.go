package repository

import (
	"fmt"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
)

// EventRepository handles event, group and condition database operations.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates an event together with its groups and conditions.
func (r *EventRepository) Create(event *models.Event) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its groups and conditions preloaded.
func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.
		Preload("Groups").
		Preload("Groups.Conditions").
		First(&event, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// ListByStatus retrieves events in a given status with groups and conditions
// preloaded.
func (r *EventRepository) ListByStatus(status models.EventStatus) ([]models.Event, error) {
	var events []models.Event
	err := r.db.
		Where("status = ?", status).
		Preload("Groups").
		Preload("Groups.Conditions").
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events by status %s: %w", status, err)
	}
	return events, nil
}

// TransitionStatus moves an event from one status to another with a
// compare-and-set on the source status, so concurrent resolvers of the same
// event produce at most one effective transition. completedAt is written for
// terminal transitions and may be nil otherwise.
func (r *EventRepository) TransitionStatus(id uint, from, to models.EventStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": to}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.db.Model(&models.Event{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition event %d to %s: %w", id, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("event %d is not %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}

// SaveCondition persists an end condition's completion flag.
func (r *EventRepository) SaveCondition(cond *models.EndCondition) error {
	if err := r.db.Save(cond).Error; err != nil {
		return fmt.Errorf("failed to save condition %d: %w", cond.ID, err)
	}
	return nil
}

// CompleteGroup marks a group completed. Completed groups stay completed.
func (r *EventRepository) CompleteGroup(groupID uint) error {
	err := r.db.Model(&models.EventEndConditionGroup{}).
		Where("id = ? AND is_failed = ?", groupID, false).
		Update("is_completed", true).Error
	if err != nil {
		return fmt.Errorf("failed to complete group %d: %w", groupID, err)
	}
	return nil
}

// FailGroup marks a group failed unless it already completed.
func (r *EventRepository) FailGroup(groupID uint) error {
	err := r.db.Model(&models.EventEndConditionGroup{}).
		Where("id = ? AND is_completed = ?", groupID, false).
		Update("is_failed", true).Error
	if err != nil {
		return fmt.Errorf("failed to fail group %d: %w", groupID, err)
	}
	return nil
}

// CountByStatus returns the number of events in a given status.
func (r *EventRepository) CountByStatus(status models.EventStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count events by status %s: %w", status, err)
	}
	return count, nil
}

// CountCompletedByOwner returns how many events of an owner reached completed.
// Feeds the event_count achievement statistic.
func (r *EventRepository) CountCompletedByOwner(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("owner_id = ? AND status = ?", ownerID, models.EventStatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed events for owner %d: %w", ownerID, err)
	}
	return count, nil
}
