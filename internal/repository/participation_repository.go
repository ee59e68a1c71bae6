package repository

import (
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
)

// ParticipationRepository handles participation database operations.
type ParticipationRepository struct {
	db *DB
}

// NewParticipationRepository creates a new participation repository.
func NewParticipationRepository(db *DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create records a user joining an event. The (event, user) pair is unique;
// duplicate joins surface as a database constraint error.
func (r *ParticipationRepository) Create(p *models.Participation) error {
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create participation: %w", err)
	}
	return nil
}

// Delete removes a user's participation in an event.
func (r *ParticipationRepository) Delete(eventID, userID uint) error {
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Participation{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete participation: %w", err)
	}
	return nil
}

// Exists checks whether a user participates in an event.
func (r *ParticipationRepository) Exists(eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return count > 0, nil
}

// CountByEvent returns the number of participants of an event.
func (r *ParticipationRepository) CountByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for event %d: %w", eventID, err)
	}
	return count, nil
}

// CountByUser returns how many events a user participates in. Feeds the
// participation_count achievement statistic.
func (r *ParticipationRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participations for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByEvent retrieves the participations of an event with users preloaded.
func (r *ParticipationRepository) ListByEvent(eventID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := r.db.Where("event_id = ?", eventID).
		Preload("User").
		Order("created_at ASC").
		Find(&participations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for event %d: %w", eventID, err)
	}
	return participations, nil
}
