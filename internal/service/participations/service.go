// Package participations manages event membership and produces the
// participation-count measurement.
package participations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fundcircle/fundcircle/internal/cache"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// ErrAlreadyJoined is returned when a user joins an event twice.
var ErrAlreadyJoined = errors.New("user already participates in this event")

// defaultCountTTL bounds staleness of the cached participant count when no
// TTL is configured.
const defaultCountTTL = 5 * time.Minute

// ParticipationRepository interface for participation persistence operations.
type ParticipationRepository interface {
	Create(p *models.Participation) error
	Delete(eventID, userID uint) error
	Exists(eventID, userID uint) (bool, error)
	CountByEvent(eventID uint) (int64, error)
	CountByUser(userID uint) (int64, error)
	ListByEvent(eventID uint) ([]models.Participation, error)
}

// EventEvaluator re-runs condition evaluation after a measurement changes.
type EventEvaluator interface {
	EvaluateEvent(ctx context.Context, eventID uint, m conditions.Measurements) (conditions.Resolution, error)
}

// StatisticRecorder feeds changed user statistics into achievement criteria.
type StatisticRecorder interface {
	RecordStatistic(ctx context.Context, userID uint, statType models.CriterionType, value float64) error
}

// Service manages event participations.
type Service struct {
	repo         ParticipationRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	evaluator    EventEvaluator
	achievements StatisticRecorder
	log          *logger.Logger
}

// NewService creates a new participation service. A non-positive cacheTTL
// falls back to the default.
func NewService(
	repo *repository.ParticipationRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	evaluator *conditions.Service,
	achievementsSvc StatisticRecorder,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(repo, c, cacheTTL, evaluator, achievementsSvc, log)
}

// NewServiceWithInterfaces creates a new participation service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	repo ParticipationRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	evaluator EventEvaluator,
	achievementsSvc StatisticRecorder,
	log *logger.Logger,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCountTTL
	}
	return &Service{
		repo:         repo,
		cache:        c,
		cacheTTL:     cacheTTL,
		evaluator:    evaluator,
		achievements: achievementsSvc,
		log:          log,
	}
}

// Join records a user joining an event and pushes the new participant count
// into condition evaluation and the user's achievement statistics.
func (s *Service) Join(ctx context.Context, eventID, userID uint) (*models.Participation, error) {
	exists, err := s.repo.Exists(eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if exists {
		return nil, ErrAlreadyJoined
	}

	p := &models.Participation{EventID: eventID, UserID: userID}
	if err := s.repo.Create(p); err != nil {
		return nil, fmt.Errorf("join event %d: %w", eventID, err)
	}

	if err := s.cache.Del(ctx, cache.ParticipantCountKey(eventID)); err != nil {
		s.log.Warn().Err(err).Uint("event_id", eventID).Msg("Failed to invalidate participant count cache")
	}

	count, err := s.Count(ctx, eventID)
	if err != nil {
		return p, fmt.Errorf("participant count after join: %w", err)
	}

	if _, err := s.evaluator.EvaluateEvent(ctx, eventID, conditions.Measurements{
		models.ConditionParticipationCount: float64(count),
	}); err != nil {
		s.log.Error().Err(err).Uint("event_id", eventID).Msg("Failed to evaluate event after join")
	}

	userCount, err := s.repo.CountByUser(userID)
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to count user participations")
	} else if err := s.achievements.RecordStatistic(ctx, userID, models.CriterionParticipationCount, float64(userCount)); err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to record participation statistic")
	}

	s.log.Info().
		Uint("event_id", eventID).
		Uint("user_id", userID).
		Int64("participants", count).
		Msg("User joined event")

	return p, nil
}

// Leave removes a user's participation. No re-evaluation: completed
// conditions never un-complete on a shrinking count.
func (s *Service) Leave(ctx context.Context, eventID, userID uint) error {
	if err := s.repo.Delete(eventID, userID); err != nil {
		return fmt.Errorf("leave event %d: %w", eventID, err)
	}
	if err := s.cache.Del(ctx, cache.ParticipantCountKey(eventID)); err != nil {
		s.log.Warn().Err(err).Uint("event_id", eventID).Msg("Failed to invalidate participant count cache")
	}
	return nil
}

// Count returns the participant count of an event, cache-aside.
func (s *Service) Count(ctx context.Context, eventID uint) (int64, error) {
	key := cache.ParticipantCountKey(eventID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return count, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("Participant count cache read failed")
	}

	count, err := s.repo.CountByEvent(eventID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, strconv.FormatInt(count, 10), s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Participant count cache write failed")
	}
	return count, nil
}

// List returns the participations of an event with users preloaded.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) List(ctx context.Context, eventID uint) ([]models.Participation, error) {
	return s.repo.ListByEvent(eventID)
}
