// Package scheduler drives the periodic evaluation of in-progress events:
// the tick re-checks time-bearing conditions and current measurements, the
// failure sweep closes events whose deadlines all expired unmet.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fundcircle/fundcircle/internal/config"
	"github.com/fundcircle/fundcircle/internal/metrics"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// EventLister lists events eligible for periodic processing.
type EventLister interface {
	ListByStatus(status models.EventStatus) ([]models.Event, error)
	CountCompletedByOwner(ownerID uint) (int64, error)
}

// Engine is the slice of the condition service the scheduler drives.
type Engine interface {
	EvaluateEvent(ctx context.Context, eventID uint, m conditions.Measurements) (conditions.Resolution, error)
	FailExpiredEvent(ctx context.Context, event *models.Event) (bool, error)
}

// BankSource supplies the current bank total of an event.
type BankSource interface {
	BankTotal(ctx context.Context, eventID uint) (float64, error)
}

// ParticipationSource supplies the current participant count of an event.
type ParticipationSource interface {
	Count(ctx context.Context, eventID uint) (int64, error)
}

// StatisticRecorder feeds achievement progress for event owners.
type StatisticRecorder interface {
	RecordStatistic(ctx context.Context, userID uint, statType models.CriterionType, value float64) error
}

// Notifier announces terminal event transitions.
type Notifier interface {
	EventCompleted(event *models.Event, bankTotal float64) error
	EventFailed(event *models.Event) error
}

// Service schedules the periodic evaluation jobs.
type Service struct {
	config         *config.Config
	events         EventLister
	engine         Engine
	bank           BankSource
	participations ParticipationSource
	stats          StatisticRecorder
	notifier       Notifier
	log            *logger.Logger
	cron           *cron.Cron
}

// NewService creates a new scheduler service. The notifier may be nil when
// notifications are not configured.
func NewService(
	cfg *config.Config,
	events EventLister,
	engine Engine,
	bank BankSource,
	participations ParticipationSource,
	stats StatisticRecorder,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		config:         cfg,
		events:         events,
		engine:         engine,
		bank:           bank,
		participations: participations,
		stats:          stats,
		notifier:       notifier,
		log:            log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.config.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if s.config.Scheduler.EvaluationSchedule != "" {
		_, err = s.cron.AddFunc(s.config.Scheduler.EvaluationSchedule, func() {
			s.runEvaluation(context.Background())
		})
		if err != nil {
			return fmt.Errorf("failed to register evaluation job: %w", err)
		}
	}

	if s.config.Scheduler.FailureSweep != "" {
		_, err = s.cron.AddFunc(s.config.Scheduler.FailureSweep, func() {
			s.runFailureSweep(context.Background())
		})
		if err != nil {
			return fmt.Errorf("failed to register failure sweep job: %w", err)
		}
	}

	s.cron.Start()

	s.log.Info().
		Str("evaluation_schedule", s.config.Scheduler.EvaluationSchedule).
		Str("failure_sweep", s.config.Scheduler.FailureSweep).
		Str("timezone", s.config.Scheduler.Timezone).
		Msg("Scheduler started")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runEvaluation re-evaluates every in-progress event against fresh
// measurements. Per-event failures are logged and skipped.
func (s *Service) runEvaluation(ctx context.Context) {
	start := time.Now()

	events, err := s.events.ListByStatus(models.EventStatusInProgress)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list in-progress events")
		return
	}
	metrics.SetEventsInProgress(len(events))

	completed := 0
	for i := range events {
		event := &events[i]
		m, err := s.measurements(ctx, event.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to gather measurements")
			continue
		}

		resolution, err := s.engine.EvaluateEvent(ctx, event.ID, m)
		if err != nil {
			s.log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to evaluate event")
			continue
		}
		if resolution.Transitioned {
			completed++
			s.onCompleted(ctx, event, m)
		}
	}

	s.log.Info().
		Int("events", len(events)).
		Int("completed", completed).
		Dur("duration", time.Since(start)).
		Msg("Periodic evaluation complete")
}

// runFailureSweep fails events whose groups all carry expired deadlines.
func (s *Service) runFailureSweep(ctx context.Context) {
	events, err := s.events.ListByStatus(models.EventStatusInProgress)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list in-progress events")
		return
	}

	failed := 0
	for i := range events {
		event := &events[i]
		didFail, err := s.engine.FailExpiredEvent(ctx, event)
		if err != nil {
			s.log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to sweep event")
			continue
		}
		if didFail {
			failed++
			if s.notifier != nil {
				if err := s.notifier.EventFailed(event); err != nil {
					s.log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to send failure notification")
				}
			}
		}
	}

	if failed > 0 {
		s.log.Info().
			Int("events", len(events)).
			Int("failed", failed).
			Msg("Failure sweep complete")
	}
}

// onCompleted credits the owner's achievement statistics and announces the
// completed event. Errors here never undo the transition itself.
func (s *Service) onCompleted(ctx context.Context, event *models.Event, m conditions.Measurements) {
	count, err := s.events.CountCompletedByOwner(event.OwnerID)
	if err != nil {
		s.log.Error().Err(err).Uint("owner_id", event.OwnerID).Msg("Failed to count completed events for owner")
	} else if err := s.stats.RecordStatistic(ctx, event.OwnerID, models.CriterionEventCount, float64(count)); err != nil {
		s.log.Error().Err(err).Uint("owner_id", event.OwnerID).Msg("Failed to record event count statistic")
	}

	bankTotal := m[models.ConditionBank]
	if err := s.stats.RecordStatistic(ctx, event.OwnerID, models.CriterionBankAmount, bankTotal); err != nil {
		s.log.Error().Err(err).Uint("owner_id", event.OwnerID).Msg("Failed to record bank amount statistic")
	}

	if s.notifier != nil {
		if err := s.notifier.EventCompleted(event, bankTotal); err != nil {
			s.log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to send completion notification")
		}
	}
}

// measurements gathers the current measured values for one event.
func (s *Service) measurements(ctx context.Context, eventID uint) (conditions.Measurements, error) {
	total, err := s.bank.BankTotal(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("bank total: %w", err)
	}
	count, err := s.participations.Count(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("participant count: %w", err)
	}
	return conditions.Measurements{
		models.ConditionBank:               total,
		models.ConditionParticipationCount: float64(count),
	}, nil
}
