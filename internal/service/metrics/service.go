package metrics

import (
	"context"
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// EventCounter counts events per lifecycle state.
type EventCounter interface {
	CountByStatus(status models.EventStatus) (int64, error)
}

// DepositSource supplies platform-wide deposit aggregates.
type DepositSource interface {
	DepositStats() (float64, int64, error)
}

// AchievementLister lists the achievement catalog.
type AchievementLister interface {
	List() ([]models.Achievement, error)
}

// Summary is the platform-wide statistics snapshot served to the dashboard.
type Summary struct {
	EventsByStatus map[models.EventStatus]int64 `json:"events_by_status"`
	CompletionRate float64                      `json:"completion_rate"`
	TotalDeposited float64                      `json:"total_deposited"`
	DepositCount   int64                        `json:"deposit_count"`
	AverageDeposit float64                      `json:"average_deposit"`
	Achievements   int                          `json:"achievements"`
}

// Service computes platform statistics.
type Service struct {
	events       EventCounter
	deposits     DepositSource
	achievements AchievementLister
	log          *logger.Logger
}

// NewService creates a new statistics service with concrete repository types.
func NewService(
	eventRepo *repository.EventRepository,
	txRepo *repository.TransactionRepository,
	achievementRepo *repository.AchievementRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		events:       eventRepo,
		deposits:     txRepo,
		achievements: achievementRepo,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new statistics service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	events EventCounter,
	deposits DepositSource,
	achievements AchievementLister,
	log *logger.Logger,
) *Service {
	return &Service{
		events:       events,
		deposits:     deposits,
		achievements: achievements,
		log:          log,
	}
}

// Summary assembles the platform statistics snapshot.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	statuses := []models.EventStatus{
		models.EventStatusDraft,
		models.EventStatusInProgress,
		models.EventStatusCompleted,
		models.EventStatusFailed,
	}

	counts := make(map[models.EventStatus]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.events.CountByStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s events: %w", status, err)
		}
		counts[status] = count
	}

	total, depositCount, err := s.deposits.DepositStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit stats: %w", err)
	}

	catalog, err := s.achievements.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	return &Summary{
		EventsByStatus: counts,
		CompletionRate: CompletionRate(counts[models.EventStatusCompleted], counts[models.EventStatusFailed]),
		TotalDeposited: total,
		DepositCount:   depositCount,
		AverageDeposit: AverageDeposit(total, depositCount),
		Achievements:   len(catalog),
	}, nil
}
