// Package leaderboard ranks donors platform-wide and per event.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// DefaultLimit bounds leaderboard size when the caller does not specify one.
const DefaultLimit = 10

// DonorSource supplies donor aggregations from the ledger.
type DonorSource interface {
	TopDonors(limit int) ([]repository.DonorTotal, error)
	TopDonorsByEvent(eventID uint, limit int) ([]repository.DonorTotal, error)
	SumDepositsByUser(userID uint) (float64, error)
}

// UserSource resolves user records for display.
type UserSource interface {
	GetByID(id uint) (*models.User, error)
}

// ParticipationSource counts a user's event memberships.
type ParticipationSource interface {
	CountByUser(userID uint) (int64, error)
}

// AchievementSource lists a user's achievement records.
type AchievementSource interface {
	ListUserAchievements(userID uint) ([]models.UserAchievement, error)
}

// Entry represents a single entry in a donor leaderboard.
type Entry struct {
	UserID      uint    `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Total       float64 `json:"total"`
	Deposits    int64   `json:"deposits"`
	Rank        int     `json:"rank"`
}

// Service builds donor leaderboards and per-user statistics.
type Service struct {
	donors         DonorSource
	users          UserSource
	participations ParticipationSource
	achievements   AchievementSource
	log            *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	txRepo *repository.TransactionRepository,
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	achievementRepo *repository.AchievementRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		donors:         txRepo,
		users:          userRepo,
		participations: participationRepo,
		achievements:   achievementRepo,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	donors DonorSource,
	users UserSource,
	participations ParticipationSource,
	achievements AchievementSource,
	log *logger.Logger,
) *Service {
	return &Service{
		donors:         donors,
		users:          users,
		participations: participations,
		achievements:   achievements,
		log:            log,
	}
}

// GlobalLeaderboard returns the platform's top donors, largest first.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) GlobalLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.donors.TopDonors(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get donor totals: %w", err)
	}
	return s.toEntries(rows), nil
}

// EventLeaderboard returns the top donors of one event.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) EventLeaderboard(ctx context.Context, eventID uint, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.donors.TopDonorsByEvent(eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get donor totals for event %d: %w", eventID, err)
	}
	return s.toEntries(rows), nil
}

// toEntries resolves usernames and assigns dense ranks. Rows arrive already
// ordered by total; donors that cannot be resolved keep their rank with a
// blank name.
func (s *Service) toEntries(rows []repository.DonorTotal) []Entry {
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entry := Entry{
			UserID:   row.UserID,
			Total:    row.Total,
			Deposits: row.Deposits,
			Rank:     i + 1,
		}
		user, err := s.users.GetByID(row.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", row.UserID).Msg("Failed to resolve donor user")
		} else {
			entry.Username = user.Username
			entry.DisplayName = user.DisplayName
		}
		entries = append(entries, entry)
	}
	return entries
}
