package leaderboard

import (
	"context"
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
)

// UserStats summarizes one user's footprint on the platform.
type UserStats struct {
	UserID               uint    `json:"user_id"`
	Username             string  `json:"username"`
	TotalDonated         float64 `json:"total_donated"`
	Participations       int64   `json:"participations"`
	AchievementsUnlocked int     `json:"achievements_unlocked"`
	AchievementsTracked  int     `json:"achievements_tracked"`
}

// UserStats assembles a user's donation, participation and achievement
// numbers.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	donated, err := s.donors.SumDepositsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum donations for user %d: %w", userID, err)
	}

	participations, err := s.participations.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participations for user %d: %w", userID, err)
	}

	uas, err := s.achievements.ListUserAchievements(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for user %d: %w", userID, err)
	}
	unlocked := 0
	for _, ua := range uas {
		if ua.Status == models.UserAchievementCompleted {
			unlocked++
		}
	}

	return &UserStats{
		UserID:               userID,
		Username:             user.Username,
		TotalDonated:         donated,
		Participations:       participations,
		AchievementsUnlocked: unlocked,
		AchievementsTracked:  len(uas),
	}, nil
}
