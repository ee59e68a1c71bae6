// Package achievements implements the achievement progress resolver: per-user
// criterion progress tracking and the unlock state machine.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fundcircle/fundcircle/internal/config"
	"github.com/fundcircle/fundcircle/internal/metrics"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// ErrStatusAlreadySet is returned when a user achievement is moved to the
// status it already holds. Guards against a duplicate unlock notification
// being processed twice.
var ErrStatusAlreadySet = errors.New("status already set to this value")

// AchievementRepository interface for achievement persistence operations.
type AchievementRepository interface {
	GetByID(id uint) (*models.Achievement, error)
	List() ([]models.Achievement, error)
	ListCriteriaByType(t models.CriterionType) ([]models.AchievementCriterion, error)
	GetProgress(userID, criterionID uint) (*models.UserCriterionProgress, error)
	GetOrCreateProgress(userID, criterionID uint) (*models.UserCriterionProgress, error)
	SaveProgress(progress *models.UserCriterionProgress) error
	GetOrCreateUserAchievement(userID, achievementID uint) (*models.UserAchievement, error)
	SaveUserAchievement(ua *models.UserAchievement) error
	ListUserAchievements(userID uint) ([]models.UserAchievement, error)
	Sync(catalog []models.Achievement) error
}

// Notifier announces unlocked achievements. A nil notifier disables the
// announcements without touching the unlock itself.
type Notifier interface {
	AchievementUnlocked(userID uint, achievement *models.Achievement) error
}

// ProgressResult reports the effect of recording one measurement.
type ProgressResult struct {
	CriterionCompleted  bool `json:"criterion_completed"`
	AchievementUnlocked bool `json:"achievement_unlocked"`
}

// Service tracks user progress toward achievements and issues unlocks.
type Service struct {
	repo     AchievementRepository
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a new achievement service.
func NewService(repo *repository.AchievementRepository, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface
// dependencies and an injectable clock (useful for testing).
func NewServiceWithInterfaces(repo AchievementRepository, notifier Notifier, log *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      now,
	}
}

// RecordProgress overwrites a user's current value for one criterion with the
// latest absolute measurement and, if the target is now reached, marks the
// criterion completed. Completion is monotonic: a later lower measurement
// never resets it, so earned progress survives refunds and other regressions.
// When the final outstanding criterion completes, the owning user achievement
// unlocks.
func (s *Service) RecordProgress(ctx context.Context, userID uint, criterion *models.AchievementCriterion, newMeasurement float64) (ProgressResult, error) {
	var result ProgressResult

	progress, err := s.repo.GetOrCreateProgress(userID, criterion.ID)
	if err != nil {
		return result, fmt.Errorf("load progress: %w", err)
	}

	progress.CurrentValue = newMeasurement
	if !progress.Completed && newMeasurement >= criterion.Target {
		// Criteria use fixed reached-or-exceeded semantics, unlike the
		// five-operator end conditions.
		progress.Completed = true
	}

	if err := s.repo.SaveProgress(progress); err != nil {
		return result, fmt.Errorf("save progress: %w", err)
	}
	result.CriterionCompleted = progress.Completed

	if !progress.Completed {
		return result, nil
	}

	unlocked, err := s.tryUnlock(ctx, userID, criterion)
	if err != nil {
		return result, err
	}
	result.AchievementUnlocked = unlocked
	return result, nil
}

// tryUnlock completes the user achievement when every criterion is satisfied
// and the record is still in progress.
func (s *Service) tryUnlock(ctx context.Context, userID uint, criterion *models.AchievementCriterion) (bool, error) {
	achievement, err := s.repo.GetByID(criterion.AchievementID)
	if err != nil {
		return false, fmt.Errorf("load achievement %d: %w", criterion.AchievementID, err)
	}

	for _, c := range achievement.Criteria {
		if c.ID == criterion.ID {
			continue
		}
		p, err := s.repo.GetProgress(userID, c.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Never measured means not completed.
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("load progress for criterion %d: %w", c.ID, err)
		}
		if !p.Completed {
			return false, nil
		}
	}

	ua, err := s.repo.GetOrCreateUserAchievement(userID, achievement.ID)
	if err != nil {
		return false, fmt.Errorf("load user achievement: %w", err)
	}
	if ua.Status != models.UserAchievementInProgress {
		return false, nil
	}

	if err := s.UpdateStatus(ctx, ua, models.UserAchievementCompleted); err != nil {
		return false, err
	}

	metrics.RecordAchievementUnlocked(achievement.Name)
	s.log.Info().
		Uint("user_id", userID).
		Str("achievement", achievement.Name).
		Msg("Achievement unlocked")

	if s.notifier != nil {
		if err := s.notifier.AchievementUnlocked(userID, achievement); err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", userID).
				Str("achievement", achievement.Name).
				Msg("Failed to send unlock notification")
		}
	}

	return true, nil
}

// UpdateStatus transitions a user achievement to a new status. Setting the
// status it already holds is a caller bug and is rejected. UnlockedAt is
// non-nil exactly while the status is completed.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) UpdateStatus(ctx context.Context, ua *models.UserAchievement, status models.UserAchievementStatus) error {
	if ua.Status == status {
		return fmt.Errorf("user achievement %d: %w", ua.ID, ErrStatusAlreadySet)
	}

	ua.Status = status
	if status == models.UserAchievementCompleted {
		now := s.now()
		ua.UnlockedAt = &now
	} else {
		ua.UnlockedAt = nil
	}

	if err := s.repo.SaveUserAchievement(ua); err != nil {
		return fmt.Errorf("save user achievement %d: %w", ua.ID, err)
	}
	return nil
}

// RecordStatistic feeds a changed user statistic into every criterion that
// measures it. Per-criterion failures are logged and skipped so one bad
// criterion never blocks the rest.
func (s *Service) RecordStatistic(ctx context.Context, userID uint, statType models.CriterionType, value float64) error {
	criteria, err := s.repo.ListCriteriaByType(statType)
	if err != nil {
		return fmt.Errorf("list criteria for %s: %w", statType, err)
	}

	for i := range criteria {
		if _, err := s.RecordProgress(ctx, userID, &criteria[i], value); err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", userID).
				Uint("criterion_id", criteria[i].ID).
				Msg("Failed to record criterion progress")
			continue
		}
	}
	return nil
}

// UserAchievementView is one achievement with the user's standing and
// per-criterion progress, for display.
type UserAchievementView struct {
	Achievement models.Achievement           `json:"achievement"`
	Status      models.UserAchievementStatus `json:"status"`
	UnlockedAt  *time.Time                   `json:"unlocked_at"`
	Criteria    []CriterionProgressView      `json:"criteria"`
}

// CriterionProgressView is one criterion's progress for display.
type CriterionProgressView struct {
	CriterionID  uint                 `json:"criterion_id"`
	Type         models.CriterionType `json:"type"`
	Target       float64              `json:"target"`
	CurrentValue float64              `json:"current_value"`
	Completed    bool                 `json:"completed"`
}

// UserOverview assembles a user's standing across all achievements.
func (s *Service) UserOverview(ctx context.Context, userID uint) ([]UserAchievementView, error) {
	uas, err := s.repo.ListUserAchievements(userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}

	views := make([]UserAchievementView, 0, len(uas))
	for _, ua := range uas {
		view := UserAchievementView{
			Achievement: ua.Achievement,
			Status:      ua.Status,
			UnlockedAt:  ua.UnlockedAt,
		}
		for _, c := range ua.Achievement.Criteria {
			cv := CriterionProgressView{
				CriterionID: c.ID,
				Type:        c.Type,
				Target:      c.Target,
			}
			p, err := s.repo.GetProgress(userID, c.ID)
			if err == nil {
				cv.CurrentValue = p.CurrentValue
				cv.Completed = p.Completed
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load progress for criterion %d: %w", c.ID, err)
			}
			view.Criteria = append(view.Criteria, cv)
		}
		views = append(views, view)
	}
	return views, nil
}

// Catalog returns every achievement with its criteria.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Catalog(ctx context.Context) ([]models.Achievement, error) {
	return s.repo.List()
}

// SyncCatalog seeds the configured achievement catalog into the database.
func (s *Service) SyncCatalog(ctx context.Context, cfgs []config.AchievementConfig) error {
	catalog := make([]models.Achievement, 0, len(cfgs))
	for _, cfg := range cfgs {
		a := models.Achievement{
			Name:        cfg.Name,
			Description: cfg.Description,
			Icon:        cfg.Icon,
		}
		for _, cr := range cfg.Criteria {
			a.Criteria = append(a.Criteria, models.AchievementCriterion{
				Type:   models.CriterionType(cr.Type),
				Target: cr.Target,
			})
		}
		catalog = append(catalog, a)
	}

	if err := s.repo.Sync(catalog); err != nil {
		return fmt.Errorf("sync achievement catalog: %w", err)
	}

	s.log.Info().
		Int("achievements", len(catalog)).
		Msg("Achievement catalog synced")
	return nil
}
