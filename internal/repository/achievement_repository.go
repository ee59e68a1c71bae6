package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fundcircle/fundcircle/internal/models"
)

// AchievementRepository handles achievement-related database operations.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create creates an achievement with its criteria.
func (r *AchievementRepository) Create(achievement *models.Achievement) error {
	if err := r.db.Create(achievement).Error; err != nil {
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}

// GetByID retrieves an achievement with criteria preloaded.
func (r *AchievementRepository) GetByID(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.Preload("Criteria").First(&achievement, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement %d: %w", id, err)
	}
	return &achievement, nil
}

// GetByName retrieves an achievement by its unique name.
func (r *AchievementRepository) GetByName(name string) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.Preload("Criteria").Where("name = ?", name).First(&achievement).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement %q: %w", name, err)
	}
	return &achievement, nil
}

// List retrieves all achievements with criteria preloaded.
func (r *AchievementRepository) List() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Preload("Criteria").Order("created_at ASC").Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

// ListCriteriaByType retrieves every criterion measured against the given
// statistic, across all achievements.
func (r *AchievementRepository) ListCriteriaByType(t models.CriterionType) ([]models.AchievementCriterion, error) {
	var criteria []models.AchievementCriterion
	err := r.db.Where("type = ?", t).Find(&criteria).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria by type %s: %w", t, err)
	}
	return criteria, nil
}

// GetProgress retrieves a user's progress record for a criterion.
// Returns gorm.ErrRecordNotFound when the user has no measurement yet.
func (r *AchievementRepository) GetProgress(userID, criterionID uint) (*models.UserCriterionProgress, error) {
	var progress models.UserCriterionProgress
	err := r.db.Where("user_id = ? AND criterion_id = ?", userID, criterionID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetOrCreateProgress retrieves a user's progress record for a criterion,
// creating an empty one on first measurement.
func (r *AchievementRepository) GetOrCreateProgress(userID, criterionID uint) (*models.UserCriterionProgress, error) {
	progress, err := r.GetProgress(userID, criterionID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get progress for user %d criterion %d: %w", userID, criterionID, err)
	}

	created := &models.UserCriterionProgress{UserID: userID, CriterionID: criterionID}
	if err := r.db.Create(created).Error; err != nil {
		return nil, fmt.Errorf("failed to create progress for user %d criterion %d: %w", userID, criterionID, err)
	}
	return created, nil
}

// SaveProgress persists a progress record.
func (r *AchievementRepository) SaveProgress(progress *models.UserCriterionProgress) error {
	if err := r.db.Save(progress).Error; err != nil {
		return fmt.Errorf("failed to save progress %d: %w", progress.ID, err)
	}
	return nil
}

// GetOrCreateUserAchievement retrieves a user's standing for an achievement,
// creating an in-progress record on first touch.
func (r *AchievementRepository) GetOrCreateUserAchievement(userID, achievementID uint) (*models.UserAchievement, error) {
	var ua models.UserAchievement
	err := r.db.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&ua).Error
	if err == nil {
		return &ua, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get user achievement for user %d achievement %d: %w", userID, achievementID, err)
	}

	created := &models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		Status:        models.UserAchievementInProgress,
	}
	if err := r.db.Create(created).Error; err != nil {
		return nil, fmt.Errorf("failed to create user achievement for user %d achievement %d: %w", userID, achievementID, err)
	}
	return created, nil
}

// SaveUserAchievement persists a user achievement record.
func (r *AchievementRepository) SaveUserAchievement(ua *models.UserAchievement) error {
	if err := r.db.Save(ua).Error; err != nil {
		return fmt.Errorf("failed to save user achievement %d: %w", ua.ID, err)
	}
	return nil
}

// ListUserAchievements retrieves all of a user's achievement records with the
// achievement and its criteria preloaded.
func (r *AchievementRepository) ListUserAchievements(userID uint) ([]models.UserAchievement, error) {
	var uas []models.UserAchievement
	err := r.db.Where("user_id = ?", userID).
		Preload("Achievement").
		Preload("Achievement.Criteria").
		Order("created_at ASC").
		Find(&uas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements for user %d: %w", userID, err)
	}
	return uas, nil
}

// Sync upserts the achievement catalog by name. Criteria of an existing
// achievement are left untouched so in-flight progress keeps its targets.
func (r *AchievementRepository) Sync(catalog []models.Achievement) error {
	for i := range catalog {
		a := &catalog[i]
		var existing models.Achievement
		err := r.db.Where("name = ?", a.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(a).Error; err != nil {
				return fmt.Errorf("failed to seed achievement %q: %w", a.Name, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up achievement %q: %w", a.Name, err)
		}
		existing.Description = a.Description
		existing.Icon = a.Icon
		if err := r.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update achievement %q: %w", a.Name, err)
		}
	}
	return nil
}
