package models

import (
	"time"
)

// CriterionType identifies which user statistic an achievement criterion is
// measured against.
type CriterionType string

// Supported criterion types.
const (
	CriterionEventCount         CriterionType = "event_count"
	CriterionBankAmount         CriterionType = "bank_amount"
	CriterionParticipationCount CriterionType = "participation_count"
	CriterionDonationAmount     CriterionType = "donation_amount"
)

// Valid reports whether the criterion type is supported.
func (t CriterionType) Valid() bool {
	switch t {
	case CriterionEventCount, CriterionBankAmount, CriterionParticipationCount, CriterionDonationAmount:
		return true
	}
	return false
}

// Achievement represents an unlockable achievement with one or more criteria.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Criteria []AchievementCriterion `gorm:"foreignKey:AchievementID" json:"criteria,omitempty"`
}

// TableName specifies the table name for Achievement model.
func (Achievement) TableName() string {
	return "achievements"
}

// AchievementCriterion is a single measurable threshold contributing to an
// achievement. Unlike end conditions, criteria always use reached-or-exceeded
// semantics against Target.
type AchievementCriterion struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AchievementID uint          `gorm:"not null;index" json:"achievement_id"`
	Type          CriterionType `gorm:"size:50;not null;index" json:"type"`
	Target        float64       `gorm:"not null" json:"target"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName specifies the table name for AchievementCriterion model.
func (AchievementCriterion) TableName() string {
	return "achievement_criteria"
}

// UserCriterionProgress tracks one user's measured value toward a criterion.
// CurrentValue always holds the latest absolute measurement; Completed is set
// once the target is reached and is never reset by later regressions.
type UserCriterionProgress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_progress_user_criterion" json:"user_id"`
	CriterionID  uint      `gorm:"not null;uniqueIndex:idx_progress_user_criterion" json:"criterion_id"`
	CurrentValue float64   `gorm:"default:0" json:"current_value"`
	Completed    bool      `gorm:"default:false" json:"completed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserCriterionProgress model.
func (UserCriterionProgress) TableName() string {
	return "user_criterion_progress"
}

// UserAchievementStatus represents the state of a user's achievement.
type UserAchievementStatus string

// User achievement states.
const (
	UserAchievementInProgress UserAchievementStatus = "in_progress"
	UserAchievementCompleted  UserAchievementStatus = "completed"
	UserAchievementFailed     UserAchievementStatus = "failed"
)

// UserAchievement tracks one user's standing for one achievement. UnlockedAt
// is non-nil exactly when Status is completed.
type UserAchievement struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	UserID        uint                  `gorm:"not null;uniqueIndex:idx_user_achievements_user_achievement" json:"user_id"`
	AchievementID uint                  `gorm:"not null;uniqueIndex:idx_user_achievements_user_achievement" json:"achievement_id"`
	Achievement   Achievement           `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	Status        UserAchievementStatus `gorm:"size:20;default:in_progress" json:"status"`
	UnlockedAt    *time.Time            `json:"unlocked_at"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
