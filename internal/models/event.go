// Package models defines domain models for the fundraising platform.
package models

import (
	"time"
)

// EventStatus represents the lifecycle state of a fundraising event.
type EventStatus string

// Event lifecycle states. Completed and failed are terminal.
const (
	EventStatusDraft      EventStatus = "draft"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// Terminal reports whether the status allows no further transitions.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusFailed
}

// Event represents a fundraising event. An event completes when any one of
// its end-condition groups is fully satisfied.
type Event struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"not null;size:255" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	OwnerID     uint        `gorm:"not null;index" json:"owner_id"`
	Owner       User        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Status      EventStatus `gorm:"size:20;index;default:draft" json:"status"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Groups []EventEndConditionGroup `gorm:"foreignKey:EventID" json:"groups,omitempty"`
}

// TableName specifies the table name for Event model.
func (Event) TableName() string {
	return "events"
}

// EventEndConditionGroup is an AND-combination of end conditions. The group
// is completed when every owned condition is completed; IsCompleted and
// IsFailed are never both set.
type EventEndConditionGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;index" json:"event_id"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	IsFailed    bool      `gorm:"default:false" json:"is_failed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Conditions []EndCondition `gorm:"foreignKey:GroupID" json:"conditions,omitempty"`
}

// TableName specifies the table name for EventEndConditionGroup model.
func (EventEndConditionGroup) TableName() string {
	return "event_end_condition_groups"
}

// ConditionName identifies which measurement an end condition is evaluated
// against. The value string is parsed according to the name's kind.
type ConditionName string

// Supported condition names.
const (
	ConditionBank               ConditionName = "bank"
	ConditionTime               ConditionName = "time"
	ConditionParticipationCount ConditionName = "participation_count"
)

// Valid reports whether the condition name is one of the supported kinds.
func (n ConditionName) Valid() bool {
	switch n {
	case ConditionBank, ConditionTime, ConditionParticipationCount:
		return true
	}
	return false
}

// ConditionOperator is the comparison operator of an end condition.
type ConditionOperator string

// Supported comparison operators.
const (
	OperatorEquals        ConditionOperator = "equals"
	OperatorGreater       ConditionOperator = "greater"
	OperatorGreaterEquals ConditionOperator = "greater_equals"
	OperatorLess          ConditionOperator = "less"
	OperatorLessEquals    ConditionOperator = "less_equals"
)

// Valid reports whether the operator is one of the five supported operators.
func (o ConditionOperator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorGreater, OperatorGreaterEquals, OperatorLess, OperatorLessEquals:
		return true
	}
	return false
}

// EndCondition is a single comparable predicate contributing to an
// end-condition group. Value holds the string-encoded target: a number for
// bank and participation_count conditions, an RFC 3339 timestamp for time
// conditions. IsCompleted is written only by the condition evaluator and is
// never reset once true.
type EndCondition struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	GroupID     uint              `gorm:"not null;index" json:"group_id"`
	Name        ConditionName     `gorm:"size:50;not null" json:"name"`
	Operator    ConditionOperator `gorm:"size:20;not null" json:"operator"`
	Value       string            `gorm:"size:255;not null" json:"value"`
	IsCompleted bool              `gorm:"default:false" json:"is_completed"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for EndCondition model.
func (EndCondition) TableName() string {
	return "end_conditions"
}

// Participation records that a user joined an event.
type Participation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_participations_event_user" json:"event_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_participations_event_user" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Participation model.
func (Participation) TableName() string {
	return "participations"
}

// Transaction types for the balance ledger.
const (
	TransactionDeposit = "deposit"
	TransactionRefund  = "refund"
)

// BalanceTransaction is one entry in an event's balance ledger. The bank
// total of an event is the sum of its deposits minus its refunds.
type BalanceTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for BalanceTransaction model.
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
