package repository

import (
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
)

// TransactionRepository handles balance ledger database operations.
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a transaction to the ledger. Ledger entries are immutable;
// corrections are recorded as refunds, never as updates.
func (r *TransactionRepository) Create(tx *models.BalanceTransaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// SumByEvent computes an event's bank total: deposits minus refunds.
func (r *TransactionRepository) SumByEvent(eventID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)", models.TransactionDeposit).
		Where("event_id = ?", eventID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for event %d: %w", eventID, err)
	}
	return total, nil
}

// SumDepositsByUser computes a user's cumulative donated amount across all
// events. Refunds are not subtracted: achievement progress is monotonic.
func (r *TransactionRepository) SumDepositsByUser(userID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, models.TransactionDeposit).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum deposits for user %d: %w", userID, err)
	}
	return total, nil
}

// DonorTotal is one row of a donor aggregation: a user with their cumulative
// deposited amount and deposit count.
type DonorTotal struct {
	UserID   uint    `json:"user_id"`
	Total    float64 `json:"total"`
	Deposits int64   `json:"deposits"`
}

// TopDonors returns the users with the highest cumulative deposits across all
// events, largest first.
func (r *TransactionRepository) TopDonors(limit int) ([]DonorTotal, error) {
	var rows []DonorTotal
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("user_id, SUM(amount) AS total, COUNT(*) AS deposits").
		Where("type = ?", models.TransactionDeposit).
		Group("user_id").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank donors: %w", err)
	}
	return rows, nil
}

// TopDonorsByEvent returns the largest donors of one event.
func (r *TransactionRepository) TopDonorsByEvent(eventID uint, limit int) ([]DonorTotal, error) {
	var rows []DonorTotal
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("user_id, SUM(amount) AS total, COUNT(*) AS deposits").
		Where("event_id = ? AND type = ?", eventID, models.TransactionDeposit).
		Group("user_id").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank donors for event %d: %w", eventID, err)
	}
	return rows, nil
}

// DepositStats returns the platform-wide deposit volume and count.
func (r *TransactionRepository) DepositStats() (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("type = ?", models.TransactionDeposit).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute deposit stats: %w", err)
	}
	return row.Total, row.Count, nil
}

// ListByEvent retrieves the ledger of an event, newest first.
func (r *TransactionRepository) ListByEvent(eventID uint) ([]models.BalanceTransaction, error) {
	var txs []models.BalanceTransaction
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for event %d: %w", eventID, err)
	}
	return txs, nil
}
