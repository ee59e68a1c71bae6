package repository

import (
	"testing"

	"github.com/fundcircle/fundcircle/internal/models"
)

func TestTransactionRepositorySumByEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	entries := []models.BalanceTransaction{
		{EventID: 1, UserID: 7, Amount: 1000, Type: models.TransactionDeposit},
		{EventID: 1, UserID: 8, Amount: 500, Type: models.TransactionDeposit},
		{EventID: 1, UserID: 7, Amount: 300, Type: models.TransactionRefund},
		{EventID: 2, UserID: 7, Amount: 999, Type: models.TransactionDeposit},
	}
	for i := range entries {
		if err := repo.Create(&entries[i]); err != nil {
			t.Fatalf("Failed to create transaction: %v", err)
		}
	}

	total, err := repo.SumByEvent(1)
	if err != nil {
		t.Fatalf("Failed to sum: %v", err)
	}
	if total != 1200 {
		t.Errorf("Total = %v, want 1200 (deposits minus refunds)", total)
	}
}

func TestTransactionRepositorySumByEventEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	total, err := repo.SumByEvent(1)
	if err != nil {
		t.Fatalf("Failed to sum: %v", err)
	}
	if total != 0 {
		t.Errorf("Total = %v, want 0 for an empty ledger", total)
	}
}

func TestTransactionRepositorySumDepositsByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	entries := []models.BalanceTransaction{
		{EventID: 1, UserID: 7, Amount: 1000, Type: models.TransactionDeposit},
		{EventID: 2, UserID: 7, Amount: 200, Type: models.TransactionDeposit},
		{EventID: 1, UserID: 7, Amount: 800, Type: models.TransactionRefund},
		{EventID: 1, UserID: 8, Amount: 50, Type: models.TransactionDeposit},
	}
	for i := range entries {
		if err := repo.Create(&entries[i]); err != nil {
			t.Fatalf("Failed to create transaction: %v", err)
		}
	}

	// Refunds do not shrink the donated total.
	total, err := repo.SumDepositsByUser(7)
	if err != nil {
		t.Fatalf("Failed to sum: %v", err)
	}
	if total != 1200 {
		t.Errorf("Donated = %v, want 1200", total)
	}
}
