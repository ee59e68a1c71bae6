package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

type mockEventCounter struct {
	counts map[models.EventStatus]int64
	err    error
}

func (m *mockEventCounter) CountByStatus(status models.EventStatus) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[status], nil
}

type mockDepositSource struct {
	total float64
	count int64
}

func (m *mockDepositSource) DepositStats() (float64, int64, error) {
	return m.total, m.count, nil
}

type mockAchievementLister struct {
	catalog []models.Achievement
}

func (m *mockAchievementLister) List() ([]models.Achievement, error) {
	return m.catalog, nil
}

func TestSummary(t *testing.T) {
	events := &mockEventCounter{counts: map[models.EventStatus]int64{
		models.EventStatusDraft:      2,
		models.EventStatusInProgress: 5,
		models.EventStatusCompleted:  3,
		models.EventStatusFailed:     1,
	}}
	deposits := &mockDepositSource{total: 12000, count: 48}
	achievements := &mockAchievementLister{catalog: []models.Achievement{{ID: 1}, {ID: 2}}}

	svc := NewServiceWithInterfaces(events, deposits, achievements, logger.New("error", "json", "stdout"))
	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.EventsByStatus[models.EventStatusInProgress] != 5 {
		t.Errorf("InProgress = %d, want 5", summary.EventsByStatus[models.EventStatusInProgress])
	}
	if summary.CompletionRate != 75 {
		t.Errorf("CompletionRate = %v, want 75", summary.CompletionRate)
	}
	if summary.TotalDeposited != 12000 || summary.DepositCount != 48 {
		t.Errorf("Deposits = %v over %d entries", summary.TotalDeposited, summary.DepositCount)
	}
	if summary.AverageDeposit != 250 {
		t.Errorf("AverageDeposit = %v, want 250", summary.AverageDeposit)
	}
	if summary.Achievements != 2 {
		t.Errorf("Achievements = %d, want 2", summary.Achievements)
	}
}

func TestSummaryEventCountError(t *testing.T) {
	events := &mockEventCounter{err: errors.New("db down")}
	svc := NewServiceWithInterfaces(events, &mockDepositSource{}, &mockAchievementLister{}, logger.New("error", "json", "stdout"))

	if _, err := svc.Summary(context.Background()); err == nil {
		t.Fatal("Expected error to propagate")
	}
}
