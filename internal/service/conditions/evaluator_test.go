package conditions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestEvaluateConditionBank(t *testing.T) {
	tests := []struct {
		name          string
		operator      models.ConditionOperator
		value         string
		measurement   float64
		wantCompleted bool
	}{
		{"Target reached", models.OperatorGreaterEquals, "1000", 1000, true},
		{"Target exceeded", models.OperatorGreaterEquals, "1000", 1500, true},
		{"Target not reached", models.OperatorGreaterEquals, "1000", 999.99, false},
		{"Exact match", models.OperatorEquals, "500", 500, true},
		{"Upper bound held", models.OperatorLessEquals, "500", 200, true},
		{"Upper bound broken", models.OperatorLess, "500", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockEventRepository()
			svc := newTestService(repo, testNow)

			cond := &models.EndCondition{ID: 1, Name: models.ConditionBank, Operator: tt.operator, Value: tt.value}
			m := Measurements{models.ConditionBank: tt.measurement}

			if err := svc.EvaluateCondition(context.Background(), cond, m); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cond.IsCompleted != tt.wantCompleted {
				t.Errorf("IsCompleted = %v, want %v", cond.IsCompleted, tt.wantCompleted)
			}
			if tt.wantCompleted && len(repo.savedConditions) != 1 {
				t.Errorf("Expected condition to be persisted, saved %d", len(repo.savedConditions))
			}
			if !tt.wantCompleted && len(repo.savedConditions) != 0 {
				t.Error("Unsatisfied condition must not be persisted")
			}
		})
	}
}

func TestEvaluateConditionTime(t *testing.T) {
	tests := []struct {
		name          string
		operator      models.ConditionOperator
		value         string
		wantCompleted bool
	}{
		{"Deadline passed", models.OperatorLessEquals, testNow.Add(-time.Hour).Format(time.RFC3339), true},
		{"Deadline exactly now", models.OperatorLessEquals, testNow.Format(time.RFC3339), true},
		{"Deadline in the future", models.OperatorLessEquals, testNow.Add(time.Hour).Format(time.RFC3339), false},
		{"Start instant reached", models.OperatorLess, testNow.Add(-time.Minute).Format(time.RFC3339), true},
		{"Future instant with greater", models.OperatorGreater, testNow.Add(time.Hour).Format(time.RFC3339), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockEventRepository()
			svc := newTestService(repo, testNow)

			cond := &models.EndCondition{ID: 1, Name: models.ConditionTime, Operator: tt.operator, Value: tt.value}

			if err := svc.EvaluateCondition(context.Background(), cond, nil); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cond.IsCompleted != tt.wantCompleted {
				t.Errorf("IsCompleted = %v, want %v", cond.IsCompleted, tt.wantCompleted)
			}
		})
	}
}

func TestEvaluateConditionAlreadyCompleted(t *testing.T) {
	repo := newMockEventRepository()
	svc := newTestService(repo, testNow)

	// A completed condition stays completed even when the measurement has
	// since dropped below the target.
	cond := &models.EndCondition{ID: 1, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1000", IsCompleted: true}
	m := Measurements{models.ConditionBank: 10}

	if err := svc.EvaluateCondition(context.Background(), cond, m); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cond.IsCompleted {
		t.Error("Completed condition must never be reset")
	}
	if len(repo.savedConditions) != 0 {
		t.Error("Completed condition must not be re-persisted")
	}
}

func TestEvaluateConditionMissingMeasurement(t *testing.T) {
	repo := newMockEventRepository()
	svc := newTestService(repo, testNow)

	cond := &models.EndCondition{ID: 1, Name: models.ConditionParticipationCount, Operator: models.OperatorGreaterEquals, Value: "10"}

	if err := svc.EvaluateCondition(context.Background(), cond, Measurements{models.ConditionBank: 5000}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cond.IsCompleted {
		t.Error("Condition without a measurement must stay incomplete")
	}
}

func TestEvaluateConditionMalformed(t *testing.T) {
	tests := []struct {
		name string
		cond models.EndCondition
	}{
		{"Unknown name", models.EndCondition{ID: 1, Name: "weather", Operator: models.OperatorEquals, Value: "sunny"}},
		{"Unparsable number", models.EndCondition{ID: 2, Name: models.ConditionBank, Operator: models.OperatorEquals, Value: "a lot"}},
		{"Unparsable timestamp", models.EndCondition{ID: 3, Name: models.ConditionTime, Operator: models.OperatorLessEquals, Value: "tomorrow"}},
		{"Unsupported operator", models.EndCondition{ID: 4, Name: models.ConditionBank, Operator: "between", Value: "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockEventRepository()
			svc := newTestService(repo, testNow)

			cond := tt.cond
			m := Measurements{models.ConditionBank: 100, models.ConditionParticipationCount: 100}

			if err := svc.EvaluateCondition(context.Background(), &cond, m); err != nil {
				t.Fatalf("Malformed condition must not error, got: %v", err)
			}
			if cond.IsCompleted {
				t.Error("Malformed condition must stay incomplete")
			}
		})
	}
}

func TestEvaluateConditionPersistenceError(t *testing.T) {
	repo := newMockEventRepository()
	repo.saveConditionErr = errors.New("connection reset")
	svc := newTestService(repo, testNow)

	cond := &models.EndCondition{ID: 1, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "100"}
	err := svc.EvaluateCondition(context.Background(), cond, Measurements{models.ConditionBank: 200})
	if err == nil {
		t.Fatal("Expected storage error to propagate")
	}
	if !errors.Is(err, repo.saveConditionErr) {
		t.Errorf("Expected wrapped storage error, got %v", err)
	}
}

func TestEvaluateEventCompletesOnSatisfiedGroup(t *testing.T) {
	deadline := testNow.Add(-time.Hour).Format(time.RFC3339)
	event := &models.Event{
		ID:     1,
		Status: models.EventStatusInProgress,
		Groups: []models.EventEndConditionGroup{
			{
				ID:      10,
				EventID: 1,
				Conditions: []models.EndCondition{
					{ID: 100, GroupID: 10, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1000"},
					{ID: 101, GroupID: 10, Name: models.ConditionTime, Operator: models.OperatorLessEquals, Value: deadline},
				},
			},
		},
	}
	repo := newMockEventRepository(event)
	svc := newTestService(repo, testNow)

	resolution, err := svc.EvaluateEvent(context.Background(), 1, Measurements{models.ConditionBank: 1200})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resolution.Transitioned {
		t.Fatal("Expected event to transition")
	}
	if resolution.NewStatus != models.EventStatusCompleted {
		t.Errorf("NewStatus = %s, want %s", resolution.NewStatus, models.EventStatusCompleted)
	}
	if event.Status != models.EventStatusCompleted {
		t.Errorf("Event status = %s, want %s", event.Status, models.EventStatusCompleted)
	}
	if event.CompletedAt == nil || !event.CompletedAt.Equal(testNow) {
		t.Errorf("CompletedAt = %v, want %v", event.CompletedAt, testNow)
	}
	if len(repo.completedGroups) != 1 || repo.completedGroups[0] != 10 {
		t.Errorf("Completed groups = %v, want [10]", repo.completedGroups)
	}
}

func TestEvaluateEventPartialGroupStaysInProgress(t *testing.T) {
	event := &models.Event{
		ID:     1,
		Status: models.EventStatusInProgress,
		Groups: []models.EventEndConditionGroup{
			{
				ID:      10,
				EventID: 1,
				Conditions: []models.EndCondition{
					{ID: 100, GroupID: 10, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1000"},
					{ID: 101, GroupID: 10, Name: models.ConditionParticipationCount, Operator: models.OperatorGreaterEquals, Value: "50"},
				},
			},
		},
	}
	repo := newMockEventRepository(event)
	svc := newTestService(repo, testNow)

	resolution, err := svc.EvaluateEvent(context.Background(), 1, Measurements{
		models.ConditionBank:               1500,
		models.ConditionParticipationCount: 20,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolution.Transitioned {
		t.Error("Partially satisfied group must not complete the event")
	}
	if event.Status != models.EventStatusInProgress {
		t.Errorf("Event status = %s, want %s", event.Status, models.EventStatusInProgress)
	}
	if !event.Groups[0].Conditions[0].IsCompleted {
		t.Error("Satisfied bank condition should be completed")
	}
	if event.Groups[0].Conditions[1].IsCompleted {
		t.Error("Unsatisfied participation condition must stay incomplete")
	}
}

func TestEvaluateEventSequentialDepositsReachTarget(t *testing.T) {
	deadline := testNow.Add(-time.Hour).Format(time.RFC3339)
	event := &models.Event{
		ID:     1,
		Status: models.EventStatusInProgress,
		Groups: []models.EventEndConditionGroup{
			{
				ID:      10,
				EventID: 1,
				Conditions: []models.EndCondition{
					{ID: 100, GroupID: 10, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1000"},
					{ID: 101, GroupID: 10, Name: models.ConditionTime, Operator: models.OperatorLessEquals, Value: deadline},
				},
			},
		},
	}
	repo := newMockEventRepository(event)
	svc := newTestService(repo, testNow)

	// First deposit falls short of the target: the time condition completes
	// but the group stays open.
	resolution, err := svc.EvaluateEvent(context.Background(), 1, Measurements{models.ConditionBank: 500})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolution.Transitioned {
		t.Fatal("Event must not transition before the bank target is reached")
	}
	if event.Status != models.EventStatusInProgress {
		t.Fatalf("Event status = %s, want %s", event.Status, models.EventStatusInProgress)
	}
	if !event.Groups[0].Conditions[1].IsCompleted {
		t.Error("Expired time condition should be completed after the first pass")
	}
	if event.Groups[0].Conditions[0].IsCompleted {
		t.Error("Bank condition must stay incomplete at 500")
	}

	// A later deposit pushes the balance to the target and the same group
	// now completes on re-evaluation.
	resolution, err = svc.EvaluateEvent(context.Background(), 1, Measurements{models.ConditionBank: 1000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resolution.Transitioned {
		t.Fatal("Expected event to transition once the bank target is reached")
	}
	if resolution.NewStatus != models.EventStatusCompleted {
		t.Errorf("NewStatus = %s, want %s", resolution.NewStatus, models.EventStatusCompleted)
	}
	if event.CompletedAt == nil || !event.CompletedAt.Equal(testNow) {
		t.Errorf("CompletedAt = %v, want %v", event.CompletedAt, testNow)
	}
	if len(repo.completedGroups) != 1 || repo.completedGroups[0] != 10 {
		t.Errorf("Completed groups = %v, want [10]", repo.completedGroups)
	}
}

func TestEvaluateEventTerminalIsNoOp(t *testing.T) {
	for _, status := range []models.EventStatus{models.EventStatusCompleted, models.EventStatusFailed, models.EventStatusDraft} {
		event := &models.Event{
			ID:     1,
			Status: status,
			Groups: []models.EventEndConditionGroup{
				{
					ID:      10,
					EventID: 1,
					Conditions: []models.EndCondition{
						{ID: 100, GroupID: 10, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1"},
					},
				},
			},
		}
		repo := newMockEventRepository(event)
		svc := newTestService(repo, testNow)

		resolution, err := svc.EvaluateEvent(context.Background(), 1, Measurements{models.ConditionBank: 100})
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if resolution.Transitioned {
			t.Errorf("status %s: must not transition", status)
		}
		if resolution.NewStatus != status {
			t.Errorf("status %s: NewStatus = %s", status, resolution.NewStatus)
		}
		if len(repo.savedConditions) != 0 {
			t.Errorf("status %s: conditions must not be evaluated", status)
		}
	}
}

func TestEvaluateEventSkipsFailedGroups(t *testing.T) {
	event := &models.Event{
		ID:     1,
		Status: models.EventStatusInProgress,
		Groups: []models.EventEndConditionGroup{
			{
				ID:       10,
				EventID:  1,
				IsFailed: true,
				Conditions: []models.EndCondition{
					{ID: 100, GroupID: 10, Name: models.ConditionBank, Operator: models.OperatorGreaterEquals, Value: "1"},
				},
			},
		},
	}
	repo := newMockEventRepository(event)
	svc := newTestService(repo, testNow)

	resolution, err := svc.EvaluateEvent(context.Background(), 1, Measurements{models.ConditionBank: 100})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolution.Transitioned {
		t.Error("Failed group must not complete the event")
	}
	if event.Groups[0].Conditions[0].IsCompleted {
		t.Error("Conditions of a failed group must not be evaluated")
	}
}
