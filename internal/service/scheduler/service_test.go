package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/fundcircle/fundcircle/internal/config"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

type mockEventLister struct {
	events           []models.Event
	completedByOwner map[uint]int64
	listErr          error
}

func (m *mockEventLister) ListByStatus(status models.EventStatus) ([]models.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Event
	for _, e := range m.events {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventLister) CountCompletedByOwner(ownerID uint) (int64, error) {
	return m.completedByOwner[ownerID], nil
}

type mockEngine struct {
	evaluated    []uint
	measurements map[uint]conditions.Measurements
	swept        []uint
	transitioned map[uint]bool
	evaluateErr  error
	failResult   bool
}

func (m *mockEngine) EvaluateEvent(_ context.Context, eventID uint, measurements conditions.Measurements) (conditions.Resolution, error) {
	if m.evaluateErr != nil {
		return conditions.Resolution{}, m.evaluateErr
	}
	if m.measurements == nil {
		m.measurements = make(map[uint]conditions.Measurements)
	}
	m.evaluated = append(m.evaluated, eventID)
	m.measurements[eventID] = measurements
	if m.transitioned[eventID] {
		return conditions.Resolution{NewStatus: models.EventStatusCompleted, Transitioned: true}, nil
	}
	return conditions.Resolution{NewStatus: models.EventStatusInProgress}, nil
}

func (m *mockEngine) FailExpiredEvent(_ context.Context, event *models.Event) (bool, error) {
	m.swept = append(m.swept, event.ID)
	return m.failResult, nil
}

type mockBankSource struct {
	totals map[uint]float64
	err    error
}

func (m *mockBankSource) BankTotal(_ context.Context, eventID uint) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.totals[eventID], nil
}

type mockParticipationSource struct {
	counts map[uint]int64
}

func (m *mockParticipationSource) Count(_ context.Context, eventID uint) (int64, error) {
	return m.counts[eventID], nil
}

type recordedStat struct {
	userID uint
	kind   models.CriterionType
	value  float64
}

type mockStatisticRecorder struct {
	recorded []recordedStat
}

func (m *mockStatisticRecorder) RecordStatistic(_ context.Context, userID uint, statType models.CriterionType, value float64) error {
	m.recorded = append(m.recorded, recordedStat{userID: userID, kind: statType, value: value})
	return nil
}

type mockNotifier struct {
	completed []uint
	failed    []uint
	sendErr   error
}

func (m *mockNotifier) EventCompleted(event *models.Event, _ float64) error {
	m.completed = append(m.completed, event.ID)
	return m.sendErr
}

func (m *mockNotifier) EventFailed(event *models.Event) error {
	m.failed = append(m.failed, event.ID)
	return m.sendErr
}

func schedulerConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler.Enabled = enabled
	cfg.Scheduler.EvaluationSchedule = "*/5 * * * *"
	cfg.Scheduler.FailureSweep = "*/15 * * * *"
	cfg.Scheduler.Timezone = "UTC"
	return cfg
}

type testFixture struct {
	lister   *mockEventLister
	engine   *mockEngine
	bank     *mockBankSource
	parts    *mockParticipationSource
	stats    *mockStatisticRecorder
	notifier *mockNotifier
	svc      *Service
}

func newTestFixture(lister *mockEventLister, engine *mockEngine, bank *mockBankSource, parts *mockParticipationSource) *testFixture {
	f := &testFixture{
		lister:   lister,
		engine:   engine,
		bank:     bank,
		parts:    parts,
		stats:    &mockStatisticRecorder{},
		notifier: &mockNotifier{},
	}
	f.svc = NewService(schedulerConfig(true), lister, engine, bank, parts, f.stats, f.notifier, logger.New("error", "json", "stdout"))
	return f
}

func TestRunEvaluation(t *testing.T) {
	lister := &mockEventLister{events: []models.Event{
		{ID: 1, Status: models.EventStatusInProgress},
		{ID: 2, Status: models.EventStatusInProgress},
		{ID: 3, Status: models.EventStatusDraft},
	}}
	engine := &mockEngine{}
	bank := &mockBankSource{totals: map[uint]float64{1: 500, 2: 1200}}
	parts := &mockParticipationSource{counts: map[uint]int64{1: 3, 2: 8}}

	f := newTestFixture(lister, engine, bank, parts)
	f.svc.runEvaluation(context.Background())

	if len(engine.evaluated) != 2 {
		t.Fatalf("Expected 2 evaluations, got %d", len(engine.evaluated))
	}
	m := engine.measurements[2]
	if m[models.ConditionBank] != 1200 {
		t.Errorf("Bank measurement = %v, want 1200", m[models.ConditionBank])
	}
	if m[models.ConditionParticipationCount] != 8 {
		t.Errorf("Participation measurement = %v, want 8", m[models.ConditionParticipationCount])
	}
	if len(f.notifier.completed) != 0 {
		t.Error("No event transitioned, no notification expected")
	}
	if len(f.stats.recorded) != 0 {
		t.Error("No event transitioned, no statistics expected")
	}
}

func TestRunEvaluationCreditsOwnerOnCompletion(t *testing.T) {
	lister := &mockEventLister{
		events: []models.Event{
			{ID: 2, OwnerID: 40, Status: models.EventStatusInProgress},
		},
		completedByOwner: map[uint]int64{40: 3},
	}
	engine := &mockEngine{transitioned: map[uint]bool{2: true}}
	bank := &mockBankSource{totals: map[uint]float64{2: 1200}}
	parts := &mockParticipationSource{counts: map[uint]int64{2: 8}}

	f := newTestFixture(lister, engine, bank, parts)
	f.svc.runEvaluation(context.Background())

	if len(f.stats.recorded) != 2 {
		t.Fatalf("Expected 2 recorded statistics, got %d", len(f.stats.recorded))
	}
	eventCount := f.stats.recorded[0]
	if eventCount.userID != 40 || eventCount.kind != models.CriterionEventCount || eventCount.value != 3 {
		t.Errorf("Event count statistic = %+v, want user 40, event_count, 3", eventCount)
	}
	bankAmount := f.stats.recorded[1]
	if bankAmount.kind != models.CriterionBankAmount || bankAmount.value != 1200 {
		t.Errorf("Bank amount statistic = %+v, want bank_amount 1200", bankAmount)
	}
	if len(f.notifier.completed) != 1 || f.notifier.completed[0] != 2 {
		t.Errorf("Completed notifications = %v, want [2]", f.notifier.completed)
	}
}

func TestRunEvaluationNotifierErrorDoesNotAbort(t *testing.T) {
	lister := &mockEventLister{events: []models.Event{
		{ID: 1, OwnerID: 40, Status: models.EventStatusInProgress},
		{ID: 2, OwnerID: 41, Status: models.EventStatusInProgress},
	}}
	engine := &mockEngine{transitioned: map[uint]bool{1: true, 2: true}}
	bank := &mockBankSource{totals: map[uint]float64{1: 1000, 2: 2000}}
	parts := &mockParticipationSource{}

	f := newTestFixture(lister, engine, bank, parts)
	f.notifier.sendErr = errors.New("webhook down")
	f.svc.runEvaluation(context.Background())

	if len(engine.evaluated) != 2 {
		t.Errorf("Expected both events evaluated despite notifier errors, got %d", len(engine.evaluated))
	}
}

func TestRunEvaluationSkipsOnMeasurementError(t *testing.T) {
	lister := &mockEventLister{events: []models.Event{
		{ID: 1, Status: models.EventStatusInProgress},
	}}
	engine := &mockEngine{}
	bank := &mockBankSource{err: errors.New("redis down")}
	parts := &mockParticipationSource{}

	f := newTestFixture(lister, engine, bank, parts)
	f.svc.runEvaluation(context.Background())

	if len(engine.evaluated) != 0 {
		t.Error("Event with missing measurements must be skipped")
	}
}

func TestRunFailureSweep(t *testing.T) {
	lister := &mockEventLister{events: []models.Event{
		{ID: 1, Status: models.EventStatusInProgress},
		{ID: 2, Status: models.EventStatusCompleted},
	}}
	engine := &mockEngine{failResult: true}

	f := newTestFixture(lister, engine, &mockBankSource{}, &mockParticipationSource{})
	f.svc.runFailureSweep(context.Background())

	if len(engine.swept) != 1 || engine.swept[0] != 1 {
		t.Errorf("Swept = %v, want [1]", engine.swept)
	}
	if len(f.notifier.failed) != 1 || f.notifier.failed[0] != 1 {
		t.Errorf("Failure notifications = %v, want [1]", f.notifier.failed)
	}
}

func TestStartDisabled(t *testing.T) {
	f := newTestFixture(&mockEventLister{}, &mockEngine{}, &mockBankSource{}, &mockParticipationSource{})
	f.svc.config = schedulerConfig(false)

	if err := f.svc.Start(); err != nil {
		t.Fatalf("Disabled scheduler must start as a no-op: %v", err)
	}
	f.svc.Stop()
}

func TestStartInvalidTimezone(t *testing.T) {
	f := newTestFixture(&mockEventLister{}, &mockEngine{}, &mockBankSource{}, &mockParticipationSource{})
	f.svc.config.Scheduler.Timezone = "Mars/Olympus"

	if err := f.svc.Start(); err == nil {
		t.Fatal("Expected error for invalid timezone")
	}
}

func TestStartAndStop(t *testing.T) {
	f := newTestFixture(&mockEventLister{}, &mockEngine{}, &mockBankSource{}, &mockParticipationSource{})

	if err := f.svc.Start(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.svc.Stop()
}
