package conditions

import (
	"fmt"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// mockEventRepository is an in-memory EventRepository for evaluator and
// resolver tests.
type mockEventRepository struct {
	events map[uint]*models.Event

	savedConditions []uint
	completedGroups []uint
	failedGroups    []uint
	transitions     []models.EventStatus

	saveConditionErr error
	transitionErr    error
}

func newMockEventRepository(events ...*models.Event) *mockEventRepository {
	m := &mockEventRepository{events: make(map[uint]*models.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventRepository) GetByID(id uint) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d not found", id)
	}
	return event, nil
}

func (m *mockEventRepository) SaveCondition(cond *models.EndCondition) error {
	if m.saveConditionErr != nil {
		return m.saveConditionErr
	}
	m.savedConditions = append(m.savedConditions, cond.ID)
	return nil
}

func (m *mockEventRepository) CompleteGroup(groupID uint) error {
	m.completedGroups = append(m.completedGroups, groupID)
	return nil
}

func (m *mockEventRepository) FailGroup(groupID uint) error {
	m.failedGroups = append(m.failedGroups, groupID)
	return nil
}

func (m *mockEventRepository) TransitionStatus(id uint, from, to models.EventStatus, completedAt *time.Time) error {
	if m.transitionErr != nil {
		return m.transitionErr
	}
	event, ok := m.events[id]
	if !ok {
		return fmt.Errorf("event %d not found", id)
	}
	if event.Status != from {
		return fmt.Errorf("event %d is %s, not %s: %w", id, event.Status, from, repository.ErrStatusConflict)
	}
	event.Status = to
	event.CompletedAt = completedAt
	m.transitions = append(m.transitions, to)
	return nil
}

func newTestService(repo *mockEventRepository, now time.Time) *Service {
	return NewServiceWithInterfaces(repo, logger.New("error", "json", "stdout"), func() time.Time { return now })
}
