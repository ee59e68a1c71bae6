package conditions

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundcircle/fundcircle/internal/metrics"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
)

// Resolution is the outcome of resolving an event against its groups.
type Resolution struct {
	NewStatus    models.EventStatus `json:"new_status"`
	Transitioned bool               `json:"transitioned"`
}

// ResolveEvent decides whether an event transitions to completed. Groups use
// OR semantics: any one fully satisfied group closes the event. Events not in
// progress are a no-op with Transitioned=false, which keeps terminal states
// terminal and makes repeated calls idempotent.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) ResolveEvent(ctx context.Context, event *models.Event) (Resolution, error) {
	if event.Status != models.EventStatusInProgress {
		return Resolution{NewStatus: event.Status, Transitioned: false}, nil
	}

	for gi := range event.Groups {
		group := &event.Groups[gi]
		if group.IsFailed {
			continue
		}

		result := AggregateGroup(group)
		if !result.IsCompleted {
			continue
		}

		if !group.IsCompleted {
			if err := s.events.CompleteGroup(group.ID); err != nil {
				return Resolution{NewStatus: event.Status}, err
			}
			group.IsCompleted = true
		}

		now := s.now()
		err := s.events.TransitionStatus(event.ID, models.EventStatusInProgress, models.EventStatusCompleted, &now)
		if err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				// A concurrent resolver already closed this event.
				return Resolution{NewStatus: models.EventStatusCompleted, Transitioned: false}, nil
			}
			return Resolution{NewStatus: event.Status}, fmt.Errorf("complete event %d: %w", event.ID, err)
		}

		event.Status = models.EventStatusCompleted
		event.CompletedAt = &now

		metrics.RecordEventTransition(string(models.EventStatusCompleted))
		s.log.Info().
			Uint("event_id", event.ID).
			Uint("group_id", group.ID).
			Msg("Event completed")

		return Resolution{NewStatus: models.EventStatusCompleted, Transitioned: true}, nil
	}

	return Resolution{NewStatus: models.EventStatusInProgress, Transitioned: false}, nil
}

// FailExpiredEvent marks an in-progress event failed once every one of its
// groups holds an expired deadline with work still outstanding. Called by the
// periodic sweep, never by the inline resolver: deadline expiry is a policy
// decision, not part of pure evaluation.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) FailExpiredEvent(ctx context.Context, event *models.Event) (bool, error) {
	if event.Status != models.EventStatusInProgress {
		return false, nil
	}
	if len(event.Groups) == 0 {
		return false, nil
	}

	now := s.now()
	for gi := range event.Groups {
		group := &event.Groups[gi]
		if group.IsCompleted {
			// Still resolvable; the resolver owns this path.
			return false, nil
		}
		if !group.IsFailed && !s.groupExpired(group) {
			return false, nil
		}
	}

	for gi := range event.Groups {
		group := &event.Groups[gi]
		if group.IsFailed {
			continue
		}
		if err := s.events.FailGroup(group.ID); err != nil {
			return false, err
		}
		group.IsFailed = true
	}

	err := s.events.TransitionStatus(event.ID, models.EventStatusInProgress, models.EventStatusFailed, &now)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return false, nil
		}
		return false, fmt.Errorf("fail event %d: %w", event.ID, err)
	}

	event.Status = models.EventStatusFailed
	metrics.RecordEventTransition(string(models.EventStatusFailed))
	s.log.Info().
		Uint("event_id", event.ID).
		Msg("Event failed: all deadline groups expired unmet")

	return true, nil
}

// groupExpired reports whether a not-yet-completed group carries a time
// condition whose instant lies in the past. Remaining conditions were due by
// that instant, so the group can no longer complete as a whole.
func (s *Service) groupExpired(group *models.EventEndConditionGroup) bool {
	now := s.now()
	for _, cond := range group.Conditions {
		if cond.Name != models.ConditionTime {
			continue
		}
		target, err := ParseTarget(cond.Name, cond.Value)
		if err != nil {
			continue
		}
		if target.Time.Before(now) {
			return true
		}
	}
	return false
}

// EventProgress returns the per-group completion percentages of an event for
// progress display.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) EventProgress(ctx context.Context, eventID uint) ([]GroupResult, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %d: %w", eventID, err)
	}

	results := make([]GroupResult, 0, len(event.Groups))
	for gi := range event.Groups {
		results = append(results, AggregateGroup(&event.Groups[gi]))
	}
	return results, nil
}
