package conditions

import (
	"context"
	"fmt"
	"time"

	"github.com/fundcircle/fundcircle/internal/metrics"
	"github.com/fundcircle/fundcircle/internal/models"
)

// EvaluateCondition re-checks a single end condition against the supplied
// measurements and persists the completion flag when it flips. Completion is
// monotonic: a completed condition is never reset here.
//
// Malformed conditions (unknown name, unparsable value, unsupported operator)
// leave the condition incomplete and return nil, so siblings still evaluate.
// Only storage failures propagate.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) EvaluateCondition(ctx context.Context, cond *models.EndCondition, m Measurements) error {
	if cond.IsCompleted {
		return nil
	}

	target, err := ParseTarget(cond.Name, cond.Value)
	if err != nil {
		s.log.Warn().
			Err(err).
			Uint("condition_id", cond.ID).
			Str("name", string(cond.Name)).
			Msg("Skipping condition with malformed target")
		return nil
	}

	var actual, threshold float64
	switch target.Kind {
	case TargetTime:
		// The stored instant is compared against the clock: a less_equals
		// deadline becomes satisfied once that moment has passed, while a
		// future deadline is not yet satisfied.
		actual = float64(target.Time.Unix())
		threshold = float64(s.now().Unix())
	case TargetNumber:
		measurement, ok := m[cond.Name]
		if !ok {
			// No measurement supplied for this condition in this pass.
			return nil
		}
		actual = measurement
		threshold = target.Number
	}

	satisfied, err := Compare(cond.Operator, actual, threshold)
	if err != nil {
		s.log.Warn().
			Err(err).
			Uint("condition_id", cond.ID).
			Str("operator", string(cond.Operator)).
			Msg("Skipping condition with unsupported operator")
		return nil
	}

	if !satisfied {
		return nil
	}

	cond.IsCompleted = true
	if err := s.events.SaveCondition(cond); err != nil {
		return fmt.Errorf("persist condition %d: %w", cond.ID, err)
	}

	metrics.RecordConditionCompleted(string(cond.Name))
	s.log.Debug().
		Uint("condition_id", cond.ID).
		Str("name", string(cond.Name)).
		Msg("Condition completed")

	return nil
}

// EvaluateEvent runs a full evaluation pass for one event: every condition of
// every group is re-checked against the supplied measurements, then the event
// is resolved. Safe to call repeatedly; terminal events are a no-op.
func (s *Service) EvaluateEvent(ctx context.Context, eventID uint, m Measurements) (Resolution, error) {
	start := time.Now()

	event, err := s.events.GetByID(eventID)
	if err != nil {
		return Resolution{}, fmt.Errorf("load event %d: %w", eventID, err)
	}

	if event.Status != models.EventStatusInProgress {
		return Resolution{NewStatus: event.Status, Transitioned: false}, nil
	}

	for gi := range event.Groups {
		group := &event.Groups[gi]
		if group.IsFailed {
			continue
		}
		for ci := range group.Conditions {
			if err := s.EvaluateCondition(ctx, &group.Conditions[ci], m); err != nil {
				return Resolution{NewStatus: event.Status}, err
			}
		}
	}

	resolution, err := s.ResolveEvent(ctx, event)
	metrics.EventEvaluationSeconds.Observe(time.Since(start).Seconds())
	return resolution, err
}
