// Package conditions implements the end-condition evaluation engine: the
// comparator, the per-condition evaluator, the group aggregator and the event
// completion resolver.
package conditions

import (
	"errors"
	"fmt"

	"github.com/fundcircle/fundcircle/internal/models"
)

// ErrUnsupportedOperator is returned by Compare for operators outside the
// five supported ones. Callers treat it as "condition not satisfied" so one
// malformed condition never blocks evaluation of its siblings.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// Compare evaluates a single (operator, actual, target) triple. Timestamps
// are compared through this same function after being reduced to epoch
// seconds, so there is no locale or timezone ambiguity.
func Compare(operator models.ConditionOperator, actual, target float64) (bool, error) {
	switch operator {
	case models.OperatorEquals:
		return actual == target, nil
	case models.OperatorGreater:
		return actual > target, nil
	case models.OperatorGreaterEquals:
		return actual >= target, nil
	case models.OperatorLess:
		return actual < target, nil
	case models.OperatorLessEquals:
		return actual <= target, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, operator)
	}
}
