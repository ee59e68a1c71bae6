package conditions

import (
	"math"

	"github.com/fundcircle/fundcircle/internal/models"
)

// GroupResult is the aggregated completion state of one end-condition group.
type GroupResult struct {
	GroupID         uint `json:"group_id"`
	IsCompleted     bool `json:"is_completed"`
	ProgressPercent int  `json:"progress_percent"`
}

// AggregateGroup folds the already-evaluated conditions of a group into a
// group-level result. A group with no conditions never auto-completes; that
// is a safety default, not a vacuous truth, so a mis-created empty group
// cannot close an event. Pure: no comparator calls, no mutation.
func AggregateGroup(group *models.EventEndConditionGroup) GroupResult {
	result := GroupResult{GroupID: group.ID}

	total := len(group.Conditions)
	if total == 0 {
		return result
	}

	completed := 0
	for _, cond := range group.Conditions {
		if cond.IsCompleted {
			completed++
		}
	}

	result.IsCompleted = completed == total
	result.ProgressPercent = int(math.Round(100 * float64(completed) / float64(total)))
	return result
}
