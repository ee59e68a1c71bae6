package conditions

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
)

// TargetKind discriminates the parsed representation of a condition target.
type TargetKind int

// Target kinds.
const (
	TargetNumber TargetKind = iota
	TargetTime
)

// Target is the typed form of an end condition's string-encoded value,
// parsed once per evaluation. Number is set for bank and participation_count
// conditions, Time for time conditions.
type Target struct {
	Kind   TargetKind
	Number float64
	Time   time.Time
}

// ParseTarget parses a condition value according to the name's declared type.
func ParseTarget(name models.ConditionName, raw string) (Target, error) {
	switch name {
	case models.ConditionBank, models.ConditionParticipationCount:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Target{}, fmt.Errorf("condition %s: invalid numeric target %q: %w", name, raw, err)
		}
		return Target{Kind: TargetNumber, Number: n}, nil
	case models.ConditionTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Target{}, fmt.Errorf("condition %s: invalid timestamp target %q: %w", name, raw, err)
		}
		return Target{Kind: TargetTime, Time: t}, nil
	default:
		return Target{}, fmt.Errorf("unknown condition name: %s", name)
	}
}
