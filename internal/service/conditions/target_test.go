package conditions

import (
	"testing"
	"time"

	"github.com/fundcircle/fundcircle/internal/models"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		cond    models.ConditionName
		raw     string
		want    Target
		wantErr bool
	}{
		{"Bank number", models.ConditionBank, "1500.50", Target{Kind: TargetNumber, Number: 1500.50}, false},
		{"Participation count", models.ConditionParticipationCount, "25", Target{Kind: TargetNumber, Number: 25}, false},
		{"Time instant", models.ConditionTime, "2026-06-01T12:00:00Z", Target{Kind: TargetTime, Time: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}, false},
		{"Bank not a number", models.ConditionBank, "a lot", Target{}, true},
		{"Time not a timestamp", models.ConditionTime, "June 1st", Target{}, true},
		{"Time with date only", models.ConditionTime, "2026-06-01", Target{}, true},
		{"Unknown name", "weather", "sunny", Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.cond, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Kind != tt.want.Kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.want.Kind)
			}
			if got.Kind == TargetNumber && got.Number != tt.want.Number {
				t.Errorf("Number = %v, want %v", got.Number, tt.want.Number)
			}
			if got.Kind == TargetTime && !got.Time.Equal(tt.want.Time) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want.Time)
			}
		})
	}
}
