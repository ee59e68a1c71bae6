package conditions

import (
	"errors"
	"testing"

	"github.com/fundcircle/fundcircle/internal/models"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		operator models.ConditionOperator
		actual   float64
		target   float64
		expected bool
	}{
		{"Equals - true", models.OperatorEquals, 100, 100, true},
		{"Equals - false", models.OperatorEquals, 100, 50, false},
		{"Greater - true", models.OperatorGreater, 150, 100, true},
		{"Greater - false (equal)", models.OperatorGreater, 100, 100, false},
		{"Greater - false", models.OperatorGreater, 50, 100, false},
		{"Greater equals - true (greater)", models.OperatorGreaterEquals, 150, 100, true},
		{"Greater equals - true (equal)", models.OperatorGreaterEquals, 100, 100, true},
		{"Greater equals - false", models.OperatorGreaterEquals, 50, 100, false},
		{"Less - true", models.OperatorLess, 50, 100, true},
		{"Less - false (equal)", models.OperatorLess, 100, 100, false},
		{"Less - false", models.OperatorLess, 150, 100, false},
		{"Less equals - true (less)", models.OperatorLessEquals, 50, 100, true},
		{"Less equals - true (equal)", models.OperatorLessEquals, 100, 100, true},
		{"Less equals - false", models.OperatorLessEquals, 150, 100, false},
		{"Negative values", models.OperatorGreater, -1, -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compare(tt.operator, tt.actual, tt.target)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Compare(%s, %v, %v) = %v, want %v", tt.operator, tt.actual, tt.target, result, tt.expected)
			}
		})
	}
}

func TestCompareUnsupportedOperator(t *testing.T) {
	result, err := Compare("between", 100, 50)
	if err == nil {
		t.Fatal("Expected error for unsupported operator")
	}
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("Expected ErrUnsupportedOperator, got %v", err)
	}
	if result {
		t.Error("Unsupported operator must report not satisfied")
	}
}
