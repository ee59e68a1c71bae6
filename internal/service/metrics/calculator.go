// Package metrics computes platform-level statistics for the dashboard.
package metrics

import "math"

// CompletionRate returns the share of terminal events that completed, as a
// percentage rounded to one decimal. Returns 0 when no event has terminated.
func CompletionRate(completed, failed int64) float64 {
	terminal := completed + failed
	if terminal == 0 {
		return 0
	}
	rate := 100 * float64(completed) / float64(terminal)
	return math.Round(rate*10) / 10
}

// AverageDeposit returns the mean deposit amount rounded to two decimals.
// Returns 0 for an empty ledger.
func AverageDeposit(total float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(total/float64(count)*100) / 100
}
