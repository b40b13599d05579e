package resample

import (
	"time"
)

// deltaSeconds returns the whole-second distance from a to b, truncated toward zero
func deltaSeconds(a, b time.Time) int64 {
	return int64(b.Sub(a) / time.Second)
}

// DetectInterval returns the modal spacing between consecutive timestamps.
// Only positive whole-second deltas vote; ties go to the smallest delta.
func DetectInterval(timestamps []time.Time) (time.Duration, error) {
	if len(timestamps) < 2 {
		return 0, &InsufficientDataError{Readings: len(timestamps)}
	}

	counts := make(map[int64]int)
	for i := 1; i < len(timestamps); i++ {
		if d := deltaSeconds(timestamps[i-1], timestamps[i]); d > 0 {
			counts[d]++
		}
	}
	if len(counts) == 0 {
		return 0, &InsufficientDataError{
			Readings: len(timestamps),
			Reason:   "no positive whole-second interval between consecutive readings",
		}
	}

	var best int64
	bestCount := 0
	for d, n := range counts {
		if n > bestCount || (n == bestCount && d < best) {
			best, bestCount = d, n
		}
	}
	return time.Duration(best) * time.Second, nil
}
