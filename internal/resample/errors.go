package resample

import (
	"fmt"
	"time"
)

// InsufficientDataError is returned when no nominal interval can be derived
type InsufficientDataError struct {
	Readings int
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient data (%d readings): %s", e.Readings, e.Reason)
	}
	return fmt.Sprintf("insufficient data: need at least 2 readings, got %d", e.Readings)
}

// ExcessiveGapError is returned when a call needs more placeholders than allowed
type ExcessiveGapError struct {
	Index   int       // index of the reading that opens the gap crossing the limit
	After   time.Time // timestamp of that reading
	Missing int       // placeholders needed up to and including that gap
	Limit   int
}

func (e *ExcessiveGapError) Error() string {
	return fmt.Sprintf("gap after reading %d (%s) brings placeholders to %d, limit is %d per call",
		e.Index, e.After.Format(time.RFC3339), e.Missing, e.Limit)
}

// IrregularIntervalError is returned under AnomalyReject when two readings are closer
// than the nominal interval or out of order
type IrregularIntervalError struct {
	Index    int
	Delta    int64
	Interval int64
}

func (e *IrregularIntervalError) Error() string {
	return fmt.Sprintf("readings %d and %d are %ds apart, nominal interval is %ds",
		e.Index, e.Index+1, e.Delta, e.Interval)
}
