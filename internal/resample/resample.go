package resample

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RMahshie/vitals/pkg/models"
)

// AnomalyPolicy decides what happens when two readings are closer than the
// nominal interval or out of order
type AnomalyPolicy string

const (
	// AnomalyPassthrough emits the reading unchanged and inserts nothing
	AnomalyPassthrough AnomalyPolicy = "passthrough"
	// AnomalyReject fails the whole call with IrregularIntervalError
	AnomalyReject AnomalyPolicy = "reject"
)

// ParseAnomalyPolicy parses a policy name, case-insensitively
func ParseAnomalyPolicy(s string) (AnomalyPolicy, error) {
	switch p := AnomalyPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case AnomalyPassthrough, AnomalyReject:
		return p, nil
	case "":
		return AnomalyPassthrough, nil
	default:
		return "", fmt.Errorf("unknown anomaly policy %q", s)
	}
}

// DefaultMaxGapCount allows a full day of missing samples at 1s cadence
const DefaultMaxGapCount = 86400

// Resampler pads a heart-rate series with E placeholders so that it is uniformly spaced.
// It holds configuration only and is safe for concurrent use.
type Resampler struct {
	interval    time.Duration // zero means detect
	maxGapCount int
	policy      AnomalyPolicy
}

// Option configures a Resampler
type Option func(*Resampler)

// WithInterval skips mode detection and uses d, truncated to whole seconds.
// Values under one second are ignored.
func WithInterval(d time.Duration) Option {
	return func(r *Resampler) {
		if d = d.Truncate(time.Second); d > 0 {
			r.interval = d
		}
	}
}

// WithMaxGapCount caps the placeholders a single Resample call may produce
func WithMaxGapCount(n int) Option {
	return func(r *Resampler) {
		if n > 0 {
			r.maxGapCount = n
		}
	}
}

// WithAnomalyPolicy sets the policy for sub-nominal or out-of-order spacing
func WithAnomalyPolicy(p AnomalyPolicy) Option {
	return func(r *Resampler) {
		if p != "" {
			r.policy = p
		}
	}
}

// New creates a Resampler
func New(opts ...Option) *Resampler {
	r := &Resampler{
		maxGapCount: DefaultMaxGapCount,
		policy:      AnomalyPassthrough,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of a successful Resample call
type Result struct {
	Series    models.ReadingSeries
	Interval  time.Duration
	Inserted  int // placeholders added
	Anomalies int // pairs passed through under AnomalyPassthrough
}

// Resample returns a new series in which every gap between consecutive readings is
// filled with E placeholders at the nominal interval. The input is not modified.
// On error no series is returned.
func (r *Resampler) Resample(series models.ReadingSeries) (*Result, error) {
	if len(series) < 2 {
		return nil, &InsufficientDataError{Readings: len(series)}
	}

	interval := r.interval
	if interval == 0 {
		var err error
		if interval, err = DetectInterval(series.Timestamps()); err != nil {
			return nil, err
		}
	}
	step := int64(interval / time.Second)

	// Size every gap first so that nothing is emitted for a call that fails.
	missing := make([]int, len(series)-1)
	inserted, anomalies := 0, 0
	for i := 0; i < len(series)-1; i++ {
		d := deltaSeconds(series[i].Timestamp, series[i+1].Timestamp)
		if d < step {
			if r.policy == AnomalyReject {
				return nil, &IrregularIntervalError{Index: i, Delta: d, Interval: step}
			}
			anomalies++
			continue
		}

		// number of whole intervals in d, rounded half up, minus the closing one
		n := int64((2*d+step)/(2*step)) - 1
		if n > int64(r.maxGapCount-inserted) {
			return nil, &ExcessiveGapError{
				Index:   i,
				After:   series[i].Timestamp,
				Missing: saturatingAdd(inserted, n),
				Limit:   r.maxGapCount,
			}
		}
		missing[i] = int(n)
		inserted += int(n)
	}

	out := make(models.ReadingSeries, 0, len(series)+inserted)
	for i, reading := range series {
		out = append(out, reading)
		if i == len(missing) {
			break
		}
		for k := 1; k <= missing[i]; k++ {
			out = append(out, models.Reading{
				Timestamp: reading.Timestamp.Add(time.Duration(k) * interval),
				Value:     models.Placeholder(models.CodeError),
			})
		}
	}

	return &Result{
		Series:    out,
		Interval:  interval,
		Inserted:  inserted,
		Anomalies: anomalies,
	}, nil
}

func saturatingAdd(a int, b int64) int {
	if b > int64(math.MaxInt-a) {
		return math.MaxInt
	}
	return a + int(b)
}
