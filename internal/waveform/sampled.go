package waveform

import (
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/vitals/pkg/models"
)

// MissingDetectionLimitError is returned when an L or U code is emitted without
// the matching detection limit configured
type MissingDetectionLimitError struct {
	Code      models.Code
	Timestamp time.Time
}

func (e *MissingDetectionLimitError) Error() string {
	limit := "lower"
	if e.Code == models.CodeAboveLimit {
		limit = "upper"
	}
	return fmt.Sprintf("code %s at %s requires a configured %s detection limit",
		e.Code, FormatTimestamp(e.Timestamp), limit)
}

// Limits are the device detection limits carried on the payload
type Limits struct {
	Lower *float64
	Upper *float64
}

// Config describes the sampled-data payload
type Config struct {
	Origin models.Quantity
	Limits Limits
}

// DefaultOrigin declares a zero origin in beats per minute
func DefaultOrigin() models.Quantity {
	zero := 0.0
	return models.Quantity{
		Value:  &zero,
		Unit:   "beats/minute",
		System: "http://unitsofmeasure.org",
		Code:   "/min",
	}
}

// ToSampledData packs a uniformly spaced series into a single-dimension waveform.
// Placeholder codes are written as literal tokens.
func ToSampledData(series models.ReadingSeries, interval time.Duration, cfg Config) (*models.SampledData, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sampling interval must be positive, got %s", interval)
	}

	tokens := make([]string, len(series))
	for i, r := range series {
		switch r.Value.Code() {
		case models.CodeBelowLimit:
			if cfg.Limits.Lower == nil {
				return nil, &MissingDetectionLimitError{Code: models.CodeBelowLimit, Timestamp: r.Timestamp}
			}
		case models.CodeAboveLimit:
			if cfg.Limits.Upper == nil {
				return nil, &MissingDetectionLimitError{Code: models.CodeAboveLimit, Timestamp: r.Timestamp}
			}
		}
		tokens[i] = r.Value.String()
	}

	return &models.SampledData{
		Origin:     cfg.Origin,
		Period:     interval.Milliseconds(),
		LowerLimit: cfg.Limits.Lower,
		UpperLimit: cfg.Limits.Upper,
		Dimensions: 1,
		Data:       strings.Join(tokens, " "),
	}, nil
}
