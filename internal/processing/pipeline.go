package processing

import (
	"errors"
	"time"

	"github.com/RMahshie/vitals/internal/ingest"
	"github.com/RMahshie/vitals/internal/resample"
	"github.com/RMahshie/vitals/internal/waveform"
	"github.com/RMahshie/vitals/pkg/models"
)

// Cleaned is a padded series together with its published forms.
// SampledData is nil when the series carries an L or U code whose detection
// limit is not configured; SampledDataErr then says which one.
type Cleaned struct {
	Series         models.ReadingSeries
	Interval       time.Duration
	Inserted       int
	Anomalies      int
	Readings       models.HeartRateMap
	SampledData    *models.SampledData
	SampledDataErr error
}

// Pipeline resamples a series and renders the mapping and waveform views of the result
type Pipeline struct {
	opts     []resample.Option
	waveform waveform.Config
}

// NewPipeline creates a pipeline. opts are applied to every resample call.
func NewPipeline(wf waveform.Config, opts ...resample.Option) *Pipeline {
	return &Pipeline{opts: opts, waveform: wf}
}

// Clean pads series. A positive interval overrides the configured one for this call.
func (p *Pipeline) Clean(series models.ReadingSeries, interval time.Duration) (*Cleaned, error) {
	opts := p.opts
	if interval > 0 {
		opts = append(append([]resample.Option{}, p.opts...), resample.WithInterval(interval))
	}

	res, err := resample.New(opts...).Resample(series)
	if err != nil {
		return nil, err
	}

	cleaned := &Cleaned{
		Series:    res.Series,
		Interval:  res.Interval,
		Inserted:  res.Inserted,
		Anomalies: res.Anomalies,
		Readings:  waveform.ToMapping(res.Series),
	}

	sampled, err := waveform.ToSampledData(res.Series, res.Interval, p.waveform)
	var limit *waveform.MissingDetectionLimitError
	switch {
	case errors.As(err, &limit):
		cleaned.SampledDataErr = err
	case err != nil:
		return nil, err
	default:
		cleaned.SampledData = sampled
	}

	return cleaned, nil
}

// IsDataError reports whether err was caused by the heart rate data itself
// rather than by storage or the database
func IsDataError(err error) bool {
	var (
		malformed    *ingest.MalformedRecordError
		insufficient *resample.InsufficientDataError
		excessive    *resample.ExcessiveGapError
		irregular    *resample.IrregularIntervalError
		limit        *waveform.MissingDetectionLimitError
	)
	return errors.As(err, &malformed) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &excessive) ||
		errors.As(err, &irregular) ||
		errors.As(err, &limit)
}
