package models

// HeartRatesResponse carries the cleaned mapping of the configured recording
type HeartRatesResponse struct {
	Body HeartRateMap
}

// SampledDataResponse carries the packed waveform of the configured recording
type SampledDataResponse struct {
	Body *SampledData
}

// ResampleRequest asks for an ad-hoc series to be padded
type ResampleRequest struct {
	Body struct {
		Readings               HeartRateMap `json:"readings" required:"true" doc:"Timestamp to heart rate mapping, ordered by time"`
		NominalIntervalSeconds int          `json:"nominal_interval_seconds,omitempty" minimum:"0" maximum:"86400" doc:"Skip interval detection and use this spacing"`
	}
}

// ResampleResponseBody is the padded series with its waveform form
type ResampleResponseBody struct {
	IntervalSeconds  int64        `json:"interval_seconds" doc:"Nominal sampling interval"`
	InsertedCount    int          `json:"inserted_count" doc:"Placeholders added for missing samples"`
	AnomalyCount     int          `json:"anomaly_count" doc:"Sub-nominal or out-of-order pairs passed through"`
	Readings         HeartRateMap `json:"readings" doc:"Padded series keyed by timestamp"`
	SampledData      *SampledData `json:"sampled_data,omitempty" doc:"Packed waveform of the padded series, omitted when an L or U code has no configured limit"`
	SampledDataError string       `json:"sampled_data_error,omitempty" doc:"Why the waveform was omitted"`
}

// ResampleResponse wraps ResampleResponseBody
type ResampleResponse struct {
	Body ResampleResponseBody
}
