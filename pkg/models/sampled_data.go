package models

// Quantity is the origin descriptor of a sampled-data payload
type Quantity struct {
	Value  *float64 `json:"value,omitempty" doc:"Zero value of the data"`
	Unit   string   `json:"unit,omitempty" doc:"Human readable unit"`
	System string   `json:"system,omitempty" doc:"Unit system URI"`
	Code   string   `json:"code,omitempty" doc:"Coded unit"`
}

// SampledData is a packed, uniformly spaced waveform
type SampledData struct {
	Origin     Quantity `json:"origin" doc:"Zero value and unit of the data"`
	Period     int64    `json:"period" doc:"Milliseconds between samples"`
	LowerLimit *float64 `json:"lowerLimit,omitempty" doc:"Lower detection limit, required when L codes are present"`
	UpperLimit *float64 `json:"upperLimit,omitempty" doc:"Upper detection limit, required when U codes are present"`
	Dimensions int      `json:"dimensions" doc:"Number of sample points per time point"`
	Data       string   `json:"data" doc:"Space separated values, with E, L and U for placeholders"`
}
