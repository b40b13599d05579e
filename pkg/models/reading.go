package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Code is a placeholder token standing in for a missing or out-of-range measurement
type Code string

const (
	// CodeError marks a sample with no valid measurement
	CodeError Code = "E"
	// CodeBelowLimit marks a sample below the device's lower detection limit
	CodeBelowLimit Code = "L"
	// CodeAboveLimit marks a sample above the device's upper detection limit
	CodeAboveLimit Code = "U"
)

// ParseCode returns the Code for s if it is one of E, L or U
func ParseCode(s string) (Code, bool) {
	switch Code(s) {
	case CodeError, CodeBelowLimit, CodeAboveLimit:
		return Code(s), true
	}
	return "", false
}

// Value is either a measured heart rate or a placeholder code.
// The zero Value is a measured 0.
type Value struct {
	bpm  int
	code Code
}

// Measured wraps a measured heart rate
func Measured(bpm int) Value {
	return Value{bpm: bpm}
}

// Placeholder wraps a placeholder code
func Placeholder(code Code) Value {
	return Value{code: code}
}

// IsPlaceholder reports whether v carries a code instead of a measurement
func (v Value) IsPlaceholder() bool {
	return v.code != ""
}

// Int returns the measured heart rate; ok is false for placeholders
func (v Value) Int() (bpm int, ok bool) {
	if v.IsPlaceholder() {
		return 0, false
	}
	return v.bpm, true
}

// Code returns the placeholder code, or "" for measured values
func (v Value) Code() Code {
	return v.code
}

// String renders the value the way the packed waveform expects it
func (v Value) String() string {
	if v.IsPlaceholder() {
		return string(v.code)
	}
	return strconv.Itoa(v.bpm)
}

// MarshalJSON encodes measurements as numbers and codes as strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsPlaceholder() {
		return json.Marshal(string(v.code))
	}
	return []byte(strconv.Itoa(v.bpm)), nil
}

// UnmarshalJSON accepts an integer or one of the codes E, L, U
func (v *Value) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		bpm, err := strconv.Atoi(n.String())
		if err != nil {
			return fmt.Errorf("heart rate must be an integer, got %s", n)
		}
		*v = Measured(bpm)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("heart rate must be an integer or a code: %w", err)
	}
	code, ok := ParseCode(s)
	if !ok {
		return fmt.Errorf("unknown placeholder code %q", s)
	}
	*v = Placeholder(code)
	return nil
}

// Reading is a single timestamped heart-rate sample
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     Value     `json:"value"`
}

// ReadingSeries is a time-ordered list of readings
type ReadingSeries []Reading

// Timestamps returns the timestamps of the series in order
func (s ReadingSeries) Timestamps() []time.Time {
	ts := make([]time.Time, len(s))
	for i, r := range s {
		ts[i] = r.Timestamp
	}
	return ts
}
