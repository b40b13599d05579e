package waveform

import (
	"time"

	"github.com/RMahshie/vitals/internal/ingest"
	"github.com/RMahshie/vitals/pkg/models"
)

// TimestampLayout is ISO-8601 with microseconds always present and a numeric offset
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// FormatTimestamp renders t as a mapping key
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ToMapping converts a series to an ordered timestamp -> value mapping
func ToMapping(series models.ReadingSeries) models.HeartRateMap {
	m := make(models.HeartRateMap, len(series))
	for i, r := range series {
		m[i] = models.HeartRateEntry{
			Timestamp: FormatTimestamp(r.Timestamp),
			Value:     r.Value,
		}
	}
	return m
}

// FromMapping parses a mapping back into a series, keeping its order
func FromMapping(m models.HeartRateMap) (models.ReadingSeries, error) {
	series := make(models.ReadingSeries, len(m))
	for i, e := range m {
		ts, err := ingest.ParseTimestamp(e.Timestamp)
		if err != nil {
			return nil, &ingest.MalformedRecordError{Row: i + 1, Field: "timestamp", Value: e.Timestamp, Err: err}
		}
		series[i] = models.Reading{Timestamp: ts, Value: e.Value}
	}
	return series, nil
}
