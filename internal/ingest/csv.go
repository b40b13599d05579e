package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RMahshie/vitals/pkg/models"
)

// MalformedRecordError reports a data row that could not be parsed.
// Row is 1-based and does not count the header.
type MalformedRecordError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// timestampLayouts are tried in order. RFC 3339 parsing accepts any fraction length
// and both Z and ±hh:mm; the last layout covers ±hhmm offsets.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

// ParseTimestamp parses an ISO-8601 timestamp carrying a zone offset
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// LoadCSV reads (timestamp, heart rate) rows. The first row is a header and is skipped;
// when it names "timestamp" and "value" columns those are used, otherwise the first two
// columns are. Any unparsable row fails the whole load.
func LoadCSV(r io.Reader) (models.ReadingSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.ReadingSeries{}, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	tsCol, valCol := columns(header)

	series := models.ReadingSeries{}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedRecordError{Row: row, Err: err}
		}

		reading, err := parseRecord(row, record, tsCol, valCol)
		if err != nil {
			return nil, err
		}
		series = append(series, reading)
	}

	return series, nil
}

// LoadFile opens path and reads it with LoadCSV
func LoadFile(path string) (models.ReadingSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open heart rate file: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

func columns(header []string) (tsCol, valCol int) {
	tsCol, valCol = 0, 1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "timestamp", "time", "datetime":
			tsCol = i
		case "value", "heart_rate", "heartrate", "bpm":
			valCol = i
		}
	}
	return tsCol, valCol
}

func parseRecord(row int, record []string, tsCol, valCol int) (models.Reading, error) {
	if tsCol >= len(record) || valCol >= len(record) {
		return models.Reading{}, &MalformedRecordError{
			Row: row,
			Err: fmt.Errorf("expected at least %d fields, got %d", max(tsCol, valCol)+1, len(record)),
		}
	}

	tsStr := record[tsCol]
	ts, err := ParseTimestamp(tsStr)
	if err != nil {
		return models.Reading{}, &MalformedRecordError{Row: row, Field: "timestamp", Value: tsStr, Err: err}
	}

	valStr := strings.TrimSpace(record[valCol])
	bpm, err := strconv.Atoi(valStr)
	if err != nil {
		return models.Reading{}, &MalformedRecordError{Row: row, Field: "value", Value: valStr, Err: err}
	}

	return models.Reading{Timestamp: ts, Value: models.Measured(bpm)}, nil
}
