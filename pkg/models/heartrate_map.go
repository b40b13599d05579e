package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// HeartRateEntry is one key/value pair of a HeartRateMap
type HeartRateEntry struct {
	Timestamp string
	Value     Value
}

// HeartRateMap is an ISO-8601 timestamp -> value mapping that keeps insertion order
// when encoded as a JSON object.
type HeartRateMap []HeartRateEntry

// MarshalJSON writes the entries as a JSON object in slice order
func (m HeartRateMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Timestamp)
		if err != nil {
			return nil, err
		}
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving the order of its keys
func (m *HeartRateMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("heart rate map must be a JSON object")
	}

	entries := HeartRateMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value for %s: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("value for %s: %w", key, err)
		}
		entries = append(entries, HeartRateEntry{Timestamp: key, Value: v})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = entries
	return nil
}

// Schema describes the map as a free-form object in the OpenAPI document
func (m HeartRateMap) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:                 huma.TypeObject,
		Description:          "ISO-8601 timestamp to heart rate (integer) or placeholder code (E, L, U)",
		AdditionalProperties: true,
	}
}
