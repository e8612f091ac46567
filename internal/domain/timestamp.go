package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Timestamp is an instant that decodes from RFC3339 strings, unix seconds, or the
// document-database object shape {"seconds": N, "nanoseconds": M}.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

type wireTimestamp struct {
	Seconds      *int64 `json:"seconds" yaml:"seconds"`
	Nanoseconds  int64  `json:"nanoseconds" yaml:"nanoseconds"`
	USeconds     *int64 `json:"_seconds" yaml:"_seconds"`
	UNanoseconds int64  `json:"_nanoseconds" yaml:"_nanoseconds"`
}

func (w wireTimestamp) toTime() (time.Time, error) {
	switch {
	case w.Seconds != nil:
		return time.Unix(*w.Seconds, w.Nanoseconds).UTC(), nil
	case w.USeconds != nil:
		return time.Unix(*w.USeconds, w.UNanoseconds).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp object without seconds")
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func fromUnixSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := parseTimestamp(raw)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case '{':
		var w wireTimestamp
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		parsed, err := w.toTime()
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("unrecognized timestamp %s", data)
	}
	t.Time = fromUnixSeconds(secs)
	return nil
}

// MarshalJSON encodes the zero value as null and anything else as RFC3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.Time.MarshalJSON()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var w wireTimestamp
		if err := node.Decode(&w); err != nil {
			return err
		}
		parsed, err := w.toTime()
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			t.Time = time.Time{}
			return nil
		}
		if node.Tag == "!!int" || node.Tag == "!!float" {
			secs, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return err
			}
			t.Time = fromUnixSeconds(secs)
			return nil
		}
		parsed, err := parseTimestamp(node.Value)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("line %d: cannot decode timestamp", node.Line)
}
