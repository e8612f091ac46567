package domain

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestTimestampUnmarshalJSONShapes(t *testing.T) {
	want := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	inputs := []string{
		`"2026-10-19T15:00:00Z"`,
		`1792422000`,
		`{"seconds": 1792422000, "nanoseconds": 0}`,
		`{"_seconds": 1792422000, "_nanoseconds": 0}`,
	}
	for _, in := range inputs {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("%s: expected %v, got %v", in, want, ts.Time)
		}
	}
}

func TestTimestampNullIsZero(t *testing.T) {
	var draft QuizDraft
	if err := json.Unmarshal([]byte(`{"scheduledStart": null, "scheduledEnd": ""}`), &draft); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !draft.ScheduledStart.IsZero() || !draft.ScheduledEnd.IsZero() {
		t.Fatalf("expected zero timestamps, got %+v", draft)
	}

	raw, err := json.Marshal(Timestamp{})
	if err != nil || string(raw) != "null" {
		t.Fatalf("expected null, got %s (%v)", raw, err)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"next tuesday"`), &ts); err == nil {
		t.Fatalf("expected error")
	}
	if err := json.Unmarshal([]byte(`{"minutes": 3}`), &ts); err == nil {
		t.Fatalf("expected error for object without seconds")
	}
}

func TestTimestampUnmarshalYAML(t *testing.T) {
	doc := `
subject: math
title: Weekly Math
scheduledStart: 2026-10-19T15:00:00Z
scheduledEnd:
  seconds: 1792425600
questions:
  - question: What is 2 + 2?
    options: ["3", "4"]
    correctAnswer: "4"
`
	var draft QuizDraft
	if err := yaml.Unmarshal([]byte(doc), &draft); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !draft.ScheduledStart.Equal(time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", draft.ScheduledStart.Time)
	}
	if !draft.ScheduledEnd.Equal(time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", draft.ScheduledEnd.Time)
	}
	if errs := ValidateQuiz(draft); len(errs) != 0 {
		t.Fatalf("expected valid draft, got %v", errs)
	}
}
