package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// Accepted textual timestamp layouts. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// ParseTimestamp accepts the timestamp shapes seen in uploaded logs: RFC3339
// strings with or without zone/fractional seconds, space-separated variants,
// US-style dates, and epoch seconds.
func ParseTimestamp(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC(), nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts)
	case float64:
		sec, frac := math.Modf(ts)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	case int:
		return time.Unix(int64(ts), 0).UTC(), nil
	case int64:
		return time.Unix(ts, 0).UTC(), nil
	case json.Number:
		if f, err := ts.Float64(); err == nil {
			return ParseTimestamp(f)
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts.String())
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

// Event converts one raw event record into its canonical form. The timestamp
// must parse; everything else degrades gracefully (event_type defaults to
// "unknown", an empty description is synthesized from the attributes).
func Event(raw map[string]any) (domain.MissionEvent, error) {
	ts, err := ParseTimestamp(raw["timestamp"])
	if err != nil {
		return domain.MissionEvent{}, &domain.MalformedEventError{Field: "timestamp", Value: raw["timestamp"]}
	}

	ev := domain.MissionEvent{
		Timestamp:      ts,
		EventType:      stringField(raw, "event_type"),
		Description:    stringField(raw, "description"),
		TrackingNumber: stringField(raw, "tracking_number"),
		Speed:          floatField(raw, "speed"),
		Course:         floatField(raw, "course"),
		Latitude:       floatField(raw, "latitude"),
		Longitude:      floatField(raw, "longitude"),
	}
	if ev.EventType == "" {
		ev.EventType = "unknown"
	}
	if md, ok := raw["metadata"].(map[string]any); ok && len(md) > 0 {
		ev.Metadata = md
	}
	if ev.Description == "" {
		ev.Description = synthesizeDescription(ev)
	}
	return ev, nil
}

// MissionLog parses a decoded upload into a mission plus notes for any events
// that had to be skipped. Only a missing or unparseable start_time is fatal.
func MissionLog(raw map[string]any) (domain.MissionLog, []string, error) {
	start, err := ParseTimestamp(raw["start_time"])
	if err != nil {
		return domain.MissionLog{}, nil, fmt.Errorf("mission start_time: %w", err)
	}

	log := domain.MissionLog{
		MissionID:   defaultString(stringField(raw, "mission_id"), "unknown"),
		MissionName: defaultString(stringField(raw, "mission_name"), "Unnamed Mission"),
		VesselName:  defaultString(stringField(raw, "vessel_name"), "Unknown Vessel"),
		StartTime:   start,
	}
	if _, ok := raw["end_time"]; ok {
		if end, err := ParseTimestamp(raw["end_time"]); err == nil {
			log.EndTime = &end
		}
	}

	var skipped []string
	events, _ := raw["events"].([]any)
	for i, entry := range events {
		rec, ok := entry.(map[string]any)
		if !ok {
			skipped = append(skipped, fmt.Sprintf("event %d skipped: not an object", i))
			continue
		}
		ev, err := Event(rec)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("event %d skipped: %v", i, err))
			continue
		}
		log.Events = append(log.Events, ev)
	}
	return log, skipped, nil
}

// MissionLogBytes decodes and parses an uploaded JSON mission log.
func MissionLogBytes(data []byte) (domain.MissionLog, []string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.MissionLog{}, nil, fmt.Errorf("invalid mission JSON: %w", err)
	}
	return MissionLog(raw)
}

func synthesizeDescription(ev domain.MissionEvent) string {
	parts := []string{ev.EventType + " event"}
	if ev.Speed != nil {
		parts = append(parts, fmt.Sprintf("speed %.1f kn", *ev.Speed))
	}
	if ev.Course != nil {
		parts = append(parts, fmt.Sprintf("course %.0f", *ev.Course))
	}
	if ev.TrackingNumber != "" {
		parts = append(parts, "tracking "+ev.TrackingNumber)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + " (" + strings.Join(parts[1:], ", ") + ")"
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func floatField(raw map[string]any, key string) *float64 {
	switch v := raw[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SampleMission returns a small mission log for demos and tests.
func SampleMission() map[string]any {
	return map[string]any{
		"mission_id":   "MISSION-2024-001",
		"mission_name": "Training Exercise Alpha",
		"vessel_name":  "USS Example",
		"start_time":   "2024-11-14T08:00:00Z",
		"end_time":     "2024-11-14T16:00:00Z",
		"events": []any{
			map[string]any{
				"timestamp":   "2024-11-14T08:00:00Z",
				"event_type":  "mission_start",
				"description": "Mission commenced",
				"speed":       0.0,
				"course":      0.0,
				"latitude":    36.8529,
				"longitude":   -76.2999,
			},
			map[string]any{
				"timestamp":       "2024-11-14T08:15:00Z",
				"event_type":      "speed_change",
				"description":     "Increased speed to 15 knots",
				"speed":           15.0,
				"course":          90.0,
				"tracking_number": "TRK-001",
			},
			map[string]any{
				"timestamp":       "2024-11-14T09:30:00Z",
				"event_type":      "contact_detection",
				"description":     "Surface contact detected bearing 045, classified merchant",
				"tracking_number": "TRK-002",
				"metadata": map[string]any{
					"bearing":        45,
					"range":          5000,
					"classification": "merchant",
				},
			},
			map[string]any{
				"timestamp":       "2024-11-14T10:00:00Z",
				"event_type":      "course_change",
				"description":     "Changed course to 120 degrees",
				"speed":           15.0,
				"course":          120.0,
				"tracking_number": "TRK-001",
			},
			map[string]any{
				"timestamp":       "2024-11-14T12:00:00Z",
				"event_type":      "speed_change",
				"description":     "Reduced speed to 5 knots for man overboard drill",
				"speed":           5.0,
				"course":          120.0,
				"tracking_number": "TRK-001",
			},
			map[string]any{
				"timestamp":   "2024-11-14T16:00:00Z",
				"event_type":  "mission_end",
				"description": "Mission completed, returning to port",
				"speed":       10.0,
				"course":      270.0,
			},
		},
	}
}
