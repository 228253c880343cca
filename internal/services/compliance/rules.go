package compliance

import (
	"fmt"
	"math"
	"strings"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// Category buckets event types for severity mapping.
type Category string

const (
	CategorySafetyCritical Category = "safety-critical"
	CategoryNavigational   Category = "navigational"
	CategoryInformational  Category = "informational"
)

// Element is one structural element doctrine requires an event to carry.
// Central elements force a non-compliant verdict when missing; primary
// elements drive major severity; the rest are secondary.
type Element struct {
	Name    string
	Primary bool
	Central bool
	// Applies gates conditional requirements; nil means always required.
	Applies func(ev domain.MissionEvent, cfg Config) bool
	Present func(ev domain.MissionEvent) bool
}

// Rule describes what doctrine expects for one event type.
type Rule struct {
	EventType      string
	Category       Category
	ExpectedAction string
	Elements       []Element
}

// DefaultRules is the closed rule table driving compliance decisions. The
// required elements and the expected-action phrases mirror the sample naval
// doctrine shipped with the service; tune them together.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"speed_change": {
			EventType:      "speed_change",
			Category:       CategoryNavigational,
			ExpectedAction: "Log timestamp, previous speed, new speed, reason, and tracking number. Changes exceeding 5 knots require communication to all stations.",
			Elements: []Element{
				{
					Name:    "tracking number",
					Primary: true,
					Present: hasTracking,
				},
				{
					Name:    "recorded speed",
					Present: func(ev domain.MissionEvent) bool { return ev.Speed != nil },
				},
				{
					Name:    "notification to all stations",
					Applies: speedDeltaExceeds,
					Present: mentionsAny("all stations", "communicated", "notified", "broadcast"),
				},
			},
		},
		"course_change": {
			EventType:      "course_change",
			Category:       CategoryNavigational,
			ExpectedAction: "Log timestamp, previous course, new course, and tracking number. Notify the navigation team of course changes exceeding 10 degrees.",
			Elements: []Element{
				{
					Name:    "tracking number",
					Primary: true,
					Present: hasTracking,
				},
				{
					Name:    "recorded course",
					Present: func(ev domain.MissionEvent) bool { return ev.Course != nil },
				},
				{
					Name:    "navigation team notification",
					Applies: courseDeltaExceeds,
					Present: mentionsAny("navigation team", "nav team", "notified"),
				},
			},
		},
		"contact_detection": {
			EventType:      "contact_detection",
			Category:       CategoryNavigational,
			ExpectedAction: "Assign a tracking number immediately. Log bearing, range, timestamp, and classification. Maintain continuous tracking.",
			Elements: []Element{
				{
					Name:    "tracking number",
					Primary: true,
					Central: true,
					Present: hasTracking,
				},
				{
					Name:    "contact classification",
					Present: hasClassification,
				},
				{
					Name:    "bearing and range",
					Present: hasBearing,
				},
			},
		},
		"man_overboard": {
			EventType:      "man_overboard",
			Category:       CategorySafetyCritical,
			ExpectedAction: "Sound the alarm, reduce speed to 5 knots, mark position with GPS timestamp, deploy recovery equipment.",
			Elements: []Element{
				{
					Name:    "immediate alarm notification",
					Primary: true,
					Central: true,
					Present: mentionsAny("alarm", "announced", "pass the word"),
				},
				{
					Name:    "speed reduction",
					Primary: true,
					Present: hasSpeedReduction,
				},
				{
					Name:    "marked position",
					Present: hasPosition,
				},
			},
		},
		"mission_start": {
			EventType:      "mission_start",
			Category:       CategoryInformational,
			ExpectedAction: "Log start time (UTC), record initial position, document objectives, verify systems.",
			Elements: []Element{
				{
					Name:    "recorded position",
					Present: hasPosition,
				},
			},
		},
		"mission_end": {
			EventType:      "mission_end",
			Category:       CategoryInformational,
			ExpectedAction: "Log completion time, record final position, document outcomes, prepare debrief.",
			Elements: []Element{
				{
					Name:    "recorded position",
					Present: hasPosition,
				},
			},
		},
	}
}

// GenericExpectedAction is used when no rule matches the event type.
const GenericExpectedAction = "Follow standard operational procedures and maintain detailed logs."

// severityFor maps (category, missing elements) to a severity. Fixed table
// per the rule design: safety-critical classes rate critical for any gap.
func severityFor(rule Rule, missing []Element) domain.Severity {
	if rule.Category == CategorySafetyCritical {
		return domain.SeverityCritical
	}
	for _, el := range missing {
		if el.Primary {
			return domain.SeverityMajor
		}
	}
	if rule.Category == CategoryInformational {
		return domain.SeverityInfo
	}
	return domain.SeverityMinor
}

// recommendationFor turns a missing-element name into an actionable statement.
func recommendationFor(element string) string {
	switch element {
	case "tracking number":
		return "Assign and log a tracking number for every trackable event."
	case "recorded speed":
		return "Record the new speed value with every speed change."
	case "recorded course":
		return "Record the new course value with every course change."
	case "notification to all stations":
		return "Communicate speed changes exceeding 5 knots to all stations."
	case "navigation team notification":
		return "Notify the navigation team of course changes exceeding 10 degrees."
	case "contact classification":
		return "Classify detected contacts and record the classification with the track."
	case "bearing and range":
		return "Log bearing and range for every detected contact."
	case "immediate alarm notification":
		return "Sound the alarm immediately upon a man overboard."
	case "speed reduction":
		return "Reduce speed to 5 knots immediately during man overboard response."
	case "marked position":
		return "Record vessel position with safety and milestone events."
	}
	return fmt.Sprintf("Review doctrine requirements covering the %s.", element)
}

// ---- element checks ----

func hasTracking(ev domain.MissionEvent) bool {
	if ev.TrackingNumber != "" {
		return true
	}
	return mentionsAny("tracking", "trk-")(ev)
}

func hasPosition(ev domain.MissionEvent) bool {
	if ev.Latitude != nil && ev.Longitude != nil {
		return true
	}
	return mentionsAny("position", "gps", "lat/long")(ev)
}

func hasClassification(ev domain.MissionEvent) bool {
	if _, ok := ev.Metadata["classification"]; ok {
		return true
	}
	return mentionsAny("classified", "classification", "merchant", "military vessel")(ev)
}

func hasBearing(ev domain.MissionEvent) bool {
	if _, ok := ev.Metadata["bearing"]; ok {
		return true
	}
	return mentionsAny("bearing")(ev)
}

func hasSpeedReduction(ev domain.MissionEvent) bool {
	if ev.Speed != nil && *ev.Speed <= 5 {
		return true
	}
	return mentionsAny("reduced speed", "reduce speed", "5 knots")(ev)
}

// speedDeltaExceeds requires notification only when the log records the
// previous speed and the change is larger than the configured threshold.
func speedDeltaExceeds(ev domain.MissionEvent, cfg Config) bool {
	prev, ok := metadataFloat(ev, "previous_speed")
	if !ok || ev.Speed == nil {
		return false
	}
	return math.Abs(*ev.Speed-prev) > cfg.SpeedNotifyKnots
}

func courseDeltaExceeds(ev domain.MissionEvent, cfg Config) bool {
	prev, ok := metadataFloat(ev, "previous_course")
	if !ok || ev.Course == nil {
		return false
	}
	delta := math.Abs(*ev.Course - prev)
	if delta > 180 {
		delta = 360 - delta
	}
	return delta > cfg.CourseNotifyDegrees
}

func metadataFloat(ev domain.MissionEvent, key string) (float64, bool) {
	switch v := ev.Metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// mentionsAny returns a case-insensitive substring check over the event
// description.
func mentionsAny(phrases ...string) func(ev domain.MissionEvent) bool {
	return func(ev domain.MissionEvent) bool {
		desc := strings.ToLower(ev.Description)
		for _, p := range phrases {
			if strings.Contains(desc, p) {
				return true
			}
		}
		return false
	}
}
