package domain

import "time"

// Core domain models. The JSON tags on MissionLog and MissionAnalysis are the
// stable contract with the upload and presentation layers; keep them in sync
// with the migrations and the frontend.

// Status is the per-event compliance verdict taxonomy.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusPartial      Status = "partial"
	StatusNonCompliant Status = "non-compliant"
	StatusUnclear      Status = "unclear"
)

// Severity rates a non-compliant or partial verdict. Absent when compliant.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for sorting, highest first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// MissionEvent is one timestamped recorded action during a mission.
// Timestamps are normalized to UTC.
type MissionEvent struct {
	Timestamp      time.Time      `json:"timestamp"`
	EventType      string         `json:"event_type"`
	Description    string         `json:"description"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	Speed          *float64       `json:"speed,omitempty"`
	Course         *float64       `json:"course,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// MissionLog is a complete mission: metadata plus its ordered events.
// Read-only after upload.
type MissionLog struct {
	MissionID   string         `json:"mission_id"`
	MissionName string         `json:"mission_name"`
	VesselName  string         `json:"vessel_name"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Events      []MissionEvent `json:"events"`
}

// Passage is one scored doctrine excerpt returned by the search index.
// Scores are comparable within a single call only.
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ComparisonResult is the verdict for a single event.
type ComparisonResult struct {
	Timestamp        time.Time `json:"timestamp"`
	EventDescription string    `json:"event_description"`
	ActualAction     string    `json:"actual_action"`
	ExpectedAction   string    `json:"expected_action"`
	ComplianceStatus Status    `json:"compliance_status"`
	Severity         Severity  `json:"severity,omitempty"`
	Analysis         string    `json:"analysis"`
	DoctrineSources  []string  `json:"doctrine_sources,omitempty"`
	MissingElements  []string  `json:"missing_elements,omitempty"`
}

// MissionAnalysis is the mission-level report. Immutable once produced;
// multiple analyses may exist for one mission_id.
type MissionAnalysis struct {
	MissionID              string             `json:"mission_id"`
	MissionName            string             `json:"mission_name"`
	GeneratedAt            time.Time          `json:"generated_at"`
	Comparisons            []ComparisonResult `json:"comparisons"`
	OverallComplianceScore float64            `json:"overall_compliance_score"`
	Summary                string             `json:"summary"`
	LessonsLearned         []string           `json:"lessons_learned"`
	Recommendations        []string           `json:"recommendations"`
	Warnings               []string           `json:"warnings,omitempty"`
}

// MissionSummary is the listing shape for the dashboard.
type MissionSummary struct {
	MissionID   string    `json:"mission_id"`
	MissionName string    `json:"mission_name"`
	VesselName  string    `json:"vessel_name"`
	StartTime   time.Time `json:"start_time"`
	EventsCount int       `json:"events_count"`
	HasAnalysis bool      `json:"has_analysis"`
}

// ChatQuery is a user question over the doctrine corpus.
type ChatQuery struct {
	Question  string `json:"question"`
	MissionID string `json:"mission_id,omitempty"`
}

// ChatResponse is the grounded answer with its source documents.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
