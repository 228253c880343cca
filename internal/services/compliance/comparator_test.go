package compliance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// fakeSearcher returns canned passages, or fails for event types listed in
// failOn.
type fakeSearcher struct {
	passages []domain.Passage
	failOn   map[string]bool
	calls    int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	f.calls++
	for prefix := range f.failOn {
		if strings.HasPrefix(query, prefix) {
			return nil, errors.New("index unavailable")
		}
	}
	if len(f.passages) > k {
		return f.passages[:k], nil
	}
	return f.passages, nil
}

func doctrinePassages() []domain.Passage {
	return []domain.Passage{
		{Text: "All speed changes must be logged with timestamp, previous speed, new speed, and tracking number.", Source: "doctrine.txt#0", Score: 0.8},
		{Text: "Contacts require immediate tracking number assignment.", Source: "doctrine.txt#1", Score: 0.4},
	}
}

func newTestComparator(s *fakeSearcher) *Comparator {
	return NewComparator(s, nil, DefaultConfig(), nil)
}

func speedEvent(desc, tracking string, speed float64) domain.MissionEvent {
	return domain.MissionEvent{
		Timestamp:      time.Date(2024, 11, 14, 8, 15, 0, 0, time.UTC),
		EventType:      "speed_change",
		Description:    desc,
		TrackingNumber: tracking,
		Speed:          &speed,
	}
}

func TestCompareSpeedChangeCompliant(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})
	res, err := c.Compare(context.Background(), speedEvent("Increased speed to 15 knots", "TRK-001", 15))
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusCompliant {
		t.Fatalf("status = %q, want compliant (%s)", res.ComplianceStatus, res.Analysis)
	}
	if res.Severity != "" {
		t.Errorf("compliant verdict carries severity %q", res.Severity)
	}
	if len(res.DoctrineSources) == 0 {
		t.Error("compliant verdict cites no doctrine sources")
	}
}

func TestCompareSpeedChangeMissingTracking(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})
	res, err := c.Compare(context.Background(), speedEvent("Increased speed to 15 knots", "", 15))
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusPartial {
		t.Fatalf("status = %q, want partial", res.ComplianceStatus)
	}
	if res.Severity != domain.SeverityMajor {
		t.Errorf("severity = %q, want major (tracking number is a primary element)", res.Severity)
	}
	found := false
	for _, el := range res.MissingElements {
		if el == "tracking number" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing elements %v do not name the tracking number", res.MissingElements)
	}
	if !strings.Contains(res.Analysis, "tracking number") {
		t.Errorf("analysis %q does not name the tracking number", res.Analysis)
	}
}

func TestCompareSpeedNotificationOnlyWhenDeltaExceeds(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})

	// 10 -> 22 knots with no mention of notifying anyone
	ev := speedEvent("Increased speed to 22 knots", "TRK-001", 22)
	ev.Metadata = map[string]any{"previous_speed": 10.0}
	res, err := c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusPartial {
		t.Fatalf("large delta without notification: status = %q, want partial", res.ComplianceStatus)
	}

	// same change, notification logged
	ev.Description = "Increased speed to 22 knots, communicated to all stations"
	res, err = c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusCompliant {
		t.Fatalf("notified change: status = %q, want compliant", res.ComplianceStatus)
	}

	// small delta, notification not required
	ev = speedEvent("Adjusted speed to 12 knots", "TRK-001", 12)
	ev.Metadata = map[string]any{"previous_speed": 10.0}
	res, err = c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusCompliant {
		t.Fatalf("small delta: status = %q, want compliant", res.ComplianceStatus)
	}
}

func TestCompareManOverboardMissingAlarmIsCritical(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})
	lat, lon := 36.8, -76.2
	five := 5.0
	ev := domain.MissionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "man_overboard",
		Description: "Crew member in the water, reduce speed ordered",
		Speed:       &five,
		Latitude:    &lat,
		Longitude:   &lon,
	}
	res, err := c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusNonCompliant {
		t.Fatalf("status = %q, want non-compliant (alarm is mandatory)", res.ComplianceStatus)
	}
	if res.Severity != domain.SeverityCritical {
		t.Errorf("severity = %q, want critical", res.Severity)
	}
}

func TestCompareContactWithoutTrackingIsNonCompliant(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})
	ev := domain.MissionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "contact_detection",
		Description: "Surface contact sighted",
	}
	res, err := c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusNonCompliant {
		t.Fatalf("status = %q, want non-compliant", res.ComplianceStatus)
	}
	if res.Severity != domain.SeverityMajor {
		t.Errorf("severity = %q, want major", res.Severity)
	}
}

func TestCompareNoPassagesIsUnclear(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: nil})
	res, err := c.Compare(context.Background(), speedEvent("Increased speed", "TRK-001", 15))
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusUnclear {
		t.Fatalf("status = %q, want unclear", res.ComplianceStatus)
	}
	if res.ExpectedAction != "No applicable doctrine found" {
		t.Errorf("ExpectedAction = %q", res.ExpectedAction)
	}
}

func TestCompareFiltersByMinScore(t *testing.T) {
	weak := []domain.Passage{{Text: "irrelevant", Source: "doctrine.txt#9", Score: 0.01}}
	c := newTestComparator(&fakeSearcher{passages: weak})
	res, err := c.Compare(context.Background(), speedEvent("Increased speed", "TRK-001", 15))
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusUnclear {
		t.Fatalf("sub-threshold passages should yield unclear, got %q", res.ComplianceStatus)
	}
}

func TestCompareRetrievalFailure(t *testing.T) {
	c := newTestComparator(&fakeSearcher{failOn: map[string]bool{"speed_change": true}})
	_, err := c.Compare(context.Background(), speedEvent("Increased speed", "TRK-001", 15))
	var rerr *domain.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Query == "" {
		t.Error("RetrievalError does not carry the query")
	}
}

func TestCompareUnknownEventType(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})

	ev := domain.MissionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "equipment_check",
		Description: "Completed pre-deployment equipment verification",
	}
	res, err := c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusCompliant {
		t.Fatalf("documented unknown event: status = %q, want compliant", res.ComplianceStatus)
	}
	if res.ExpectedAction != GenericExpectedAction {
		t.Errorf("ExpectedAction = %q", res.ExpectedAction)
	}

	ev.Description = ""
	res, err = c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusUnclear {
		t.Fatalf("undescribed unknown event: status = %q, want unclear", res.ComplianceStatus)
	}
}

func TestCompareInformationalSeverity(t *testing.T) {
	c := newTestComparator(&fakeSearcher{passages: doctrinePassages()})
	ev := domain.MissionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "mission_start",
		Description: "Mission commenced",
	}
	res, err := c.Compare(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.ComplianceStatus != domain.StatusPartial {
		t.Fatalf("status = %q, want partial (no position recorded)", res.ComplianceStatus)
	}
	if res.Severity != domain.SeverityInfo {
		t.Errorf("severity = %q, want info for informational events", res.Severity)
	}
}
