package compliance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// Aggregator drives the Comparator across a mission and folds the verdicts
// into the mission-level report. Stateless between calls; distinct missions
// may be analyzed concurrently.
type Aggregator struct {
	comparator  *Comparator
	concurrency int
	log         *zap.Logger
}

func NewAggregator(comparator *Comparator, concurrency int, log *zap.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{comparator: comparator, concurrency: concurrency, log: log}
}

// Compare exposes the single-event path for re-analysis and chat grounding.
func (a *Aggregator) Compare(ctx context.Context, ev domain.MissionEvent) (domain.ComparisonResult, error) {
	return a.comparator.Compare(ctx, ev)
}

// Analyze produces the mission report. Events are compared concurrently but
// the output order is by ascending timestamp regardless of completion order.
// A failed doctrine lookup degrades that event to unclear with a warning; it
// never aborts the mission.
func (a *Aggregator) Analyze(ctx context.Context, mission domain.MissionLog) (domain.MissionAnalysis, error) {
	if len(mission.Events) == 0 {
		return domain.MissionAnalysis{}, fmt.Errorf("mission %s: %w", mission.MissionID, domain.ErrEmptyMission)
	}

	events := make([]domain.MissionEvent, len(mission.Events))
	copy(events, mission.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	a.log.Info("analyzing mission",
		zap.String("mission_id", mission.MissionID),
		zap.Int("events", len(events)))

	results := make([]domain.ComparisonResult, len(events))
	warns := make([]string, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, ev := range events {
		g.Go(func() error {
			res, err := a.comparator.Compare(gctx, ev)
			if err != nil {
				var rerr *domain.RetrievalError
				if errors.As(err, &rerr) {
					results[i] = unclearResult(ev, "Doctrine lookup failed for this event; compliance could not be determined.")
					warns[i] = fmt.Sprintf("doctrine lookup failed for event at %s: %v",
						ev.Timestamp.Format(time.RFC3339), rerr.Err)
					return nil
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.MissionAnalysis{}, err
	}

	analysis := domain.MissionAnalysis{
		MissionID:              mission.MissionID,
		MissionName:            mission.MissionName,
		GeneratedAt:            time.Now().UTC(),
		Comparisons:            results,
		OverallComplianceScore: scoreOf(results),
		LessonsLearned:         lessonsOf(events, results),
		Recommendations:        recommendationsOf(results),
	}
	for _, w := range warns {
		if w != "" {
			analysis.Warnings = append(analysis.Warnings, w)
		}
	}
	analysis.Summary = summaryOf(mission, results)
	return analysis, nil
}

// AttachSkipNotes records events the normalizer had to drop. The notes land
// in the warnings and the count in the summary, per the degradation policy.
func AttachSkipNotes(analysis *domain.MissionAnalysis, notes []string) {
	if len(notes) == 0 {
		return
	}
	analysis.Warnings = append(analysis.Warnings, notes...)
	analysis.Summary += fmt.Sprintf(" %d malformed event(s) were skipped; see warnings.", len(notes))
}

// scoreOf is the weighted compliance score: compliant 1.0, partial 0.5,
// non-compliant 0. Unclear verdicts are excluded from both sides; an
// all-unclear mission scores 0 by convention.
func scoreOf(results []domain.ComparisonResult) float64 {
	var weighted float64
	counted := 0
	for _, r := range results {
		switch r.ComplianceStatus {
		case domain.StatusCompliant:
			weighted += 1
			counted++
		case domain.StatusPartial:
			weighted += 0.5
			counted++
		case domain.StatusNonCompliant:
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return weighted / float64(counted) * 100
}

// lessonsOf synthesizes one statement per distinct (event type, reason)
// pair among the deviating verdicts, in first-occurrence order.
func lessonsOf(events []domain.MissionEvent, results []domain.ComparisonResult) []string {
	var lessons []string
	seen := make(map[string]bool)
	for i, r := range results {
		if r.ComplianceStatus != domain.StatusPartial && r.ComplianceStatus != domain.StatusNonCompliant {
			continue
		}
		reason := "missing " + joinNames(r.MissingElements)
		key := events[i].EventType + "|" + reason
		if seen[key] {
			continue
		}
		seen[key] = true
		lessons = append(lessons, fmt.Sprintf(
			"%s events were logged %s; ensure complete documentation per doctrine.",
			events[i].EventType, reason))
	}
	if len(lessons) == 0 {
		lessons = append(lessons, "All events were documented according to doctrine; sustain current procedures.")
	}
	return lessons
}

// recommendationsOf emits one actionable statement per distinct missing
// element, ordered by descending severity then first occurrence.
func recommendationsOf(results []domain.ComparisonResult) []string {
	type entry struct {
		element  string
		severity domain.Severity
		firstIdx int
	}
	var order []string
	byElement := make(map[string]*entry)
	for i, r := range results {
		if r.ComplianceStatus != domain.StatusPartial && r.ComplianceStatus != domain.StatusNonCompliant {
			continue
		}
		for _, el := range r.MissingElements {
			e, ok := byElement[el]
			if !ok {
				e = &entry{element: el, severity: r.Severity, firstIdx: i}
				byElement[el] = e
				order = append(order, el)
				continue
			}
			if r.Severity.Rank() > e.severity.Rank() {
				e.severity = r.Severity
			}
		}
	}

	entries := make([]*entry, 0, len(order))
	for _, el := range order {
		entries = append(entries, byElement[el])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].severity.Rank() != entries[j].severity.Rank() {
			return entries[i].severity.Rank() > entries[j].severity.Rank()
		}
		return entries[i].firstIdx < entries[j].firstIdx
	})

	recs := make([]string, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, recommendationFor(e.element))
	}
	return recs
}

// summaryOf renders the deterministic narrative header of the report.
func summaryOf(mission domain.MissionLog, results []domain.ComparisonResult) string {
	counts := make(map[domain.Status]int)
	worst := domain.ComparisonResult{}
	for _, r := range results {
		counts[r.ComplianceStatus]++
		if r.Severity.Rank() > worst.Severity.Rank() {
			worst = r
		}
	}

	s := fmt.Sprintf(
		"Mission %q aboard %s: %d events analyzed against doctrine, overall compliance score %.1f/100. Compliant: %d, partial: %d, non-compliant: %d, unclear: %d.",
		mission.MissionName, mission.VesselName, len(results), scoreOf(results),
		counts[domain.StatusCompliant], counts[domain.StatusPartial],
		counts[domain.StatusNonCompliant], counts[domain.StatusUnclear])

	if worst.Severity != "" {
		s += fmt.Sprintf(" Most severe finding: %s (%q at %s).",
			worst.Severity, worst.EventDescription, worst.Timestamp.Format(time.RFC3339))
	} else if counts[domain.StatusCompliant] == len(results) {
		s += " No deviations from doctrine were identified."
	}
	return s
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "with gaps"
	case 1:
		return names[0]
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
