package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
	"github.com/21phuctran/i4NS-LENS/internal/ports"
)

// Config holds the tunables of the comparison engine.
type Config struct {
	TopK                int
	MinScore            float64
	QueryTimeout        time.Duration
	SpeedNotifyKnots    float64
	CourseNotifyDegrees float64
}

func DefaultConfig() Config {
	return Config{
		TopK:                3,
		MinScore:            0.05,
		QueryTimeout:        2 * time.Second,
		SpeedNotifyKnots:    5,
		CourseNotifyDegrees: 10,
	}
}

// Comparator turns one normalized event into a doctrine-grounded verdict.
// Stateless between calls; safe for concurrent use.
type Comparator struct {
	searcher ports.DoctrineSearcher
	rules    map[string]Rule
	cfg      Config
	log      *zap.Logger
}

func NewComparator(searcher ports.DoctrineSearcher, rules map[string]Rule, cfg Config, log *zap.Logger) *Comparator {
	if rules == nil {
		rules = DefaultRules()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultConfig().QueryTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Comparator{searcher: searcher, rules: rules, cfg: cfg, log: log}
}

// Compare retrieves doctrine for the event and applies the rule table.
// A failed or timed-out lookup returns a *domain.RetrievalError; the caller
// decides whether to abort or degrade.
func (c *Comparator) Compare(ctx context.Context, ev domain.MissionEvent) (domain.ComparisonResult, error) {
	// event_type first so retrieval biases toward the right doctrine section
	query := ev.EventType + ": " + ev.Description

	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	passages, err := c.searcher.Search(ctx, query, c.cfg.TopK)
	if err != nil {
		c.log.Warn("doctrine search failed", zap.String("event_type", ev.EventType), zap.Error(err))
		return domain.ComparisonResult{}, &domain.RetrievalError{Query: query, Err: err}
	}

	used := passages[:0:0]
	for _, p := range passages {
		if p.Score >= c.cfg.MinScore {
			used = append(used, p)
		}
	}
	if len(used) == 0 {
		return unclearResult(ev, "No relevant doctrine passages matched this event."), nil
	}

	rule, ok := c.rules[ev.EventType]
	if !ok {
		return c.genericResult(ev, used), nil
	}
	return c.applyRule(ev, rule, used), nil
}

// applyRule evaluates the rule's required elements against the event.
func (c *Comparator) applyRule(ev domain.MissionEvent, rule Rule, used []domain.Passage) domain.ComparisonResult {
	var found, missing []Element
	centralMissing := false
	for _, el := range rule.Elements {
		if el.Applies != nil && !el.Applies(ev, c.cfg) {
			continue
		}
		if el.Present(ev) {
			found = append(found, el)
			continue
		}
		missing = append(missing, el)
		if el.Central {
			centralMissing = true
		}
	}

	res := domain.ComparisonResult{
		Timestamp:        ev.Timestamp,
		EventDescription: ev.Description,
		ActualAction:     ev.Description,
		ExpectedAction:   rule.ExpectedAction,
		DoctrineSources:  passageSources(used),
	}

	switch {
	case len(missing) == 0:
		res.ComplianceStatus = domain.StatusCompliant
		res.Analysis = fmt.Sprintf(
			"Event %q satisfied all %d doctrine-required elements (%s). Doctrine basis: %s",
			ev.EventType, len(found), elementNames(found), excerpt(used[0].Text))
	case centralMissing:
		res.ComplianceStatus = domain.StatusNonCompliant
		res.Severity = severityFor(rule, missing)
		res.MissingElements = elementNameList(missing)
		res.Analysis = fmt.Sprintf(
			"Event %q is missing the mandatory %s required by doctrine. Also missing: %s. Doctrine basis: %s",
			ev.EventType, missing[0].Name, orNone(elementNames(missing[1:])), excerpt(used[0].Text))
	default:
		res.ComplianceStatus = domain.StatusPartial
		res.Severity = severityFor(rule, missing)
		res.MissingElements = elementNameList(missing)
		res.Analysis = fmt.Sprintf(
			"Event %q was logged but is missing %s. Present: %s. Doctrine basis: %s",
			ev.EventType, elementNames(missing), orNone(elementNames(found)), excerpt(used[0].Text))
	}
	return res
}

// genericResult handles event types with no rule. Generic heuristics only:
// a documented event yields compliant, never a penalty.
func (c *Comparator) genericResult(ev domain.MissionEvent, used []domain.Passage) domain.ComparisonResult {
	res := domain.ComparisonResult{
		Timestamp:        ev.Timestamp,
		EventDescription: ev.Description,
		ActualAction:     ev.Description,
		ExpectedAction:   GenericExpectedAction,
		DoctrineSources:  passageSources(used),
	}
	if strings.TrimSpace(ev.Description) == "" {
		res.ComplianceStatus = domain.StatusUnclear
		res.Analysis = fmt.Sprintf(
			"No specific doctrine rule defined for event type %q and the event carries no description; unable to assess.", ev.EventType)
		return res
	}
	res.ComplianceStatus = domain.StatusCompliant
	res.Analysis = fmt.Sprintf(
		"No specific doctrine rule defined for event type %q; the event is timestamped and described, meeting generic documentation requirements. Doctrine basis: %s",
		ev.EventType, excerpt(used[0].Text))
	return res
}

func unclearResult(ev domain.MissionEvent, note string) domain.ComparisonResult {
	return domain.ComparisonResult{
		Timestamp:        ev.Timestamp,
		EventDescription: ev.Description,
		ActualAction:     ev.Description,
		ExpectedAction:   "No applicable doctrine found",
		ComplianceStatus: domain.StatusUnclear,
		Analysis:         note,
	}
}

func passageSources(passages []domain.Passage) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range passages {
		if !seen[p.Source] {
			seen[p.Source] = true
			out = append(out, p.Source)
		}
	}
	return out
}

func elementNameList(els []Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Name
	}
	return out
}

func elementNames(els []Element) string {
	return strings.Join(elementNameList(els), ", ")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// excerpt trims a passage to a citable length with collapsed whitespace.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const max = 160
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
