package services

import (
	"sort"

	"github.com/stitts-dev/match-insights/internal/models"
)

// DefaultSummaryTypes is the event subset fed to text generation when the
// caller does not name an explicit filter.
var DefaultSummaryTypes = []string{
	models.EventTypePass,
	models.EventTypeShot,
	models.EventTypeFoul,
}

// Normalize converts a raw heterogeneous event table into a clean ordered
// sequence: ascending by minute with ties keeping their original relative
// order, and every null-valued field dropped from its record. The input is
// not mutated.
func Normalize(raw []models.Event) []models.Event {
	out := make([]models.Event, 0, len(raw))
	for _, event := range raw {
		clean := make(models.Event, len(event))
		for key, value := range event {
			if value == nil {
				continue
			}
			clean[key] = value
		}
		out = append(out, clean)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minute() < out[j].Minute()
	})
	return out
}

// FilterByType selects events whose type is in wantedTypes, preserving input
// order. An empty filter applies DefaultSummaryTypes. Unknown types are
// excluded, never an error; a record with no type field at all is a
// MalformedEventError.
func FilterByType(events []models.Event, wantedTypes []string) ([]models.Event, error) {
	if len(wantedTypes) == 0 {
		wantedTypes = DefaultSummaryTypes
	}
	return FilterEvents(events, wantedTypes, false)
}

// FilterEvents selects events whose type is in wantedTypes, optionally also
// admitting scoring shots regardless of the type filter (the dashboard's
// goals filter keys on shot_outcome, not on type). Input order is preserved;
// no default filter is applied.
func FilterEvents(events []models.Event, wantedTypes []string, includeGoals bool) ([]models.Event, error) {
	wanted := make(map[string]struct{}, len(wantedTypes))
	for _, t := range wantedTypes {
		wanted[t] = struct{}{}
	}

	var out []models.Event
	for i, event := range events {
		eventType, ok := event.Type()
		if !ok {
			return nil, &MalformedEventError{Index: i}
		}
		if _, match := wanted[eventType]; match {
			out = append(out, event)
			continue
		}
		if includeGoals {
			if outcome, ok := event.ShotOutcome(); ok && outcome == models.ShotOutcomeGoal {
				out = append(out, event)
			}
		}
	}
	return out, nil
}

// FilterGoals selects scoring shots, identified by shot_outcome rather than
// event type. Order is preserved from the input.
func FilterGoals(events []models.Event) []models.Event {
	var out []models.Event
	for _, event := range events {
		if outcome, ok := event.ShotOutcome(); ok && outcome == models.ShotOutcomeGoal {
			out = append(out, event)
		}
	}
	return out
}
