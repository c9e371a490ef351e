package models

// Event is a single raw occurrence in a match record as returned by the data
// provider. Provider records are heterogeneous: beyond the handful of fields
// this service interprets, arbitrary fields are carried through opaquely, so
// the record is kept as a generic map rather than a fixed struct.
type Event map[string]any

// Event types the service distinguishes. Every other type passes through
// unmodified.
const (
	EventTypePass         = "Pass"
	EventTypeShot         = "Shot"
	EventTypeFoul         = "Foul Committed"
	EventTypeDispossessed = "Dispossessed"
	EventTypeStartingXI   = "Starting XI"
	EventTypeSubstitution = "Substitution"
)

// ShotOutcomeGoal marks a scoring shot in the shot_outcome field.
const ShotOutcomeGoal = "Goal"

func (e Event) stringField(key string) (string, bool) {
	v, ok := e[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Type returns the event type name. The second return is false when the
// record carries no type field at all.
func (e Event) Type() (string, bool) {
	return e.stringField("type")
}

// Player returns the full player name; absent for team-level events.
func (e Event) Player() (string, bool) {
	return e.stringField("player")
}

// Team returns the team name when present.
func (e Event) Team() (string, bool) {
	return e.stringField("team")
}

// ShotOutcome is only meaningful when Type is Shot.
func (e Event) ShotOutcome() (string, bool) {
	return e.stringField("shot_outcome")
}

// SubstitutionReplacement names the incoming player on a Substitution event.
func (e Event) SubstitutionReplacement() (string, bool) {
	return e.stringField("substitution_replacement")
}

// Minute returns the match minute, or zero when the field is absent.
// JSON decoding yields float64 for numbers, so both encodings are accepted.
func (e Event) Minute() int {
	switch v := e["minute"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// LineupNames extracts player names from tactics.lineup on a Starting XI
// event. The second return is false when the event carries no usable lineup.
func (e Event) LineupNames() ([]string, bool) {
	tactics, ok := e["tactics"].(map[string]any)
	if !ok {
		return nil, false
	}
	lineup, ok := tactics["lineup"].([]any)
	if !ok {
		return nil, false
	}

	names := make([]string, 0, len(lineup))
	for _, entry := range lineup {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		player, ok := m["player"].(map[string]any)
		if !ok {
			continue
		}
		if name, ok := player["name"].(string); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

// Clone returns a shallow copy of the event record.
func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
