package services

import (
	"sort"
	"strings"

	"github.com/stitts-dev/match-insights/internal/models"
)

// ResolvePlayer resolves a player name fragment against the distinct player
// names appearing in the match events. Matching is case-sensitive substring
// containment. Zero matches or more than one match is an input error, never
// a silent default.
func ResolvePlayer(events []models.Event, nameFragment string) (string, error) {
	seen := make(map[string]struct{})
	var candidates []string
	for _, event := range events {
		name, ok := event.Player()
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if strings.Contains(name, nameFragment) {
			candidates = append(candidates, name)
		}
	}

	switch len(candidates) {
	case 0:
		return "", &PlayerNotFoundError{Fragment: nameFragment}
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", &AmbiguousPlayerError{Fragment: nameFragment, Candidates: candidates}
	}
}

// StartingLineup unions both teams' Starting XI lineups into one name set.
// A match with fewer than two Starting XI events is malformed data.
func StartingLineup(events []models.Event) (map[string]struct{}, error) {
	lineup := make(map[string]struct{})
	found := 0
	for _, event := range events {
		eventType, ok := event.Type()
		if !ok || eventType != models.EventTypeStartingXI {
			continue
		}
		found++
		names, ok := event.LineupNames()
		if !ok {
			continue
		}
		for _, name := range names {
			lineup[name] = struct{}{}
		}
	}

	if found < 2 {
		return nil, &MissingLineupError{Found: found}
	}
	return lineup, nil
}

// ComputeProfile resolves the player identity and assembles the statistics
// tuple, including the inferred minutes-played figure.
//
// Per-player events are selected by substring containment of the resolved
// full name, matching the upstream behavior. This is looser than resolution
// and can over-select when one player's name is a substring of another's;
// kept as-is deliberately.
func ComputeProfile(events []models.Event, nameFragment string) (models.PlayerProfile, error) {
	fullName, err := ResolvePlayer(events, nameFragment)
	if err != nil {
		return models.PlayerProfile{}, err
	}

	var playerEvents []models.Event
	for _, event := range events {
		if name, ok := event.Player(); ok && strings.Contains(name, fullName) {
			playerEvents = append(playerEvents, event)
		}
	}

	profile := models.PlayerProfile{Player: fullName}
	for _, event := range playerEvents {
		eventType, ok := event.Type()
		if !ok {
			continue
		}
		switch eventType {
		case models.EventTypePass:
			profile.Passes++
		case models.EventTypeShot:
			profile.Shots++
		case models.EventTypeDispossessed:
			profile.Dispossessions++
		}
	}

	minutes, err := inferMinutesPlayed(events, playerEvents, fullName)
	if err != nil {
		return models.PlayerProfile{}, err
	}
	profile.MinutesPlayed = minutes

	return profile, nil
}

// inferMinutesPlayed derives playing time from substitution bookkeeping.
//
// Starters substituted out played until their substitution minute; starters
// never substituted are credited up to the last minute they are observed
// acting, an approximation inherited from the source data model. Substitutes
// are credited from the minute of the Substitution event naming them as the
// replacement until their last observed action.
func inferMinutesPlayed(events, playerEvents []models.Event, fullName string) (int, error) {
	lineup, err := StartingLineup(events)
	if err != nil {
		return 0, err
	}

	if _, starter := lineup[fullName]; starter {
		for _, event := range playerEvents {
			if eventType, ok := event.Type(); ok && eventType == models.EventTypeSubstitution {
				return event.Minute(), nil
			}
		}
		return lastMinute(playerEvents), nil
	}

	for _, event := range events {
		eventType, ok := event.Type()
		if !ok || eventType != models.EventTypeSubstitution {
			continue
		}
		if replacement, ok := event.SubstitutionReplacement(); ok && replacement == fullName {
			return lastMinute(playerEvents) - event.Minute(), nil
		}
	}
	return 0, &SubstitutionRecordNotFoundError{Player: fullName}
}

func lastMinute(events []models.Event) int {
	max := 0
	for _, event := range events {
		if m := event.Minute(); m > max {
			max = m
		}
	}
	return max
}
