package services

import (
	"fmt"
	"strings"
)

// PlayerNotFoundError reports a name fragment that matched no player in the
// match events.
type PlayerNotFoundError struct {
	Fragment string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("no player found matching %q", e.Fragment)
}

// AmbiguousPlayerError reports a name fragment that matched more than one
// distinct player. Candidates carries every matching full name.
type AmbiguousPlayerError struct {
	Fragment   string
	Candidates []string
}

func (e *AmbiguousPlayerError) Error() string {
	return fmt.Sprintf("player name %q is ambiguous, matches: %s",
		e.Fragment, strings.Join(e.Candidates, ", "))
}

// MissingLineupError reports that a match carried fewer than the two
// Starting XI events required to assemble both starting lineups.
type MissingLineupError struct {
	Found int
}

func (e *MissingLineupError) Error() string {
	return fmt.Sprintf("expected 2 Starting XI events, found %d", e.Found)
}

// SubstitutionRecordNotFoundError reports a substitute player with no
// Substitution event recording their entry into the match.
type SubstitutionRecordNotFoundError struct {
	Player string
}

func (e *SubstitutionRecordNotFoundError) Error() string {
	return fmt.Sprintf("no substitution record found for player %q", e.Player)
}

// MalformedEventError reports an event record missing its type field.
type MalformedEventError struct {
	Index int
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event at index %d has no type field", e.Index)
}

// InvalidToneError reports a commentary tone outside the supported set.
type InvalidToneError struct {
	Tone string
}

func (e *InvalidToneError) Error() string {
	return fmt.Sprintf("invalid commentary tone %q, must be one of: %s",
		e.Tone, strings.Join(CommentaryTones, ", "))
}

// AgentStepLimitError reports that the agent hit its reasoning step cap
// without producing a final answer.
type AgentStepLimitError struct {
	Steps int
}

func (e *AgentStepLimitError) Error() string {
	return fmt.Sprintf("agent exceeded %d reasoning steps without a final answer", e.Steps)
}
