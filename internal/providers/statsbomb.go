package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/pkg/config"
)

// MatchDataProvider is the read-only boundary to the open-data service.
type MatchDataProvider interface {
	Competitions(ctx context.Context) ([]models.Competition, error)
	Matches(ctx context.Context, competitionID, seasonID int) ([]models.Match, error)
	Events(ctx context.Context, matchID int) ([]models.Event, error)
}

// StatsBombClient fetches competitions, matches and per-match events from the
// StatsBomb open-data repository.
type StatsBombClient struct {
	httpClient     *http.Client
	logger         *logrus.Logger
	baseURL        string
	circuitBreaker *gobreaker.CircuitBreaker
	retryAttempts  int
}

// NewStatsBombClient creates a new open-data client with a circuit breaker
// around the upstream.
func NewStatsBombClient(cfg *config.Config, logger *logrus.Logger) *StatsBombClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "statsbomb-open-data",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Open-data circuit breaker state changed")
		},
	})

	return &StatsBombClient{
		httpClient: &http.Client{
			Timeout: cfg.ExternalAPITimeout,
		},
		logger:         logger,
		baseURL:        cfg.StatsBombBaseURL,
		circuitBreaker: cb,
		retryAttempts:  3,
	}
}

// Competitions lists every competition/season pairing in the open data.
func (c *StatsBombClient) Competitions(ctx context.Context) ([]models.Competition, error) {
	var competitions []models.Competition
	if err := c.fetchJSON(ctx, "competitions.json", &competitions); err != nil {
		return nil, err
	}
	return competitions, nil
}

// rawMatch mirrors the nested fixture shape of the open-data matches files.
type rawMatch struct {
	MatchID   int    `json:"match_id"`
	MatchDate string `json:"match_date"`
	HomeTeam  struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// Matches lists the fixtures of one competition season, flattened to the
// tabular shape the rest of the service consumes.
func (c *StatsBombClient) Matches(ctx context.Context, competitionID, seasonID int) ([]models.Match, error) {
	path := fmt.Sprintf("matches/%d/%d.json", competitionID, seasonID)
	var raw []rawMatch
	if err := c.fetchJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, models.Match{
			MatchID:   m.MatchID,
			MatchDate: m.MatchDate,
			HomeTeam:  m.HomeTeam.Name,
			AwayTeam:  m.AwayTeam.Name,
			HomeScore: m.HomeScore,
			AwayScore: m.AwayScore,
		})
	}
	return matches, nil
}

// Events fetches the raw event records of one match and flattens each record
// into the tabular form the normalizer and profile calculator consume.
func (c *StatsBombClient) Events(ctx context.Context, matchID int) ([]models.Event, error) {
	path := fmt.Sprintf("events/%d.json", matchID)
	var raw []map[string]any
	if err := c.fetchJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(raw))
	for _, record := range raw {
		events = append(events, FlattenEvent(record))
	}

	c.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"events":   len(events),
	}).Debug("Fetched match events")

	return events, nil
}

// FlattenEvent collapses the nested open-data event structure into flat
// columns: top-level {id,name} objects become their name, and nested group
// objects (shot, pass, substitution, ...) are prefixed into parent_child
// keys, so a shot outcome surfaces as shot_outcome and a substitution
// replacement as substitution_replacement. The tactics structure is kept
// intact because lineups are read from it downstream.
func FlattenEvent(record map[string]any) models.Event {
	event := make(models.Event, len(record))
	for key, value := range record {
		if key == "tactics" {
			event[key] = value
			continue
		}

		nested, ok := value.(map[string]any)
		if !ok {
			event[key] = value
			continue
		}

		if name, ok := nameOf(nested); ok {
			event[key] = name
			continue
		}

		for childKey, childValue := range nested {
			flatKey := key + "_" + childKey
			if childNested, ok := childValue.(map[string]any); ok {
				if name, ok := nameOf(childNested); ok {
					event[flatKey] = name
				}
				continue
			}
			event[flatKey] = childValue
		}
	}
	return event
}

// nameOf unwraps the provider's {id, name} reference objects.
func nameOf(m map[string]any) (string, bool) {
	if len(m) > 3 {
		return "", false
	}
	name, ok := m["name"].(string)
	if !ok {
		return "", false
	}
	if _, hasID := m["id"]; !hasID {
		return "", false
	}
	return name, true
}

// fetchJSON retrieves and decodes one data file, retrying transient failures
// with backoff behind the circuit breaker.
func (c *StatsBombClient) fetchJSON(ctx context.Context, path string, out any) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	body, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.get(ctx, url, path)
	})
	if err != nil {
		var upstream *UpstreamError
		if ue, ok := err.(*UpstreamError); ok {
			upstream = ue
		} else {
			upstream = &UpstreamError{Resource: path, Err: err}
		}
		return upstream
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return &UpstreamError{Resource: path, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func (c *StatsBombClient) get(ctx context.Context, url, resource string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &UpstreamError{Resource: resource, Err: ctx.Err()}
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &UpstreamError{Resource: resource, Err: err}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			// Unknown match or season; retrying cannot help.
			return nil, &UpstreamError{Resource: resource, StatusCode: resp.StatusCode}
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		default:
			return nil, &UpstreamError{Resource: resource, StatusCode: resp.StatusCode}
		}
	}

	return nil, &UpstreamError{Resource: resource, Err: fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)}
}
