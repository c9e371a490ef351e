package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/pkg/config"
)

const eventsFixture = `[
  {
    "id": "a1",
    "index": 1,
    "type": {"id": 35, "name": "Starting XI"},
    "team": {"id": 100, "name": "Time A"},
    "minute": 0,
    "tactics": {
      "formation": 442,
      "lineup": [
        {"player": {"id": 1, "name": "Ana Souza"}, "position": {"id": 1, "name": "Goalkeeper"}},
        {"player": {"id": 2, "name": "Carla Silva"}, "position": {"id": 2, "name": "Right Back"}}
      ]
    }
  },
  {
    "id": "a2",
    "index": 2,
    "type": {"id": 16, "name": "Shot"},
    "team": {"id": 100, "name": "Time A"},
    "player": {"id": 1, "name": "Ana Souza"},
    "minute": 15,
    "shot": {
      "statsbomb_xg": 0.32,
      "outcome": {"id": 97, "name": "Goal"}
    }
  },
  {
    "id": "a3",
    "index": 3,
    "type": {"id": 19, "name": "Substitution"},
    "team": {"id": 100, "name": "Time A"},
    "player": {"id": 2, "name": "Carla Silva"},
    "minute": 60,
    "substitution": {
      "outcome": {"id": 103, "name": "Tactical"},
      "replacement": {"id": 3, "name": "Renata Alves"}
    }
  }
]`

const matchesFixture = `[
  {
    "match_id": 3895302,
    "match_date": "2024-05-25",
    "home_team": {"home_team_id": 100, "home_team_name": "Time A"},
    "away_team": {"away_team_id": 200, "away_team_name": "Time B"},
    "home_score": 2,
    "away_score": 1
  }
]`

const competitionsFixture = `[
  {
    "competition_id": 72,
    "season_id": 107,
    "competition_name": "Women's World Cup",
    "season_name": "2023",
    "country_name": "International"
  }
]`

func newTestClient(t *testing.T, handler http.Handler) *providers.StatsBombClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		StatsBombBaseURL:   server.URL,
		ExternalAPITimeout: 5 * time.Second,
	}
	return providers.NewStatsBombClient(cfg, logger)
}

func fixtureServer() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/competitions.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(competitionsFixture))
	})
	mux.HandleFunc("/matches/72/107.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(matchesFixture))
	})
	mux.HandleFunc("/events/3895302.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eventsFixture))
	})
	return mux
}

func TestEvents_FlattensProviderRecords(t *testing.T) {
	client := newTestClient(t, fixtureServer())

	events, err := client.Events(context.Background(), 3895302)

	require.NoError(t, err)
	require.Len(t, events, 3)

	shot := events[1]
	eventType, ok := shot.Type()
	require.True(t, ok)
	assert.Equal(t, "Shot", eventType)

	player, ok := shot.Player()
	require.True(t, ok)
	assert.Equal(t, "Ana Souza", player)

	team, ok := shot.Team()
	require.True(t, ok)
	assert.Equal(t, "Time A", team)

	outcome, ok := shot.ShotOutcome()
	require.True(t, ok)
	assert.Equal(t, "Goal", outcome)
	assert.Equal(t, 0.32, shot["shot_statsbomb_xg"])

	sub := events[2]
	replacement, ok := sub.SubstitutionReplacement()
	require.True(t, ok)
	assert.Equal(t, "Renata Alves", replacement)
	assert.Equal(t, 60, sub.Minute())
}

func TestEvents_PreservesTacticsForLineups(t *testing.T) {
	client := newTestClient(t, fixtureServer())

	events, err := client.Events(context.Background(), 3895302)

	require.NoError(t, err)
	names, ok := events[0].LineupNames()
	require.True(t, ok)
	assert.Equal(t, []string{"Ana Souza", "Carla Silva"}, names)
}

func TestEvents_UnknownMatchIsUpstreamError(t *testing.T) {
	client := newTestClient(t, fixtureServer())

	_, err := client.Events(context.Background(), 999)

	var upstream *providers.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
}

func TestMatches_FlattensFixtureShape(t *testing.T) {
	client := newTestClient(t, fixtureServer())

	matches, err := client.Matches(context.Background(), 72, 107)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 3895302, matches[0].MatchID)
	assert.Equal(t, "Time A", matches[0].HomeTeam)
	assert.Equal(t, "Time B", matches[0].AwayTeam)
	assert.Equal(t, 2, matches[0].HomeScore)
	assert.Equal(t, 1, matches[0].AwayScore)
}

func TestCompetitions(t *testing.T) {
	client := newTestClient(t, fixtureServer())

	competitions, err := client.Competitions(context.Background())

	require.NoError(t, err)
	require.Len(t, competitions, 1)
	assert.Equal(t, "Women's World Cup", competitions[0].CompetitionName)
	assert.Equal(t, 107, competitions[0].SeasonID)
}

func TestEvents_MalformedResponseIsUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	client := newTestClient(t, mux)

	_, err := client.Events(context.Background(), 1)

	var upstream *providers.UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestFlattenEvent_KeepsScalarFields(t *testing.T) {
	record := map[string]any{
		"id":       "x",
		"index":    float64(4),
		"minute":   float64(12),
		"duration": 0.8,
		"type":     map[string]any{"id": float64(30), "name": "Pass"},
		"pass": map[string]any{
			"length":    30.5,
			"recipient": map[string]any{"id": float64(9), "name": "Paula Reis"},
		},
	}

	event := providers.FlattenEvent(record)

	assert.Equal(t, "Pass", event["type"])
	assert.Equal(t, 30.5, event["pass_length"])
	assert.Equal(t, "Paula Reis", event["pass_recipient"])
	assert.Equal(t, 12, event.Minute())
	assert.Equal(t, 0.8, event["duration"])
}
