package models

// Competition is one competition/season pairing from the open-data provider.
type Competition struct {
	CompetitionID   int    `json:"competition_id"`
	SeasonID        int    `json:"season_id"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
	CountryName     string `json:"country_name"`
}

// Match is the fixture summary for one match. Matches are immutable once
// fetched and are never constructed locally.
type Match struct {
	MatchID   int    `json:"match_id"`
	MatchDate string `json:"match_date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// PlayerProfile is the derived per-player statistics tuple. Field names keep
// the wire vocabulary of the dashboard (finalizacoes, desarmes, ...).
type PlayerProfile struct {
	Player         string `json:"jogador"`
	Passes         int    `json:"passes"`
	Shots          int    `json:"finalizacoes"`
	Dispossessions int    `json:"desarmes"`
	MinutesPlayed  int    `json:"minutos_jogados"`
}
