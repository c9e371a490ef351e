package models

import "time"

// MatchRequest identifies the match a generation request refers to.
type MatchRequest struct {
	MatchID int `json:"id_partida" binding:"required"`
}

// PlayerProfileRequest asks for the statistics of one player in a match.
// The name may be a fragment; it must resolve to exactly one player.
type PlayerProfileRequest struct {
	MatchID    int    `json:"id_partida" binding:"required"`
	PlayerName string `json:"nome_jogador" binding:"required"`
}

// CommentaryRequest asks for tonal match commentary.
type CommentaryRequest struct {
	MatchID int    `json:"id_partida" binding:"required"`
	Tone    string `json:"tom_narracao" binding:"required"`
}

// QuestionRequest carries a free-form question for the agent.
type QuestionRequest struct {
	MatchID  int    `json:"id_partida" binding:"required"`
	Question string `json:"pergunta" binding:"required"`
}

// SummaryResponse is returned by the summary and commentary endpoints.
type SummaryResponse struct {
	MatchID int    `json:"id_partida"`
	Summary string `json:"resumo"`
}

// PlayerProfileResponse wraps the computed statistics tuple.
type PlayerProfileResponse struct {
	MatchID int           `json:"id_partida"`
	Stats   PlayerProfile `json:"estatisticas"`
}

// AnswerResponse is returned by the agent endpoint.
type AnswerResponse struct {
	MatchID  int    `json:"id_partida"`
	Question string `json:"pergunta"`
	Answer   string `json:"resposta"`
}

// AgentUpdate is pushed over the websocket hub while the agent is working so
// the dashboard can show reasoning progress.
type AgentUpdate struct {
	Type      string    `json:"type"` // "step", "answer", "error"
	SessionID string    `json:"session_id"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
