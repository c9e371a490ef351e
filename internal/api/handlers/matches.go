package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
	"github.com/stitts-dev/match-insights/pkg/config"
)

// MatchHandler serves competitions, match lists and per-match event data.
type MatchHandler struct {
	provider providers.MatchDataProvider
	config   *config.Config
	logger   *logrus.Logger
}

// NewMatchHandler creates a new match data handler.
func NewMatchHandler(provider providers.MatchDataProvider, cfg *config.Config, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// GetMatchEvents returns the full normalized event sequence of one match:
// ordered by minute, null-valued fields stripped.
func (h *MatchHandler) GetMatchEvents(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Insira um valor numérico para a partida."})
		return
	}

	events, err := h.provider.Events(c.Request.Context(), matchID)
	if err != nil {
		h.logger.WithError(err).WithField("match_id", matchID).Warn("Failed to fetch match events")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.Normalize(events))
}

// GetFilteredMatchEvents returns a filtered view of the normalized events.
// Query parameters: types (comma-separated event type names) and goals=true
// to include scoring shots regardless of type.
func (h *MatchHandler) GetFilteredMatchEvents(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Insira um valor numérico para a partida."})
		return
	}

	var types []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types = append(types, strings.TrimSpace(t))
		}
	}
	includeGoals := c.Query("goals") == "true"

	events, err := h.provider.Events(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	filtered, err := services.FilterEvents(services.Normalize(events), types, includeGoals)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, filtered)
}

// GetCompetitions lists every competition/season the provider exposes.
func (h *MatchHandler) GetCompetitions(c *gin.Context) {
	competitions, err := h.provider.Competitions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, competitions)
}

// GetMatches lists the matches of one competition season.
func (h *MatchHandler) GetMatches(c *gin.Context) {
	competitionID, err := strconv.Atoi(c.Query("competition_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "competition_id must be an integer"})
		return
	}
	seasonID, err := strconv.Atoi(c.Query("season_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "season_id must be an integer"})
		return
	}

	matches, err := h.provider.Matches(c.Request.Context(), competitionID, seasonID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"competition_id": competitionID,
		"season_id":      seasonID,
		"matches":        len(matches),
	}).Debug("Listed matches")

	c.JSON(http.StatusOK, matches)
}
