package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
	"github.com/stitts-dev/match-insights/pkg/config"
)

// ProfileHandler serves the derived per-player statistics tuple.
type ProfileHandler struct {
	provider providers.MatchDataProvider
	config   *config.Config
	logger   *logrus.Logger
}

// NewProfileHandler creates a new player profile handler.
func NewProfileHandler(provider providers.MatchDataProvider, cfg *config.Config, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// GetPlayerProfile resolves the player name fragment and computes the
// statistics tuple including inferred minutes played.
func (h *ProfileHandler) GetPlayerProfile(c *gin.Context) {
	var request models.PlayerProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request format", "error": err.Error()})
		return
	}

	events, err := h.provider.Events(c.Request.Context(), request.MatchID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := services.ComputeProfile(services.Normalize(events), request.PlayerName)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"match_id":    request.MatchID,
			"player_name": request.PlayerName,
		}).Warn("Failed to compute player profile")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"match_id":       request.MatchID,
		"player":         profile.Player,
		"minutes_played": profile.MinutesPlayed,
	}).Info("Computed player profile")

	c.JSON(http.StatusOK, models.PlayerProfileResponse{
		MatchID: request.MatchID,
		Stats:   profile,
	})
}
