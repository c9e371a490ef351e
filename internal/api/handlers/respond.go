package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
)

// User-visible error messages keep the dashboard's wording.
const (
	msgMatchNotFound   = "Erro! Partida não encontrada."
	msgPlayerNotFound  = "Erro! Não encontramos nenhum jogador com esse nome."
	msgAmbiguousPlayer = "Erro! O nome inserido pode ser interpretado para mais de 1 jogador."
	msgGenerateFailed  = "Erro! Não foi possível gerar o texto."
)

// respondError maps the failure taxonomy onto HTTP statuses: upstream fetch
// failures are a not-found, input validation a bad request, everything else
// an internal error. Nothing is retried and no partial result is returned.
func respondError(c *gin.Context, err error) {
	var upstream *providers.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgMatchNotFound})
		return
	}

	var notFound *services.PlayerNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgPlayerNotFound})
		return
	}

	var ambiguous *services.AmbiguousPlayerError
	if errors.As(err, &ambiguous) {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":     msgAmbiguousPlayer,
			"candidates": ambiguous.Candidates,
		})
		return
	}

	var invalidTone *services.InvalidToneError
	if errors.As(err, &invalidTone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":      invalidTone.Error(),
			"valid_tones": services.CommentaryTones,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
