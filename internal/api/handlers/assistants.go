package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
	"github.com/stitts-dev/match-insights/pkg/config"
)

// AssistantHandler serves the text-generation endpoints: match summary,
// tonal commentary and the tool-using agent.
type AssistantHandler struct {
	provider  providers.MatchDataProvider
	generator services.TextGenerator
	prompts   *services.PromptBuilder
	agent     *services.ReactAgent
	config    *config.Config
	logger    *logrus.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(
	provider providers.MatchDataProvider,
	generator services.TextGenerator,
	prompts *services.PromptBuilder,
	agent *services.ReactAgent,
	cfg *config.Config,
	logger *logrus.Logger,
) *AssistantHandler {
	return &AssistantHandler{
		provider:  provider,
		generator: generator,
		prompts:   prompts,
		agent:     agent,
		config:    cfg,
		logger:    logger,
	}
}

// CreateMatchSummary generates a short natural-language summary from the key
// events of a match.
func (h *AssistantHandler) CreateMatchSummary(c *gin.Context) {
	var request models.MatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request format", "error": err.Error()})
		return
	}

	events, err := h.keyEvents(c, request.MatchID)
	if err != nil {
		respondError(c, err)
		return
	}

	prompt, err := h.prompts.BuildMatchSummaryPrompt(events)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		h.logger.WithError(err).WithField("match_id", request.MatchID).Error("Summary generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgGenerateFailed})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"match_id":    request.MatchID,
		"request_id":  result.RequestID,
		"tokens_used": result.TokensUsed,
	}).Info("Generated match summary")

	c.JSON(http.StatusOK, models.SummaryResponse{
		MatchID: request.MatchID,
		Summary: result.Text,
	})
}

// CreateCommentary generates tonal match commentary. The tone must belong to
// the fixed accepted set.
func (h *AssistantHandler) CreateCommentary(c *gin.Context) {
	var request models.CommentaryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request format", "error": err.Error()})
		return
	}

	if !services.ValidTone(request.Tone) {
		respondError(c, &services.InvalidToneError{Tone: request.Tone})
		return
	}

	events, err := h.keyEvents(c, request.MatchID)
	if err != nil {
		respondError(c, err)
		return
	}

	prompt, err := h.prompts.BuildCommentaryPrompt(events, request.Tone)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"match_id": request.MatchID,
			"tone":     request.Tone,
		}).Error("Commentary generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgGenerateFailed})
		return
	}

	c.JSON(http.StatusOK, models.SummaryResponse{
		MatchID: request.MatchID,
		Summary: result.Text,
	})
}

// AskAgent answers a free-form question through the bounded tool-using
// agent. An optional session_id query parameter ties the request to a
// websocket connection streaming reasoning progress; any internal failure is
// surfaced as a 500.
func (h *AssistantHandler) AskAgent(c *gin.Context) {
	var request models.QuestionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request format", "error": err.Error()})
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	answer, err := h.agent.Answer(c.Request.Context(), request.MatchID, request.Question, sessionID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"match_id":   request.MatchID,
			"session_id": sessionID,
		}).Error("Agent failed to answer question")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.AnswerResponse{
		MatchID:  request.MatchID,
		Question: request.Question,
		Answer:   answer,
	})
}

// keyEvents fetches, normalizes and filters a match down to the event subset
// fed to text generation.
func (h *AssistantHandler) keyEvents(c *gin.Context, matchID int) ([]models.Event, error) {
	events, err := h.provider.Events(c.Request.Context(), matchID)
	if err != nil {
		return nil, err
	}
	return services.FilterByType(services.Normalize(events), nil)
}
