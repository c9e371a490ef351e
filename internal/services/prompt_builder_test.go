package services_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/internal/services"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func TestBuildMatchSummaryPrompt_EmbedsEvents(t *testing.T) {
	pb := services.NewPromptBuilder(testLogger())
	events := []models.Event{
		{"type": "Shot", "minute": float64(12), "player": "Ana Souza", "shot_outcome": "Goal"},
	}

	prompt, err := pb.BuildMatchSummaryPrompt(events)

	require.NoError(t, err)
	assert.Contains(t, prompt, "especialista em futebol")
	assert.Contains(t, prompt, "Ana Souza")
	assert.NotContains(t, prompt, "{{events}}")
}

func TestBuildCommentaryPrompt_AcceptsEveryTone(t *testing.T) {
	pb := services.NewPromptBuilder(testLogger())
	events := []models.Event{
		{"type": "Pass", "minute": float64(1), "player": "Paula Reis"},
	}

	for _, tone := range services.CommentaryTones {
		prompt, err := pb.BuildCommentaryPrompt(events, tone)
		require.NoError(t, err, tone)
		assert.Contains(t, prompt, tone)
		assert.Contains(t, prompt, "Paula Reis")
	}
}

func TestBuildCommentaryPrompt_RejectsUnknownTone(t *testing.T) {
	pb := services.NewPromptBuilder(testLogger())

	_, err := pb.BuildCommentaryPrompt(nil, "Sarcástico")

	var invalid *services.InvalidToneError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Sarcástico", invalid.Tone)
}

func TestValidTone(t *testing.T) {
	assert.True(t, services.ValidTone("Formal"))
	assert.True(t, services.ValidTone("Humorístico"))
	assert.True(t, services.ValidTone("Técnico"))
	assert.False(t, services.ValidTone("formal")) // case matters
	assert.False(t, services.ValidTone(""))
}
