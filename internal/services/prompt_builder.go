package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/models"
)

// CommentaryTones is the fixed set of accepted narration tones.
var CommentaryTones = []string{"Formal", "Humorístico", "Técnico"}

// PromptBuilder renders generation prompts from normalized match events.
type PromptBuilder struct {
	templates map[string]string
	logger    *logrus.Logger
}

const summaryTemplate = `Você é um especialista em futebol.

Baseado nos principais eventos da partida abaixo, resuma o jogo de maneira curta e clara.

Indique sempre o número de gols tanto do tempo regulamentar quanto de prorrogações e pênaltis.

Tente destacar quem fez mais gols pelo time vencedor, principalmente se marcou 2 ou mais.

Por exemplo:
"O time A venceu do time B por 5x2 nos pênaltis. A partida apresentou 2 cartões vermelhos."
"Com 2 gols de Carol, o time C vence a partida por 2x0. Assistências de Ana e Bianca."
"Uma partida muito feia, terminando empatada e com um número altíssimo de faltas."

{{events}}`

const commentaryTemplate = `Você é um narrador de futebol.

Narre os principais eventos da partida abaixo em tom {{tone}}, na ordem em que aconteceram.

Destaque gols, finalizações perigosas e faltas importantes, sempre citando o minuto e o jogador envolvido.

{{events}}`

// NewPromptBuilder creates a prompt builder with the default templates.
func NewPromptBuilder(logger *logrus.Logger) *PromptBuilder {
	return &PromptBuilder{
		templates: map[string]string{
			"match_summary": summaryTemplate,
			"commentary":    commentaryTemplate,
		},
		logger: logger,
	}
}

// BuildMatchSummaryPrompt renders the summary prompt over the key events of
// a match. Events should already be normalized and filtered.
func (pb *PromptBuilder) BuildMatchSummaryPrompt(events []models.Event) (string, error) {
	rendered, err := pb.renderEvents(events)
	if err != nil {
		return "", err
	}
	prompt := strings.ReplaceAll(pb.templates["match_summary"], "{{events}}", rendered)

	pb.logger.WithFields(logrus.Fields{
		"template":      "match_summary",
		"events":        len(events),
		"prompt_length": len(prompt),
	}).Debug("Built summary prompt")

	return prompt, nil
}

// BuildCommentaryPrompt renders the tonal commentary prompt. The tone must
// be one of CommentaryTones.
func (pb *PromptBuilder) BuildCommentaryPrompt(events []models.Event, tone string) (string, error) {
	if !ValidTone(tone) {
		return "", &InvalidToneError{Tone: tone}
	}

	rendered, err := pb.renderEvents(events)
	if err != nil {
		return "", err
	}
	prompt := strings.ReplaceAll(pb.templates["commentary"], "{{tone}}", tone)
	prompt = strings.ReplaceAll(prompt, "{{events}}", rendered)

	pb.logger.WithFields(logrus.Fields{
		"template":      "commentary",
		"tone":          tone,
		"events":        len(events),
		"prompt_length": len(prompt),
	}).Debug("Built commentary prompt")

	return prompt, nil
}

// ValidTone reports whether tone is a member of the accepted set.
func ValidTone(tone string) bool {
	for _, t := range CommentaryTones {
		if t == tone {
			return true
		}
	}
	return false
}

func (pb *PromptBuilder) renderEvents(events []models.Event) (string, error) {
	data, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to render events: %w", err)
	}
	return string(data), nil
}
