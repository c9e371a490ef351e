package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/internal/providers"
)

// StepPublisher receives agent progress updates for streaming to dashboard
// clients. Implementations must not block.
type StepPublisher interface {
	PublishAgentUpdate(update *models.AgentUpdate)
}

// AgentStep is one reasoning step of the agent loop.
type AgentStep struct {
	Step        int    `json:"step"`
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// ReactAgent answers free-form questions about a match by iterating between
// the text-generation backend and a small set of declared tools. The loop is
// bounded: exceeding the step cap terminates with an error rather than
// looping indefinitely.
type ReactAgent struct {
	generator TextGenerator
	provider  providers.MatchDataProvider
	publisher StepPublisher
	logger    *logrus.Logger
	maxSteps  int
}

const agentPromptHeader = `Você é um assistente de análise de partidas de futebol. Responda a pergunta do usuário usando as ferramentas abaixo quando precisar de dados.

Ferramentas disponíveis:
- match_events: retorna os eventos da partida, ordenados por minuto. A entrada é uma lista de tipos separados por vírgula (ex: "Pass,Shot") ou "all" para o filtro padrão.
- player_profile: retorna as estatísticas de um jogador (passes, finalizações, desarmes, minutos jogados). A entrada é o nome (ou parte do nome) do jogador.

Use exatamente este formato:

Thought: seu raciocínio sobre o próximo passo
Action: nome da ferramenta
Action Input: entrada da ferramenta

Quando tiver a resposta final, use:

Final Answer: a resposta para o usuário

Pergunta: `

// observationLimit bounds tool output fed back into the prompt.
const observationLimit = 8000

// NewReactAgent creates an agent over the given generator and data provider.
// publisher may be nil when no progress streaming is wanted.
func NewReactAgent(
	generator TextGenerator,
	provider providers.MatchDataProvider,
	publisher StepPublisher,
	logger *logrus.Logger,
	maxSteps int,
) *ReactAgent {
	if maxSteps <= 0 {
		maxSteps = 10
	}
	return &ReactAgent{
		generator: generator,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		maxSteps:  maxSteps,
	}
}

// Answer runs the bounded reasoning loop and returns the final answer text.
func (a *ReactAgent) Answer(ctx context.Context, matchID int, question, sessionID string) (string, error) {
	transcript := strings.Builder{}
	transcript.WriteString(agentPromptHeader)
	transcript.WriteString(question)
	transcript.WriteString("\n\n")

	for step := 1; step <= a.maxSteps; step++ {
		result, err := a.generator.Generate(ctx, transcript.String())
		if err != nil {
			return "", fmt.Errorf("agent step %d generation failed: %w", step, err)
		}

		parsed := parseAgentOutput(result.Text)
		parsed.Step = step

		if answer, ok := finalAnswer(result.Text); ok {
			a.publish(sessionID, "answer", answer)
			a.logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"match_id":   matchID,
				"steps":      step,
			}).Info("Agent produced final answer")
			return answer, nil
		}

		if parsed.Action == "" {
			// Model ignored the format; feed the correction back as an
			// observation and spend a step on it.
			parsed.Observation = "Formato inválido. Use Action/Action Input ou Final Answer."
		} else {
			parsed.Observation = a.runTool(ctx, matchID, parsed.Action, parsed.ActionInput)
		}

		a.publish(sessionID, "step", parsed)

		transcript.WriteString(result.Text)
		transcript.WriteString("\nObservation: ")
		transcript.WriteString(parsed.Observation)
		transcript.WriteString("\n")
	}

	err := &AgentStepLimitError{Steps: a.maxSteps}
	a.publish(sessionID, "error", err.Error())
	return "", err
}

// runTool dispatches a declared tool. Tool failures become observations so
// the model can recover or report them; they never abort the loop.
func (a *ReactAgent) runTool(ctx context.Context, matchID int, action, input string) string {
	switch action {
	case "match_events":
		return a.matchEventsTool(ctx, matchID, input)
	case "player_profile":
		return a.playerProfileTool(ctx, matchID, input)
	default:
		return fmt.Sprintf("ferramenta desconhecida %q; use match_events ou player_profile", action)
	}
}

func (a *ReactAgent) matchEventsTool(ctx context.Context, matchID int, input string) string {
	events, err := a.provider.Events(ctx, matchID)
	if err != nil {
		return fmt.Sprintf("erro ao buscar eventos: %v", err)
	}

	var wanted []string
	input = strings.TrimSpace(input)
	if input != "" && !strings.EqualFold(input, "all") {
		for _, t := range strings.Split(input, ",") {
			wanted = append(wanted, strings.TrimSpace(t))
		}
	}

	filtered, err := FilterByType(Normalize(events), wanted)
	if err != nil {
		return fmt.Sprintf("erro ao filtrar eventos: %v", err)
	}

	data, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Sprintf("erro ao serializar eventos: %v", err)
	}
	return truncate(string(data), observationLimit)
}

func (a *ReactAgent) playerProfileTool(ctx context.Context, matchID int, input string) string {
	events, err := a.provider.Events(ctx, matchID)
	if err != nil {
		return fmt.Sprintf("erro ao buscar eventos: %v", err)
	}

	profile, err := ComputeProfile(Normalize(events), strings.TrimSpace(input))
	if err != nil {
		return fmt.Sprintf("erro ao calcular estatísticas: %v", err)
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Sprintf("erro ao serializar estatísticas: %v", err)
	}
	return string(data)
}

func (a *ReactAgent) publish(sessionID, updateType string, data any) {
	if a.publisher == nil || sessionID == "" {
		return
	}
	a.publisher.PublishAgentUpdate(&models.AgentUpdate{
		Type:      updateType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// finalAnswer extracts the text after a Final Answer marker.
func finalAnswer(output string) (string, bool) {
	idx := strings.Index(output, "Final Answer:")
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(output[idx+len("Final Answer:"):]), true
}

// parseAgentOutput pulls Thought/Action/Action Input lines out of one model
// turn. Missing fields stay empty.
func parseAgentOutput(output string) AgentStep {
	step := AgentStep{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Thought:"):
			step.Thought = strings.TrimSpace(strings.TrimPrefix(line, "Thought:"))
		case strings.HasPrefix(line, "Action:"):
			step.Action = strings.TrimSpace(strings.TrimPrefix(line, "Action:"))
		case strings.HasPrefix(line, "Action Input:"):
			step.ActionInput = strings.TrimSpace(strings.TrimPrefix(line, "Action Input:"))
		}
	}
	return step
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "... (truncado)"
}
