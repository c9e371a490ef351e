package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/match-insights/internal/models"
	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
)

// scriptedGenerator replays canned model turns and records the prompts it
// received.
type scriptedGenerator struct {
	responses []string
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (*services.GenerationResult, error) {
	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		return nil, fmt.Errorf("no scripted response left")
	}
	next := g.responses[0]
	if len(g.responses) > 1 {
		g.responses = g.responses[1:]
	}
	return &services.GenerationResult{Text: next, TokensUsed: 10}, nil
}

// stubProvider serves the profile test fixture for one known match id.
type stubProvider struct {
	knownMatchID int
	eventsCalls  int
}

func (p *stubProvider) Competitions(ctx context.Context) ([]models.Competition, error) {
	return nil, nil
}

func (p *stubProvider) Matches(ctx context.Context, competitionID, seasonID int) ([]models.Match, error) {
	return nil, nil
}

func (p *stubProvider) Events(ctx context.Context, matchID int) ([]models.Event, error) {
	p.eventsCalls++
	if matchID != p.knownMatchID {
		return nil, &providers.UpstreamError{Resource: fmt.Sprintf("events/%d.json", matchID), StatusCode: 404}
	}
	return fixtureEvents(), nil
}

// collectingPublisher records agent updates in-process.
type collectingPublisher struct {
	updates []*models.AgentUpdate
}

func (p *collectingPublisher) PublishAgentUpdate(update *models.AgentUpdate) {
	p.updates = append(p.updates, update)
}

func TestReactAgent_AnswersAfterToolCall(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: preciso ver as finalizações\nAction: match_events\nAction Input: Shot",
		"Final Answer: O jogo teve 2 finalizações, com um gol de Ana Souza.",
	}}
	provider := &stubProvider{knownMatchID: 3895302}
	agent := services.NewReactAgent(generator, provider, nil, testLogger(), 10)

	answer, err := agent.Answer(context.Background(), 3895302, "Quantas finalizações houve?", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "O jogo teve 2 finalizações, com um gol de Ana Souza.", answer)
	assert.Equal(t, 1, provider.eventsCalls)

	// The second turn sees the tool observation appended to the transcript
	require.Len(t, generator.prompts, 2)
	assert.Contains(t, generator.prompts[1], "Observation:")
	assert.Contains(t, generator.prompts[1], "Ana Souza")
}

func TestReactAgent_PlayerProfileTool(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: vou calcular as estatísticas\nAction: player_profile\nAction Input: Renata",
		"Final Answer: Renata Alves jogou 28 minutos.",
	}}
	provider := &stubProvider{knownMatchID: 3895302}
	agent := services.NewReactAgent(generator, provider, nil, testLogger(), 10)

	answer, err := agent.Answer(context.Background(), 3895302, "Quantos minutos Renata jogou?", "sess-2")

	require.NoError(t, err)
	assert.Contains(t, answer, "28 minutos")
	require.Len(t, generator.prompts, 2)
	assert.Contains(t, generator.prompts[1], `"minutos_jogados":28`)
}

func TestReactAgent_ToolErrorsBecomeObservations(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: vou buscar os eventos\nAction: match_events\nAction Input: all",
		"Final Answer: Não encontrei essa partida.",
	}}
	provider := &stubProvider{knownMatchID: 1}
	agent := services.NewReactAgent(generator, provider, nil, testLogger(), 10)

	answer, err := agent.Answer(context.Background(), 999, "Como foi o jogo?", "sess-3")

	require.NoError(t, err)
	assert.Equal(t, "Não encontrei essa partida.", answer)
	assert.Contains(t, generator.prompts[1], "erro ao buscar eventos")
}

func TestReactAgent_StepLimitTerminatesWithError(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: pensando\nAction: match_events\nAction Input: all",
	}}
	provider := &stubProvider{knownMatchID: 3895302}
	agent := services.NewReactAgent(generator, provider, nil, testLogger(), 3)

	_, err := agent.Answer(context.Background(), 3895302, "Pergunta sem fim", "sess-4")

	var limit *services.AgentStepLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 3, limit.Steps)
	assert.Len(t, generator.prompts, 3)
}

func TestReactAgent_PublishesProgress(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: preciso dos eventos\nAction: match_events\nAction Input: Pass",
		"Final Answer: Muitos passes.",
	}}
	provider := &stubProvider{knownMatchID: 3895302}
	publisher := &collectingPublisher{}
	agent := services.NewReactAgent(generator, provider, publisher, testLogger(), 10)

	_, err := agent.Answer(context.Background(), 3895302, "Quantos passes?", "sess-5")

	require.NoError(t, err)
	require.NotEmpty(t, publisher.updates)

	types := make([]string, 0, len(publisher.updates))
	for _, update := range publisher.updates {
		assert.Equal(t, "sess-5", update.SessionID)
		types = append(types, update.Type)
	}
	assert.Contains(t, types, "step")
	assert.Contains(t, strings.Join(types, ","), "answer")
}

func TestReactAgent_UnknownToolObservation(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"Thought: vou usar outra ferramenta\nAction: web_search\nAction Input: placar",
		"Final Answer: Só posso usar as ferramentas declaradas.",
	}}
	provider := &stubProvider{knownMatchID: 3895302}
	agent := services.NewReactAgent(generator, provider, nil, testLogger(), 10)

	_, err := agent.Answer(context.Background(), 3895302, "Qual o placar?", "sess-6")

	require.NoError(t, err)
	assert.Contains(t, generator.prompts[1], "ferramenta desconhecida")
	assert.Equal(t, 0, provider.eventsCalls)
}
