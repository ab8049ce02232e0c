package policy

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/htmlparse"
	"webshop-env/internal/infrastructure/prompts"
)

var _ output.Policy = (*LLM)(nil)

const maxObservationLen = 6000

type LLM struct {
	llm          output.LLMPort
	logger       output.LoggerPort
	systemPrompt string
	turnTemplate string
}

func NewLLM(llm output.LLMPort, logger output.LoggerPort, systemPrompt string) *LLM {
	if systemPrompt == "" {
		systemPrompt = prompts.DefaultSystemPrompt
	}
	return &LLM{llm: llm, logger: logger, systemPrompt: systemPrompt}
}

// WithTurnTemplate подменяет встроенный шаблон хода; пустая строка оставляет встроенный.
func (p *LLM) WithTurnTemplate(tmpl string) *LLM {
	p.turnTemplate = tmpl
	return p
}

func (p *LLM) Name() string { return "llm" }

func (p *LLM) Act(ctx context.Context, obs *entity.Observation, actions *entity.AvailableActions) (string, error) {
	turn, err := buildPrompt(obs, actions, p.turnTemplate)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := p.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: p.systemPrompt},
			{Role: entity.RoleUser, Content: turn},
		},
		Temperature: 0.0,
		MaxTokens:   64,
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	action := pickAction(resp.Message.Content)
	p.logger.Debug("LLM chose action", "action", action, "reply", resp.Message.Content)
	return action, nil
}

func buildPrompt(obs *entity.Observation, actions *entity.AvailableActions, turnTemplate string) (string, error) {
	page := obs.Text
	if page == "" && obs.HTML != "" {
		if text, err := htmlparse.VisibleText(obs.HTML, nil); err == nil {
			page = text
		}
	}
	page = truncate(page, maxObservationLen)

	data := prompts.TurnData{
		Instruction:  obs.Instruction,
		Page:         page,
		HasSearchBar: actions.HasSearchBar,
		Clickables:   actions.Clickables,
	}
	if turnTemplate != "" {
		return prompts.GenerateFromTemplate(turnTemplate, data)
	}
	return prompts.GenerateTurnPrompt(data)
}

// truncate режет не длиннее limit байт и не разрывает многобайтовую руну.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + " ... (truncated)"
}

// pickAction берёт первую строку ответа, похожую на действие.
func pickAction(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" {
			continue
		}
		if a := entity.ParseAction(line); a.Verb != entity.VerbInvalid {
			return a.String()
		}
	}
	return strings.TrimSpace(reply)
}
