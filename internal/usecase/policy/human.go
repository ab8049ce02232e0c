package policy

import (
	"context"
	"fmt"
	"strings"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
)

var _ output.Policy = (*Human)(nil)

type Human struct {
	ui output.UserInteractionPort
}

func NewHuman(ui output.UserInteractionPort) *Human {
	return &Human{ui: ui}
}

func (p *Human) Name() string { return "human" }

func (p *Human) Act(ctx context.Context, obs *entity.Observation, actions *entity.AvailableActions) (string, error) {
	p.ui.ShowObservation(ctx, obs)
	p.ui.ShowAvailableActions(ctx, actions)

	answer, err := p.ui.AskQuestion(ctx, "Action (search[...], click[...] or end)")
	if err != nil {
		return "", fmt.Errorf("read action: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
