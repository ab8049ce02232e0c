package output

import (
	"context"

	"webshop-env/internal/domain/entity"
)

type UserInteractionPort interface {
	AskQuestion(ctx context.Context, question string) (string, error)

	ShowObservation(ctx context.Context, obs *entity.Observation)
	ShowAvailableActions(ctx context.Context, actions *entity.AvailableActions)
	ShowStep(ctx context.Context, step int, action string, reward float64, done bool)
}
