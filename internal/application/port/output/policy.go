package output

import (
	"context"

	"webshop-env/internal/domain/entity"
)

// Policy выбирает следующее действие по наблюдению и доступным действиям.
type Policy interface {
	Name() string
	Act(ctx context.Context, obs *entity.Observation, actions *entity.AvailableActions) (string, error)
}
