package input

import (
	"context"

	"webshop-env/internal/domain/entity"
)

// Environment: шаговое RL-окружение поверх живой страницы магазина.
type Environment interface {
	Reset(ctx context.Context) (*entity.Observation, error)
	Step(ctx context.Context, action string) (*entity.StepResult, error)
	AvailableActions(ctx context.Context) (*entity.AvailableActions, error)

	Session() string
	InstructionText() string

	Close() error
}
