package episode

import (
	"context"
	"fmt"
	"time"

	"webshop-env/internal/application/port/input"
	"webshop-env/internal/application/port/output"

	"github.com/google/uuid"
)

var _ input.EpisodeRunner = (*Runner)(nil)

const defaultMaxSteps = 100

type Config struct {
	MaxSteps int
	// StepDelay: пауза между шагами на стороне драйвера.
	StepDelay time.Duration
}

// Runner крутит цикл reset → (actions → policy → step) до done или MaxSteps.
type Runner struct {
	env    input.Environment
	policy output.Policy
	logger output.LoggerPort
	ui     output.UserInteractionPort
	cfg    Config
}

func New(
	env input.Environment,
	policy output.Policy,
	logger output.LoggerPort,
	ui output.UserInteractionPort,
	cfg Config,
) *Runner {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	return &Runner{env: env, policy: policy, logger: logger, ui: ui, cfg: cfg}
}

func (r *Runner) Run(ctx context.Context) (*input.EpisodeResult, error) {
	runID := uuid.NewString()
	log := r.logger.WithFields(map[string]any{"run_id": runID, "policy": r.policy.Name()})

	obs, err := r.env.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	result := &input.EpisodeResult{
		RunID:       runID,
		Session:     r.env.Session(),
		Instruction: r.env.InstructionText(),
	}
	log.Info("Episode started", "session", result.Session, "instruction", result.Instruction)

	for step := 1; step <= r.cfg.MaxSteps; step++ {
		actions, err := r.env.AvailableActions(ctx)
		if err != nil {
			return result, fmt.Errorf("step %d: available actions: %w", step, err)
		}
		log.Debug("Available actions", "step", step, "search", actions.HasSearchBar, "clickables", actions.Clickables)

		action, err := r.policy.Act(ctx, obs, actions)
		if err != nil {
			return result, fmt.Errorf("step %d: policy %s: %w", step, r.policy.Name(), err)
		}

		start := time.Now()
		res, err := r.env.Step(ctx, action)
		if err != nil {
			return result, fmt.Errorf("step %d: %q: %w", step, action, err)
		}

		record := input.StepRecord{
			Step:     step,
			Action:   action,
			Reward:   res.Reward,
			Done:     res.Done,
			Duration: time.Since(start),
		}
		if res.Observation != nil {
			record.URL = res.Observation.URL
		}
		result.Steps = append(result.Steps, record)
		result.TotalReward += res.Reward

		if r.ui != nil {
			r.ui.ShowStep(ctx, step, action, res.Reward, res.Done)
		}
		log.Info("Taking action", "step", step, "action", action, "reward", res.Reward)

		if res.Done {
			result.Done = true
			break
		}
		obs = res.Observation

		if r.cfg.StepDelay > 0 {
			select {
			case <-time.After(r.cfg.StepDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	log.Info("Episode finished", "steps", len(result.Steps), "done", result.Done, "total_reward", result.TotalReward)
	return result, nil
}
