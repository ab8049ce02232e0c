package input

import (
	"context"
	"time"
)

type StepRecord struct {
	Step     int           `json:"step"`
	Action   string        `json:"action"`
	Reward   float64       `json:"reward"`
	Done     bool          `json:"done"`
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration"`
}

type EpisodeResult struct {
	RunID       string       `json:"run_id"`
	Session     string       `json:"session"`
	Instruction string       `json:"instruction"`
	Steps       []StepRecord `json:"steps"`
	TotalReward float64      `json:"total_reward"`
	Done        bool         `json:"done"`
}

type EpisodeRunner interface {
	Run(ctx context.Context) (*EpisodeResult, error)
}
