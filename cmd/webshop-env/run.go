package main

import (
	"encoding/json"
	"fmt"

	"webshop-env/internal/application/port/input"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		policyName string
		episodes   int
		maxSteps   int
		seed       uint64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive episodes with a random, human or LLM policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("policy") {
				a.cfg.Policy = policyName
			}
			if cmd.Flags().Changed("max-steps") {
				a.cfg.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("seed") {
				a.cfg.Seed = seed
			}

			ctx := cmd.Context()
			c, err := a.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			for i := 1; i <= episodes; i++ {
				res, err := c.Runner.Run(ctx)
				if err != nil {
					c.Logger.Error("Episode failed", "episode", i, "error", err)
					return err
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(res); err != nil {
						return err
					}
					continue
				}
				printSummary(cmd, i, res)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&policyName, "policy", "random", "random, human or llm (env POLICY)")
	f.IntVar(&episodes, "episodes", 1, "number of episodes to run")
	f.IntVar(&maxSteps, "max-steps", 100, "step limit per episode (env MAX_STEPS)")
	f.Uint64Var(&seed, "seed", 0, "seed for the random policy, 0 picks one (env SEED)")
	f.BoolVar(&asJSON, "json", false, "print episode transcripts as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, n int, res *input.EpisodeResult) {
	out := cmd.OutOrStdout()
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(out, "\nЭпизод %d (%s)\n", n, res.RunID)
	fmt.Fprintf(out, "session:     %s\n", res.Session)
	fmt.Fprintf(out, "instruction: %s\n", res.Instruction)
	fmt.Fprintf(out, "steps:       %d\n", len(res.Steps))

	status := color.New(color.FgYellow)
	if res.Done {
		status = color.New(color.FgGreen)
	}
	status.Fprintf(out, "reward:      %.3f (done=%t)\n", res.TotalReward, res.Done)
}
