package main

import (
	"context"
	"fmt"
	"time"

	"webshop-env/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type benchTiming struct {
	name     string
	duration time.Duration
	note     string
}

func newBenchCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time environment init, a search, action discovery and a click",
		RunE: func(cmd *cobra.Command, args []string) error {
			timings, err := a.bench(cmd.Context(), query)
			printTimings(cmd, timings)
			return err
		},
	}

	cmd.Flags().StringVar(&query, "query", "laptop", "keywords for the timed search")
	return cmd
}

func (a *app) bench(ctx context.Context, query string) ([]benchTiming, error) {
	var timings []benchTiming
	measure := func(name string, fn func() (string, error)) error {
		start := time.Now()
		note, err := fn()
		timings = append(timings, benchTiming{name: name, duration: time.Since(start), note: note})
		return err
	}

	c, err := a.openContainer(ctx)
	if err != nil {
		return timings, err
	}
	defer c.Close()
	env := c.Environment

	if err := measure("init", func() (string, error) {
		_, err := env.Reset(ctx)
		return "session " + env.Session(), err
	}); err != nil {
		return timings, err
	}

	if err := measure(entity.Search(query).String(), func() (string, error) {
		res, err := env.Step(ctx, entity.Search(query).String())
		if err != nil {
			return "", err
		}
		return res.Observation.URL, nil
	}); err != nil {
		return timings, err
	}

	var actions *entity.AvailableActions
	if err := measure("available actions", func() (string, error) {
		var err error
		actions, err = env.AvailableActions(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d clickables", len(actions.Clickables)), nil
	}); err != nil {
		return timings, err
	}

	if len(actions.Clickables) == 0 {
		return timings, nil
	}
	click := entity.Click(actions.Clickables[0]).String()
	err = measure(click, func() (string, error) {
		res, err := env.Step(ctx, click)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("reward %.3f", res.Reward), nil
	})
	return timings, err
}

func printTimings(cmd *cobra.Command, timings []benchTiming) {
	out := cmd.OutOrStdout()
	color.New(color.FgCyan, color.Bold).Fprintln(out, "\nТайминги")

	var total time.Duration
	for _, t := range timings {
		total += t.duration
		fmt.Fprintf(out, "  %-28s %8.3fs  %s\n", t.name, t.duration.Seconds(), t.note)
	}
	fmt.Fprintf(out, "  %-28s %8.3fs\n", "total", total.Seconds())
}
