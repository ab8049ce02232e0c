package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"webshop-env/internal/di"
	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	url             string
	observationMode string
	render          bool
	pause           float64
	session         string
	logLevel        string
	logDir          string
	waitReady       bool
	envFiles        []string
}

type app struct {
	env  *env.EnvService
	opts rootOptions
	cfg  di.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(env.NewEnvService()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

func newRootCmd(envService *env.EnvService) *cobra.Command {
	a := &app{env: envService}

	root := &cobra.Command{
		Use:           "webshop-env",
		Short:         "Step-based RL environment over a live WebShop server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(a.opts.envFiles) > 0 {
				if err := envService.LoadFiles(a.opts.envFiles...); err != nil {
					return fmt.Errorf("load env files: %w", err)
				}
			}
			cfg, err := di.ConfigFromEnv(envService)
			if err != nil {
				return err
			}
			a.cfg, err = applyRootFlags(cmd, cfg, a.opts)
			return err
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.url, "url", "", "WebShop base URL (env WEBSHOP_URL)")
	f.StringVar(&a.opts.observationMode, "observation-mode", "", "html or text (env OBSERVATION_MODE)")
	f.BoolVar(&a.opts.render, "render", false, "show the browser window (env RENDER)")
	f.Float64Var(&a.opts.pause, "pause", 0, "seconds to pause after each step (env PAUSE)")
	f.StringVar(&a.opts.session, "session", "", "pin the session id (env SESSION)")
	f.StringVar(&a.opts.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.StringVar(&a.opts.logDir, "log-dir", "", "directory for JSON log files (env LOG_DIR)")
	f.BoolVar(&a.opts.waitReady, "wait-ready", true, "wait for the WebShop server before starting")
	f.StringSliceVar(&a.opts.envFiles, "env-file", nil, "extra .env files loaded over the environment")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newBenchCmd(a),
		newProbeCmd(a),
	)
	return root
}

// applyRootFlags накладывает явно заданные флаги поверх конфигурации из окружения.
func applyRootFlags(cmd *cobra.Command, cfg di.Config, opts rootOptions) (di.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = opts.url
	}
	if flags.Changed("observation-mode") {
		mode, err := entity.ParseObservationMode(opts.observationMode)
		if err != nil {
			return cfg, err
		}
		cfg.ObservationMode = mode
	}
	if flags.Changed("render") {
		cfg.Render = opts.render
	}
	if flags.Changed("pause") {
		cfg.Pause = secondsToDuration(opts.pause)
	}
	if flags.Changed("session") {
		cfg.Session = opts.session
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-dir") {
		cfg.Log.Dir = opts.logDir
	}
	return cfg, nil
}
