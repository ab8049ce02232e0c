package main

import (
	"fmt"
	"time"

	"webshop-env/internal/infrastructure/webshop"

	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		attempts int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the WebShop server answers on its base URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if attempts <= 1 {
				err = webshop.Probe(cmd.Context(), a.cfg.BaseURL)
			} else {
				err = webshop.WaitReady(cmd.Context(), a.cfg.BaseURL, attempts, interval)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "WebShop is up at %s\n", a.cfg.BaseURL)
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 1, "probe attempts before giving up")
	cmd.Flags().DurationVar(&interval, "interval", webshop.DefaultInterval, "delay between attempts")
	return cmd
}
