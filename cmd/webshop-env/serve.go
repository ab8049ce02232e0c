package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"webshop-env/internal/transport/httpapi"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose one environment over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.env.GetWithDefault("HTTP_ADDR", addr)
			}

			c, err := a.openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			api := httpapi.NewServer(c.Environment, c.Logger, c.Metrics, httpapi.Config{
				ServiceName: "webshop-env",
				LogLevel:    a.cfg.Log.Level,
				Ready:       c.Ready,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				c.Logger.Info("HTTP server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (env HTTP_ADDR)")
	return cmd
}
