package main

import (
	"context"
	"fmt"
	"time"

	"webshop-env/internal/di"
	"webshop-env/internal/infrastructure/webshop"
)

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// openContainer ждёт сервер магазина (если просили) и поднимает браузер с окружением.
func (a *app) openContainer(ctx context.Context) (*di.Container, error) {
	if a.opts.waitReady {
		if err := webshop.WaitReady(ctx, a.cfg.BaseURL, webshop.DefaultAttempts, webshop.DefaultInterval); err != nil {
			return nil, fmt.Errorf("webshop at %s: %w", a.cfg.BaseURL, err)
		}
	}
	return di.NewContainer(ctx, a.cfg)
}
