package webshop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	ProbeTimeout = 3 * time.Second

	DefaultAttempts = 30
	DefaultInterval = time.Second
)

var ErrNotReady = errors.New("webshop server is not ready")

// Prober проверяет, что сервер магазина отвечает на GET /.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	return &Prober{client: client, timeout: ProbeTimeout}
}

// Probe returns nil only when GET <baseURL>/ answers 200.
func (p *Prober) Probe(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrNotReady, resp.StatusCode)
	}
	return nil
}

// WaitReady polls Probe at most attempts times, one attempt per interval.
func (p *Prober) WaitReady(ctx context.Context, baseURL string, attempts int, interval time.Duration) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for webshop: %w", err)
		}
		if lastErr = p.Probe(ctx, baseURL); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("wait for webshop: %w", ctx.Err())
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

func Probe(ctx context.Context, baseURL string) error {
	return NewProber(nil).Probe(ctx, baseURL)
}

func WaitReady(ctx context.Context, baseURL string, attempts int, interval time.Duration) error {
	return NewProber(nil).WaitReady(ctx, baseURL, attempts, interval)
}
