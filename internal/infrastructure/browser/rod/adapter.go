package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultSlowMotion   = 0
	defaultTimeout      = 10 * time.Second
	defaultClickTimeout = 2 * time.Second
	defaultIdleTimeout  = 30 * time.Second
	defaultIdleWindow   = 500 * time.Millisecond
	defaultJPEGQuality  = 80
)

const (
	ScreenshotPNG  = "png"
	ScreenshotJPEG = "jpeg"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrClosed     = errors.New("browser is closed")
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	cfg      BrowserConfig
	timeout  time.Duration

	// lifetime отменяется в Close и прерывает незавершённые вызовы.
	lifetime  context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	Bin        string

	// ClickTimeout ограничивает прямой клик мышью, после него идёт программный.
	ClickTimeout time.Duration

	DisableSecurityFeatures bool

	// IdleTimeout: верхняя граница ожидания тишины в сети после шага.
	IdleTimeout time.Duration
	IdleWindow  time.Duration

	ScreenshotFormat  string
	ScreenshotQuality int
	MaxImageWidth     int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          false,
		SlowMotion:        defaultSlowMotion,
		Timeout:           defaultTimeout,
		ClickTimeout:      defaultClickTimeout,
		NoSandbox:         false,
		DevTools:          false,
		IdleTimeout:       defaultIdleTimeout,
		IdleWindow:        defaultIdleWindow,
		ScreenshotFormat:  ScreenshotPNG,
		ScreenshotQuality: defaultJPEGQuality,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ClickTimeout <= 0 || cfg.ClickTimeout > cfg.Timeout {
		cfg.ClickTimeout = min(defaultClickTimeout, cfg.Timeout)
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.IdleWindow <= 0 {
		cfg.IdleWindow = defaultIdleWindow
	}
	if cfg.ScreenshotQuality <= 0 || cfg.ScreenshotQuality > 100 {
		cfg.ScreenshotQuality = defaultJPEGQuality
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		cfg:      cfg,
		timeout:  cfg.Timeout,
		lifetime: lifetime,
		cancel:   cancel,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed.Load() && b.page != nil
}

// opContext связывает контекст вызова с временем жизни браузера.
func (b *BrowserAdapter) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.lifetime, cancel)

	if timeout <= 0 {
		return ctx, func() { stop(); cancel() }
	}
	tctx, tcancel := context.WithTimeout(ctx, timeout)
	return tctx, func() { tcancel(); stop(); cancel() }
}

func (b *BrowserAdapter) checkOpen() error {
	if b.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	p := b.page.Context(opCtx)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	wait()

	if err := opCtx.Err(); err != nil {
		return fmt.Errorf("waiting for DOMContentLoaded on %s: %w", rawURL, err)
	}
	return nil
}

func (b *BrowserAdapter) Query(ctx context.Context, selector string) (output.ElementHandle, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	has, el, err := b.page.Context(opCtx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return nil, nil
	}
	return &element{el: el, adapter: b}, nil
}

func (b *BrowserAdapter) QueryAll(ctx context.Context, selector string) ([]output.ElementHandle, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	els, err := b.page.Context(opCtx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %s: %w", selector, err)
	}

	result := make([]output.ElementHandle, 0, len(els))
	for _, el := range els {
		result = append(result, &element{el: el, adapter: b})
	}
	return result, nil
}

// WaitNetworkIdle ждёт, пока в сети не будет запросов в течение IdleWindow.
// Истечение IdleTimeout ошибкой не считается.
func (b *BrowserAdapter) WaitNetworkIdle(ctx context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opCtx, cancel := b.opContext(ctx, b.cfg.IdleTimeout)
	defer cancel()

	wait := b.page.Context(opCtx).WaitRequestIdle(b.cfg.IdleWindow, nil, nil, nil)
	wait()

	if b.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("waiting for network idle: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) URL(ctx context.Context) (string, error) {
	if err := b.checkOpen(); err != nil {
		return "", err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	info, err := b.page.Context(opCtx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (b *BrowserAdapter) HTML(ctx context.Context) (string, error) {
	if err := b.checkOpen(); err != nil {
		return "", err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	html, err := b.page.Context(opCtx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	opCtx, cancel := b.opContext(ctx, b.timeout)
	defer cancel()

	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	format := imaging.PNG
	if b.cfg.ScreenshotFormat == ScreenshotJPEG {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = gson.Int(b.cfg.ScreenshotQuality)
		format = imaging.JPEG
	}

	imgBytes, err := b.page.Context(opCtx).Screenshot(true, req)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	return postprocess(imgBytes, format, b.cfg)
}

func postprocess(imgBytes []byte, format imaging.Format, cfg BrowserConfig) (*entity.Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	shot := &entity.Screenshot{
		Data:   imgBytes,
		Format: formatName(format),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if cfg.MaxImageWidth <= 0 || shot.Width <= cfg.MaxImageWidth {
		return shot, nil
	}

	resized := imaging.Resize(img, cfg.MaxImageWidth, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, format, imaging.JPEGQuality(cfg.ScreenshotQuality)); err != nil {
		return nil, fmt.Errorf("%s encode failed: %w", shot.Format, err)
	}

	shot.Data = buf.Bytes()
	shot.Width = resized.Bounds().Dx()
	shot.Height = resized.Bounds().Dy()
	return shot, nil
}

func formatName(f imaging.Format) string {
	if f == imaging.JPEG {
		return "jpeg"
	}
	return "png"
}

// Close закрывает страницу, браузер и процесс Chrome именно в этом порядке.
// Повторные вызовы возвращают результат первого.
func (b *BrowserAdapter) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.cancel()

		var errs []error
		if b.page != nil {
			if err := b.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close page: %w", err))
			}
		}
		if b.browser != nil {
			if err := b.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if b.launcher != nil {
			b.launcher.Kill()
			b.launcher.Cleanup()
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}
