package environment

import (
	"strings"
	"sync"
	"time"

	"webshop-env/internal/application/port/input"
	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
)

var _ input.Environment = (*Environment)(nil)

const (
	DefaultBaseURL = "http://127.0.0.1:3000"

	SearchInputSelector = "#search_input"
	ButtonSelector      = ".btn"
	ProductLinkSelector = ".product-link"
	OptionSelector      = "input[type='radio']"
)

type Config struct {
	BaseURL         string
	ObservationMode entity.ObservationMode
	// Pause: задержка после каждого шага для демонстрации.
	Pause time.Duration
	// Session фиксирует идентификатор сессии. Пусто: новый на каждый Reset.
	Session string
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		ObservationMode: entity.ObservationHTML,
	}
}

// Environment владеет одной страницей браузера. Reset, Step и AvailableActions
// выполняются строго последовательно; Close можно вызывать в любой момент.
type Environment struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config

	newSession func() string

	mu          sync.Mutex
	session     string
	instruction string
	clickables  *clickableTable

	closeOnce sync.Once
	closeErr  error
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Environment {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ObservationMode == "" {
		cfg.ObservationMode = entity.ObservationHTML
	}

	return &Environment{
		browser:    browser,
		logger:     logger.WithField("component", "environment"),
		cfg:        cfg,
		newSession: randomSessionID,
	}
}

func (e *Environment) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

func (e *Environment) InstructionText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instruction
}

// Close не берёт мьютекс шага: его можно вызвать, пока шаг ещё выполняется.
func (e *Environment) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.browser.Close()
		e.logger.Info("Browser closed")
	})
	return e.closeErr
}
