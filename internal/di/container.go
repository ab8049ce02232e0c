package di

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"webshop-env/internal/application/port/input"
	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/rod"
	"webshop-env/internal/infrastructure/llm/openrouter"
	"webshop-env/internal/infrastructure/logger"
	"webshop-env/internal/infrastructure/metrics"
	"webshop-env/internal/infrastructure/prompts"
	"webshop-env/internal/infrastructure/userinteraction"
	"webshop-env/internal/usecase/environment"
	"webshop-env/internal/usecase/episode"
	"webshop-env/internal/usecase/policy"
)

const (
	PolicyRandom = "random"
	PolicyHuman  = "human"
	PolicyLLM    = "llm"
)

type Container struct {
	Logger      output.LoggerPort
	Browser     output.BrowserPort
	Environment input.Environment
	UI          output.UserInteractionPort
	Policy      output.Policy
	Runner      input.EpisodeRunner
	Metrics     *metrics.Collector

	ready       func() bool
	closeLogger func() error
}

type Config struct {
	BaseURL         string
	ObservationMode entity.ObservationMode
	Render          bool
	Pause           time.Duration
	Session         string

	IdleTimeout        time.Duration
	MaxImageWidth      int
	NoSandbox          bool
	BrowserBin         string
	DisableWebSecurity bool
	ScreenshotFormat   string
	ScreenshotQuality  int

	Log logger.Config

	Policy           string
	Seed             uint64
	Keywords         []string
	OpenRouterAPIKey string
	OpenRouterModel  string
	SystemPrompt     string
	TurnTemplate     string

	MaxSteps  int
	StepDelay time.Duration
}

// ConfigFromEnv собирает конфигурацию из переменных окружения; флаги CLI применяются поверх.
func ConfigFromEnv(env output.ConfigPort) (Config, error) {
	mode, err := entity.ParseObservationMode(env.GetWithDefault("OBSERVATION_MODE", string(entity.ObservationHTML)))
	if err != nil {
		return Config{}, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = env.GetWithDefault("LOG_LEVEL", logCfg.Level)
	logCfg.Dir = env.Get("LOG_DIR")
	if env.GetBool("LOG_FILE", false) && logCfg.Dir == "" {
		logCfg.Dir = "logs"
	}

	shotFormat := strings.ToLower(env.GetWithDefault("SCREENSHOT_FORMAT", rod.ScreenshotPNG))
	if shotFormat != rod.ScreenshotPNG && shotFormat != rod.ScreenshotJPEG {
		return Config{}, fmt.Errorf("SCREENSHOT_FORMAT must be %s or %s, got %q", rod.ScreenshotPNG, rod.ScreenshotJPEG, shotFormat)
	}
	shotQuality := env.GetInt("SCREENSHOT_QUALITY", rod.DefaultConfig().ScreenshotQuality)
	if shotQuality < 1 || shotQuality > 100 {
		return Config{}, fmt.Errorf("SCREENSHOT_QUALITY must be within 1..100, got %d", shotQuality)
	}

	systemPrompt, err := readOptionalFile(env.Get("SYSTEM_PROMPT_FILE"))
	if err != nil {
		return Config{}, fmt.Errorf("SYSTEM_PROMPT_FILE: %w", err)
	}
	turnTemplate, err := readOptionalFile(env.Get("TURN_TEMPLATE_FILE"))
	if err != nil {
		return Config{}, fmt.Errorf("TURN_TEMPLATE_FILE: %w", err)
	}

	var keywords []string
	if raw := env.Get("KEYWORDS"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}

	return Config{
		BaseURL:            env.GetWithDefault("WEBSHOP_URL", environment.DefaultBaseURL),
		ObservationMode:    mode,
		Render:             env.GetBool("RENDER", false),
		Pause:              env.GetDuration("PAUSE", 0),
		Session:            env.Get("SESSION"),
		IdleTimeout:        env.GetDuration("IDLE_TIMEOUT", rod.DefaultConfig().IdleTimeout),
		MaxImageWidth:      env.GetInt("MAX_IMAGE_WIDTH", 0),
		NoSandbox:          env.GetBool("NO_SANDBOX", false),
		BrowserBin:         env.Get("BROWSER_BIN"),
		DisableWebSecurity: env.GetBool("DISABLE_WEB_SECURITY", false),
		ScreenshotFormat:   shotFormat,
		ScreenshotQuality:  shotQuality,
		Log:                logCfg,
		Policy:             env.GetWithDefault("POLICY", PolicyRandom),
		Seed:               uint64(env.GetInt("SEED", 0)),
		Keywords:           keywords,
		OpenRouterAPIKey:   env.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:    env.Get("OPENROUTER_MODEL_NAME"),
		SystemPrompt:       systemPrompt,
		TurnTemplate:       turnTemplate,
		MaxSteps:           env.GetInt("MAX_STEPS", 0),
		StepDelay:          env.GetDuration("STEP_DELAY", 0),
	}, nil
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	ui := userinteraction.NewConsoleUserInteraction()
	pol, err := newPolicy(cfg, log, ui)
	if err != nil {
		log.Close()
		return nil, err
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = !cfg.Render
	browserCfg.NoSandbox = cfg.NoSandbox
	browserCfg.Bin = cfg.BrowserBin
	browserCfg.MaxImageWidth = cfg.MaxImageWidth
	browserCfg.DisableSecurityFeatures = cfg.DisableWebSecurity
	if cfg.ScreenshotFormat != "" {
		browserCfg.ScreenshotFormat = cfg.ScreenshotFormat
	}
	if cfg.ScreenshotQuality > 0 {
		browserCfg.ScreenshotQuality = cfg.ScreenshotQuality
	}
	if cfg.IdleTimeout > 0 {
		browserCfg.IdleTimeout = cfg.IdleTimeout
	}
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	collector := metrics.NewCollector(metrics.Namespace)
	env := metrics.Instrument(environment.New(browser, log, environment.Config{
		BaseURL:         cfg.BaseURL,
		ObservationMode: cfg.ObservationMode,
		Pause:           cfg.Pause,
		Session:         cfg.Session,
	}), collector)

	runner := episode.New(env, pol, log, ui, episode.Config{
		MaxSteps:  cfg.MaxSteps,
		StepDelay: cfg.StepDelay,
	})

	log.Info("Container ready",
		"base_url", cfg.BaseURL,
		"observation_mode", cfg.ObservationMode,
		"render", cfg.Render,
		"policy", pol.Name(),
	)

	return &Container{
		Logger:      log,
		Browser:     browser,
		Environment: env,
		UI:          ui,
		Policy:      pol,
		Runner:      runner,
		Metrics:     collector,
		ready:       browser.IsReady,
		closeLogger: log.Close,
	}, nil
}

// Ready сообщает, жив ли браузер контейнера.
func (c *Container) Ready() bool {
	return c.ready != nil && c.ready()
}

func (c *Container) Close() error {
	var err error
	if c.Environment != nil {
		err = c.Environment.Close()
	}
	if c.closeLogger != nil {
		_ = c.closeLogger()
	}
	return err
}

func newPolicy(cfg Config, log output.LoggerPort, ui output.UserInteractionPort) (output.Policy, error) {
	switch strings.ToLower(cfg.Policy) {
	case "", PolicyRandom:
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		return policy.NewRandom(seed, cfg.Keywords...), nil
	case PolicyHuman:
		return policy.NewHuman(ui), nil
	case PolicyLLM:
		if cfg.OpenRouterAPIKey == "" || cfg.OpenRouterModel == "" {
			return nil, fmt.Errorf("llm policy requires OPENROUTER_API_KEY and OPENROUTER_MODEL_NAME")
		}
		llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		llmCfg.Logger = log
		if cfg.TurnTemplate != "" {
			if _, err := prompts.GenerateFromTemplate(cfg.TurnTemplate, prompts.TurnData{}); err != nil {
				return nil, fmt.Errorf("turn template: %w", err)
			}
		}
		return policy.NewLLM(openrouter.NewOpenRouterAdapter(llmCfg), log, cfg.SystemPrompt).
			WithTurnTemplate(cfg.TurnTemplate), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", cfg.Policy)
	}
}
