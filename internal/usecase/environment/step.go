package environment

import (
	"context"
	"fmt"
	"time"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/htmlparse"
)

// Step выполняет одно действие агента и возвращает свежее наблюдение.
// Промахи по UI (нет поля поиска, нет метки, клик упал) не считаются ошибкой;
// ошибкой считается только сломанный канал награды и сбои навигации.
func (e *Environment) Step(ctx context.Context, raw string) (*entity.StepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	action := entity.ParseAction(raw)
	log := e.logger.WithFields(map[string]any{"session": e.session, "action": raw})

	result := &entity.StepResult{}

	switch action.Verb {
	case entity.VerbSearch:
		e.search(ctx, action.Arg, log)

	case entity.VerbClick:
		resolved := e.click(ctx, action.Arg, log)

		reward, err := e.reward(ctx)
		if err != nil {
			return nil, err
		}
		result.Reward = reward
		if resolved && action.IsTerminalClick() {
			result.Done = true
		}

	case entity.VerbEnd:
		result.Done = true

	default:
		log.Warn("Invalid action. No action performed.")
		result.Info = map[string]any{"invalid_action": raw}
	}

	if e.cfg.Pause > 0 {
		select {
		case <-time.After(e.cfg.Pause):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := e.browser.WaitNetworkIdle(ctx); err != nil {
		return nil, fmt.Errorf("wait for page to settle: %w", err)
	}

	obs, err := e.observe(ctx)
	if err != nil {
		return nil, err
	}
	result.Observation = obs

	log.Info("Step completed",
		"reward", result.Reward,
		"done", result.Done,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (e *Environment) search(ctx context.Context, keywords string, log output.LoggerPort) {
	bar, err := e.browser.Query(ctx, SearchInputSelector)
	if err != nil {
		log.Debug("Search bar lookup failed", "error", err)
		return
	}
	if bar == nil {
		log.Debug("No search bar on page")
		return
	}

	if err := bar.Fill(ctx, keywords); err != nil {
		log.Warn("Search input failed", "error", err)
		return
	}
	if err := bar.PressEnter(ctx); err != nil {
		log.Warn("Search submit failed", "error", err)
	}
}

// click сообщает, нашлась ли метка в таблице; ошибка самого клика поглощается.
func (e *Environment) click(ctx context.Context, label string, log output.LoggerPort) bool {
	el, ok := e.clickables.get(label)
	if !ok {
		log.Debug("Clickable not found", "label", label)
		return false
	}

	if err := clickWithFallback(ctx, el); err != nil {
		log.Debug("Click failed", "label", label, "error", err)
	}
	return true
}

// clickWithFallback: сначала обычный клик; если упала именно прямая стадия, то
// программный el.click(). Любая другая ошибка возвращается как есть.
func clickWithFallback(ctx context.Context, el output.ElementHandle) error {
	err := el.Click(ctx)
	if err == nil {
		return nil
	}
	if !output.IsClickStage(err, output.ClickStageDirect) {
		return err
	}
	return el.ClickProgrammatic(ctx)
}

func (e *Environment) reward(ctx context.Context) (float64, error) {
	html, err := e.browser.HTML(ctx)
	if err != nil {
		return 0, fmt.Errorf("read page for reward: %w", err)
	}
	reward, err := htmlparse.ExtractReward(html)
	if err != nil {
		return 0, fmt.Errorf("session %s: %w", e.session, err)
	}
	return reward, nil
}
