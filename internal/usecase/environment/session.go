package environment

import (
	"context"
	"fmt"
	"math/rand/v2"

	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/htmlparse"
)

const sessionIDLength = 5

func randomSessionID() string {
	b := make([]byte, sessionIDLength)
	for i := range b {
		b[i] = byte('a' + rand.IntN(26))
	}
	return string(b)
}

// Reset начинает новый эпизод: новая сессия, переход на стартовую страницу,
// чтение инструкции. Таблица кликабельных элементов сбрасывается.
func (e *Environment) Reset(ctx context.Context) (*entity.Observation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clickables = nil
	e.instruction = ""

	if e.cfg.Session != "" {
		e.session = e.cfg.Session
	} else {
		e.session = e.newSession()
	}
	e.logger.Info("Session started", "session", e.session)

	initURL := fmt.Sprintf("%s/%s", e.cfg.BaseURL, e.session)
	if err := e.browser.Navigate(ctx, initURL); err != nil {
		return nil, fmt.Errorf("open session %s: %w", e.session, err)
	}

	html, err := e.browser.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read initial page: %w", err)
	}
	instruction, err := htmlparse.InstructionText(html)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", e.session, err)
	}
	e.instruction = instruction

	return e.observe(ctx)
}
