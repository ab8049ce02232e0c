package environment

import (
	"context"
	"fmt"

	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/htmlparse"
)

// observe всегда читает страницу заново: URL, HTML и полный скриншот.
func (e *Environment) observe(ctx context.Context) (*entity.Observation, error) {
	url, err := e.browser.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe url: %w", err)
	}
	html, err := e.browser.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe html: %w", err)
	}
	image, err := e.browser.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe screenshot: %w", err)
	}

	obs := &entity.Observation{
		URL:         url,
		Instruction: e.instruction,
		Image:       image,
	}

	switch e.cfg.ObservationMode {
	case entity.ObservationText:
		text, err := htmlparse.VisibleText(html, nil)
		if err != nil {
			return nil, fmt.Errorf("observe text: %w", err)
		}
		obs.Text = text
	default:
		obs.HTML = html
	}
	return obs, nil
}
