package rod

import (
	"context"
	"fmt"

	"webshop-env/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementHandle = (*element)(nil)

type element struct {
	el      *rod.Element
	adapter *BrowserAdapter
}

func (e *element) bind(ctx context.Context) (*rod.Element, context.CancelFunc, error) {
	if err := e.adapter.checkOpen(); err != nil {
		return nil, nil, err
	}
	opCtx, cancel := e.adapter.opContext(ctx, e.adapter.timeout)
	return e.el.Context(opCtx), cancel, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("element text: %w", err)
	}
	return text, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return "", false, err
	}
	defer cancel()

	v, err := el.Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("element attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Click: обычный клик мышью, после него ждём, пока страница отработает запросы.
// Перекрытый элемент rod ждёт до таймаута, поэтому у прямого клика свой короткий лимит.
func (e *element) Click(ctx context.Context) error {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.Timeout(e.adapter.cfg.ClickTimeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &output.ClickError{Stage: output.ClickStageDirect, Err: err}
	}
	return e.adapter.WaitNetworkIdle(ctx)
}

func (e *element) ClickProgrammatic(ctx context.Context) error {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if _, err := el.Eval(`() => this.click()`); err != nil {
		return &output.ClickError{Stage: output.ClickStageProgrammatic, Err: err}
	}
	return e.adapter.WaitNetworkIdle(ctx)
}

func (e *element) Fill(ctx context.Context, text string) error {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *element) PressEnter(ctx context.Context) error {
	el, cancel, err := e.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
	return nil
}
