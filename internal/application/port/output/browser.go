package output

import (
	"context"
	"errors"
	"fmt"

	"webshop-env/internal/domain/entity"
)

// BrowserPort: единственная страница браузера, которой владеет окружение.
// Все вызовы блокирующие; Close прерывает их по мере возможности.
type BrowserPort interface {
	// Navigate ждёт DOMContentLoaded.
	Navigate(ctx context.Context, url string) error
	// Query возвращает nil без ошибки, если элемента нет.
	Query(ctx context.Context, selector string) (ElementHandle, error)
	QueryAll(ctx context.Context, selector string) ([]ElementHandle, error)
	WaitNetworkIdle(ctx context.Context) error

	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	Close() error
}

type ElementHandle interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)

	Click(ctx context.Context) error
	ClickProgrammatic(ctx context.Context) error

	Fill(ctx context.Context, text string) error
	PressEnter(ctx context.Context) error
}

type ClickStage string

const (
	ClickStageDirect       ClickStage = "direct"
	ClickStageProgrammatic ClickStage = "programmatic"
)

// ClickError: результат неудачной попытки клика на конкретной стадии.
type ClickError struct {
	Stage ClickStage
	Err   error
}

func (e *ClickError) Error() string {
	return fmt.Sprintf("%s click failed: %v", e.Stage, e.Err)
}

func (e *ClickError) Unwrap() error {
	return e.Err
}

func IsClickStage(err error, stage ClickStage) bool {
	var ce *ClickError
	return errors.As(err, &ce) && ce.Stage == stage
}
