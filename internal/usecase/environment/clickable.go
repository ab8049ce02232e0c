package environment

import (
	"context"
	"fmt"
	"strings"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
)

// clickableTable: метка → элемент с порядком первого появления метки.
// Повторная метка заменяет элемент, но не меняет позицию.
type clickableTable struct {
	labels  []string
	handles map[string]output.ElementHandle
}

func newClickableTable() *clickableTable {
	return &clickableTable{handles: make(map[string]output.ElementHandle)}
}

func (t *clickableTable) put(label string, h output.ElementHandle) {
	if _, ok := t.handles[label]; !ok {
		t.labels = append(t.labels, label)
	}
	t.handles[label] = h
}

func (t *clickableTable) get(label string) (output.ElementHandle, bool) {
	if t == nil {
		return nil, false
	}
	h, ok := t.handles[label]
	return h, ok
}

func (t *clickableTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// AvailableActions перечитывает страницу и полностью заменяет таблицу кликабельных элементов.
func (e *Environment) AvailableActions(ctx context.Context) (*entity.AvailableActions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hasSearchBar := false
	if el, err := e.browser.Query(ctx, SearchInputSelector); err != nil {
		e.logger.Debug("Search bar lookup failed", "error", err)
	} else {
		hasSearchBar = el != nil
	}

	table := newClickableTable()

	for _, selector := range []string{ButtonSelector, ProductLinkSelector} {
		els, err := e.browser.QueryAll(ctx, selector)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", selector, err)
		}
		for _, el := range els {
			text, err := el.Text(ctx)
			if err != nil {
				return nil, fmt.Errorf("read %s text: %w", selector, err)
			}
			if text = strings.TrimSpace(text); text != "" {
				table.put(text, el)
			}
		}
	}

	options, err := e.browser.QueryAll(ctx, OptionSelector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", OptionSelector, err)
	}
	for _, opt := range options {
		value, ok, err := opt.Attribute(ctx, "value")
		if err != nil {
			return nil, fmt.Errorf("read option value: %w", err)
		}
		if ok && value != "" {
			table.put(value, opt)
		}
	}

	e.clickables = table

	return &entity.AvailableActions{
		HasSearchBar: hasSearchBar,
		Clickables:   table.Labels(),
	}, nil
}
