package userinteraction

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"webshop-env/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, input string) (*ConsoleUserInteraction, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	out := new(bytes.Buffer)
	return NewConsoleUserInteractionWithIO(strings.NewReader(input), out), out
}

func TestAskQuestion(t *testing.T) {
	ui, out := newTestConsole(t, "  click[Buy Now]  \nsecond\n")

	answer, err := ui.AskQuestion(context.Background(), "next action?")
	require.NoError(t, err)
	assert.Equal(t, "click[Buy Now]", answer)
	assert.Contains(t, out.String(), "next action?")

	answer, err = ui.AskQuestion(context.Background(), "again?")
	require.NoError(t, err)
	assert.Equal(t, "second", answer)
}

func TestAskQuestion_LastLineWithoutNewline(t *testing.T) {
	ui, _ := newTestConsole(t, "end")

	answer, err := ui.AskQuestion(context.Background(), "?")
	require.NoError(t, err)
	assert.Equal(t, "end", answer)

	_, err = ui.AskQuestion(context.Background(), "?")
	assert.Error(t, err)
}

func TestAskQuestion_CanceledContext(t *testing.T) {
	ui, _ := newTestConsole(t, "end\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ui.AskQuestion(ctx, "?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShowObservation(t *testing.T) {
	ui, out := newTestConsole(t, "")

	ui.ShowObservation(context.Background(), &entity.Observation{
		URL:         "http://127.0.0.1:3000/abcde",
		Instruction: "find a red mug",
		Text:        "WebShop [SEP] Search",
		Image:       &entity.Screenshot{Data: []byte{1, 2, 3}, Format: "png", Width: 10, Height: 5},
	})

	s := out.String()
	assert.Contains(t, s, "http://127.0.0.1:3000/abcde")
	assert.Contains(t, s, "find a red mug")
	assert.Contains(t, s, "WebShop [SEP] Search")
	assert.Contains(t, s, "png 10x5")

	out.Reset()
	ui.ShowObservation(context.Background(), nil)
	assert.Empty(t, out.String())
}

func TestShowAvailableActions(t *testing.T) {
	ui, out := newTestConsole(t, "")

	labels := make([]string, 0, maxLabelsShown+2)
	for i := 0; i < maxLabelsShown+2; i++ {
		labels = append(labels, "item")
	}
	ui.ShowAvailableActions(context.Background(), &entity.AvailableActions{HasSearchBar: true, Clickables: labels})

	s := out.String()
	assert.Contains(t, s, "search[<запрос>]")
	assert.Equal(t, maxLabelsShown, strings.Count(s, "click[item]"))
	assert.Contains(t, s, "ещё 2")
}

func TestShowStep(t *testing.T) {
	ui, out := newTestConsole(t, "")

	ui.ShowStep(context.Background(), 3, "click[Buy Now]", 0.5, true)
	assert.Contains(t, out.String(), "Шаг 3")
	assert.Contains(t, out.String(), "0.500")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
