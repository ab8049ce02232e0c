package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

const (
	maxObservationPreview = 1500
	maxLabelsShown        = 40
)

type ConsoleUserInteraction struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return NewConsoleUserInteractionWithIO(os.Stdin, color.Output)
}

func NewConsoleUserInteractionWithIO(in io.Reader, out io.Writer) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (u *ConsoleUserInteraction) AskQuestion(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(u.out, "\n[USER INPUT REQUIRED] %s\n> ", question)

	answer, err := u.reader.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

func (u *ConsoleUserInteraction) ShowObservation(ctx context.Context, obs *entity.Observation) {
	if obs == nil {
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n🌐 %s\n", obs.URL)

	if obs.Instruction != "" {
		blue := color.New(color.FgBlue)
		blue.Fprint(u.out, "📝 Задание: ")
		fmt.Fprintln(u.out, obs.Instruction)
	}

	body := obs.Text
	if body == "" {
		body = obs.HTML
	}
	if body != "" {
		dim := color.New(color.Faint)
		dim.Fprintln(u.out, truncate(body, maxObservationPreview))
	}

	if obs.Image != nil {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "📸 %s %dx%d, %d байт\n", obs.Image.Format, obs.Image.Width, obs.Image.Height, len(obs.Image.Data))
	}
}

func (u *ConsoleUserInteraction) ShowAvailableActions(ctx context.Context, actions *entity.AvailableActions) {
	if actions == nil {
		return
	}

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintln(u.out, "\n🖱️ Доступные действия:")

	if actions.HasSearchBar {
		fmt.Fprintln(u.out, "   search[<запрос>]")
	}

	shown := actions.Clickables
	if len(shown) > maxLabelsShown {
		shown = shown[:maxLabelsShown]
	}
	for _, label := range shown {
		fmt.Fprintf(u.out, "   click[%s]\n", label)
	}
	if rest := len(actions.Clickables) - len(shown); rest > 0 {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   ... ещё %d\n", rest)
	}
	fmt.Fprintln(u.out, "   end")
}

func (u *ConsoleUserInteraction) ShowStep(ctx context.Context, step int, action string, reward float64, done bool) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Шаг %d ━━━ %s\n", step, action)

	if done {
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintf(u.out, "✓ Эпизод завершён, награда %.3f\n", reward)
		return
	}
	fmt.Fprintf(u.out, "награда %.3f\n", reward)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
