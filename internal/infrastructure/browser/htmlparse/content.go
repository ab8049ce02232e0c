package htmlparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	RewardSelector      = "#reward"
	InstructionSelector = "#instruction-text"
)

var (
	ErrMalformedReward     = errors.New("malformed reward")
	ErrInstructionNotFound = errors.New("instruction text not found")
)

// ExtractReward читает награду из <pre> внутри #reward. Нет контейнера, значит 0.
// Контейнер есть, но число не читается: это нарушение контракта сервера.
func ExtractReward(rawHTML string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}

	container := doc.Find(RewardSelector).First()
	if container.Length() == 0 {
		return 0, nil
	}

	pre := container.Find("pre").First()
	if pre.Length() == 0 {
		return 0, fmt.Errorf("%w: %s has no <pre>", ErrMalformedReward, RewardSelector)
	}

	raw := strings.TrimSpace(pre.Text())
	reward, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedReward, raw, err)
	}
	return reward, nil
}

func InstructionText(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	h4 := doc.Find(InstructionSelector).First().Find("h4").First()
	if h4.Length() == 0 {
		return "", ErrInstructionNotFound
	}
	return strings.TrimSpace(h4.Text()), nil
}
