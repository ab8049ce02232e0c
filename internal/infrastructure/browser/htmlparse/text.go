package htmlparse

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Separator разделяет текстовые фрагменты в текстовом режиме наблюдения.
const Separator = " [SEP] "

type TextConfig struct {
	HiddenTags []string
	Separator  string
}

var DefaultTextConfig = TextConfig{
	HiddenTags: []string{"style", "script", "head", "title", "meta"},
	Separator:  Separator,
}

// VisibleText превращает HTML в плоский текст: обходит все текстовые узлы,
// пропуская невидимые контейнеры и комментарии.
func VisibleText(rawHTML string, cfg *TextConfig) (string, error) {
	if cfg == nil {
		cfg = &DefaultTextConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var fragments []string
	collectText(doc, cfg, &fragments)

	return strings.Join(fragments, cfg.Separator), nil
}

func collectText(n *html.Node, cfg *TextConfig, out *[]string) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*out = append(*out, t)
		}
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.HiddenTags...) {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, cfg, out)
	}
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
