package entity

import "fmt"

type ObservationMode string

const (
	ObservationHTML ObservationMode = "html"
	ObservationText ObservationMode = "text"
)

func ParseObservationMode(s string) (ObservationMode, error) {
	switch ObservationMode(s) {
	case "", ObservationHTML:
		return ObservationHTML, nil
	case ObservationText:
		return ObservationText, nil
	default:
		return "", fmt.Errorf("unknown observation mode %q (want html or text)", s)
	}
}

// Observation собирается заново на каждом шаге и не мутируется.
type Observation struct {
	URL         string      `json:"url"`
	Instruction string      `json:"instruction"`
	Image       *Screenshot `json:"image"`
	HTML        string      `json:"html,omitempty"`
	Text        string      `json:"text,omitempty"`
}

type StepResult struct {
	Observation *Observation   `json:"observation"`
	Reward      float64        `json:"reward"`
	Done        bool           `json:"done"`
	Info        map[string]any `json:"info"`
}

type AvailableActions struct {
	HasSearchBar bool     `json:"has_search_bar"`
	Clickables   []string `json:"clickables"`
}
