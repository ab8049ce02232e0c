package policy

import (
	"context"
	"math/rand/v2"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
)

var _ output.Policy = (*Random)(nil)

var DefaultKeywords = []string{"shoes"}

// Random ищет по случайному ключевому слову, если есть поле поиска,
// иначе кликает по случайной метке. Нечего кликать, тогда завершает эпизод.
type Random struct {
	keywords []string
	rng      *rand.Rand
}

func NewRandom(seed uint64, keywords ...string) *Random {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Random{
		keywords: keywords,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (p *Random) Name() string { return "random" }

func (p *Random) Act(_ context.Context, _ *entity.Observation, actions *entity.AvailableActions) (string, error) {
	if actions.HasSearchBar {
		kw := p.keywords[p.rng.IntN(len(p.keywords))]
		return entity.Search(kw).String(), nil
	}
	if len(actions.Clickables) == 0 {
		return entity.End().String(), nil
	}
	label := actions.Clickables[p.rng.IntN(len(actions.Clickables))]
	return entity.Click(label).String(), nil
}
