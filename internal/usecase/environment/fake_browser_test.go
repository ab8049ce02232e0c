package environment

import (
	"context"
	"errors"
	"sync"

	"webshop-env/internal/application/port/output"
	"webshop-env/internal/domain/entity"
)

var _ output.BrowserPort = (*fakeBrowser)(nil)

// fakeBrowser: страница в памяти, HTML, URL и элементы по селекторам.
type fakeBrowser struct {
	mu sync.Mutex

	url      string
	html     string
	pages    map[string]string
	elements map[string][]*fakeElement

	queryErr  map[string]error
	navErr    error
	closed    int
	navigated []string
	idleWaits int
	htmlReads int
	shots     int

	// idleStarted, если задан, закрывается при входе в WaitNetworkIdle,
	// и ожидание висит до Close.
	idleStarted chan struct{}
	done        chan struct{}
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:    make(map[string]string),
		elements: make(map[string][]*fakeElement),
		queryErr: make(map[string]error),
		done:     make(chan struct{}),
	}
}

func (b *fakeBrowser) add(selector string, els ...*fakeElement) {
	for _, el := range els {
		el.browser = b
	}
	b.elements[selector] = append(b.elements[selector], els...)
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.navErr != nil {
		return b.navErr
	}
	b.navigated = append(b.navigated, url)
	b.url = url
	if html, ok := b.pages[url]; ok {
		b.html = html
	}
	return nil
}

func (b *fakeBrowser) Query(_ context.Context, selector string) (output.ElementHandle, error) {
	if err := b.queryErr[selector]; err != nil {
		return nil, err
	}
	els := b.elements[selector]
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (b *fakeBrowser) QueryAll(_ context.Context, selector string) ([]output.ElementHandle, error) {
	if err := b.queryErr[selector]; err != nil {
		return nil, err
	}
	out := make([]output.ElementHandle, 0, len(b.elements[selector]))
	for _, el := range b.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

var errBrowserClosed = errors.New("browser is closed")

func (b *fakeBrowser) WaitNetworkIdle(ctx context.Context) error {
	b.mu.Lock()
	b.idleWaits++
	started := b.idleStarted
	b.mu.Unlock()

	if started == nil {
		return ctx.Err()
	}
	close(started)
	select {
	case <-b.done:
		return errBrowserClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *fakeBrowser) URL(context.Context) (string, error) {
	return b.url, nil
}

func (b *fakeBrowser) HTML(context.Context) (string, error) {
	b.htmlReads++
	return b.html, nil
}

func (b *fakeBrowser) Screenshot(context.Context) (*entity.Screenshot, error) {
	b.shots++
	return &entity.Screenshot{Data: []byte{0x89, 'P', 'N', 'G'}, Format: "png", Width: 1, Height: 1}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	if b.closed == 1 {
		close(b.done)
	}
	return nil
}

var errDirectClick = errors.New("element is covered")

type fakeElement struct {
	browser *fakeBrowser

	text  string
	attrs map[string]string

	clickErr error
	progErr  error
	onClick  func(b *fakeBrowser)

	clicks     int
	progClicks int
	filled     []string
	entered    int
}

func (e *fakeElement) Text(context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Click(context.Context) error {
	e.clicks++
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.onClick != nil {
		e.onClick(e.browser)
	}
	return nil
}

func (e *fakeElement) ClickProgrammatic(context.Context) error {
	e.progClicks++
	if e.progErr != nil {
		return &output.ClickError{Stage: output.ClickStageProgrammatic, Err: e.progErr}
	}
	if e.onClick != nil {
		e.onClick(e.browser)
	}
	return nil
}

func (e *fakeElement) Fill(_ context.Context, text string) error {
	e.filled = append(e.filled, text)
	return nil
}

func (e *fakeElement) PressEnter(context.Context) error {
	e.entered++
	return nil
}

const (
	startHTML = `<html><head><title>WebShop</title></head><body>
<div id="instruction-text"><h4>Instruction: <br>find a red mug under 20 dollars</h4></div>
<input id="search_input" />
<button class="btn">Search</button>
</body></html>`

	itemHTML = `<html><body>
<div id="instruction-text"><h4>Instruction: <br>find a red mug under 20 dollars</h4></div>
<button class="btn">Buy Now</button>
</body></html>`

	doneHTML = `<html><body>
<div id="reward"><h1>Thank you for shopping!</h1><pre>0.666</pre></div>
</body></html>`

	brokenRewardHTML = `<html><body><div id="reward"><pre>NaN-ish</pre></div></body></html>`
)
