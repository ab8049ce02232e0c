package rod

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
)

// TestHTML templates for testing
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	SearchHTML = `<!DOCTYPE html>
<html>
<body>
	<form action="/results" method="get">
		<input id="search_input" type="text" name="q" />
	</form>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn" class="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	CoveredHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="hidden" class="btn" style="display:none">Hidden</button>
	<div id="result"></div>
	<script>
		document.getElementById('hidden').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	OptionsHTML = `<!DOCTYPE html>
<html>
<body>
	<a class="product-link" href="/item/B07">B07 </a>
	<input type="radio" name="size" value="small" />
	<input type="radio" name="size" />
</body>
</html>`
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in -short mode")
	}
	if _, has := launcher.LookPath(); !has {
		t.Skip("no Chromium binary found")
	}
}

func htmlServer(pages map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
}
